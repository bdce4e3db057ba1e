package memory

import (
	"context"

	"kasirku/internal/domain/inventory"
)

// MovementRepo implements inventory.MovementRepository.
type MovementRepo struct {
	store *Store
}

// NewMovementRepo creates a movement log over store.
func NewMovementRepo(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

// Append implements inventory.MovementRepository.
func (r *MovementRepo) Append(_ context.Context, m *inventory.Movement) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpAppendMovement); err != nil {
		return err
	}
	s.movements = append(s.movements, *m)
	return nil
}

// ListByProduct implements inventory.MovementRepository. Newest first.
func (r *MovementRepo) ListByProduct(_ context.Context, filter inventory.HistoryFilter) ([]*inventory.Movement, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*inventory.Movement, 0)
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if m.StoreID == filter.StoreID && m.ProductID == filter.ProductID {
			items = append(items, &m)
		}
	}
	return page(items, filter.Limit, filter.Offset), nil
}

// MovementCount returns the number of rows in the movement log.
func (s *Store) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}
