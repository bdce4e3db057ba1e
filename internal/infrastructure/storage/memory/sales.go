package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/domain/sales"
	"kasirku/pkg/numerator"
)

// SalesRepo implements sales.Repository.
type SalesRepo struct {
	store *Store
}

// NewSalesRepo creates an order repository over store.
func NewSalesRepo(store *Store) *SalesRepo {
	return &SalesRepo{store: store}
}

// CreateOrder implements sales.Repository.
func (r *SalesRepo) CreateOrder(_ context.Context, o *sales.Order) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpInsertOrder); err != nil {
		return err
	}
	for _, existing := range s.orders {
		if existing.StoreID == o.StoreID && existing.ReceiptNumber == o.ReceiptNumber {
			return apperror.NewConflict("receipt number already used").WithDetail("receipt_number", o.ReceiptNumber)
		}
	}
	header := *o
	header.Lines = nil
	s.orders[o.ID] = header
	return nil
}

// InsertLine implements sales.Repository. Lines must reference an existing
// order and a product of the same store.
func (r *SalesRepo) InsertLine(_ context.Context, line *sales.OrderLine) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpInsertLine); err != nil {
		return err
	}
	o, ok := s.orders[line.OrderID]
	if !ok {
		return apperror.NewNotFound("order", line.OrderID.String())
	}
	p, ok := s.products[line.ProductID]
	if !ok || p.StoreID != o.StoreID {
		return apperror.NewNotFound("product", line.ProductID.String())
	}
	s.lines[line.OrderID] = append(s.lines[line.OrderID], *line)
	return nil
}

// GetByID implements sales.Repository.
func (r *SalesRepo) GetByID(_ context.Context, storeID, orderID id.ID) (*sales.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.StoreID != storeID {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	o.Lines = append([]sales.OrderLine(nil), s.lines[orderID]...)
	return &o, nil
}

// List implements sales.Repository.
func (r *SalesRepo) List(_ context.Context, filter sales.ListFilter) ([]*sales.Order, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	items := make([]*sales.Order, 0)
	for _, o := range s.orders {
		if o.StoreID != filter.StoreID {
			continue
		}
		if filter.Date != nil && !sameDay(o.CreatedAt, *filter.Date) {
			continue
		}
		if filter.PaymentMethod != "" && o.PaymentMethod != filter.PaymentMethod {
			continue
		}
		if filter.CashierID != nil && o.CashierID != *filter.CashierID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ReceiptNumber), search) &&
			!strings.Contains(strings.ToLower(o.CustomerName), search) {
			continue
		}
		items = append(items, &o)
	}

	slices.SortFunc(items, func(a, b *sales.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ReceiptNumber, a.ReceiptNumber)
	})
	return page(items, filter.Limit, filter.Offset), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// ReceiptNumberer implements sales.ReceiptNumberer with per-store yearly sequences
// kept in the store, so a rolled-back sale releases its number.
type ReceiptNumberer struct {
	store *Store
	cfg   numerator.Config
}

// NewReceiptNumberer creates a receipt numberer issuing numbers with prefix.
func NewReceiptNumberer(store *Store, prefix string) *ReceiptNumberer {
	return &ReceiptNumberer{store: store, cfg: numerator.DefaultConfig(prefix)}
}

// NextReceiptNumber implements sales.ReceiptNumberer.
func (n *ReceiptNumberer) NextReceiptNumber(_ context.Context, storeID id.ID, at time.Time) (string, error) {
	cfg := n.cfg
	cfg.Scope = storeID.String()
	key := numerator.BuildKey(cfg, at)

	s := n.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequences[key]++
	return numerator.Format(cfg, at, s.sequences[key]), nil
}

// OrderCount returns the number of stored order headers.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// LineCount returns the number of stored order lines.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += len(l)
	}
	return n
}
