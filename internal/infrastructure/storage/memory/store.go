// Package memory provides an in-process storage backend implementing the same
// repository interfaces as the Postgres backend. Transactions are serialized and
// roll back by restoring a snapshot. Used by STORAGE=memory and by service tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"kasirku/internal/core/id"
	"kasirku/internal/domain/audit"
	"kasirku/internal/domain/inventory"
	"kasirku/internal/domain/product"
	"kasirku/internal/domain/sales"
)

// Operations that accept injected faults.
const (
	OpInsertOrder    = "insert_order"
	OpInsertLine     = "insert_line"
	OpAppendMovement = "append_movement"
	OpUpdateStock    = "update_stock"
	OpAudit          = "audit"
)

type fault struct {
	after int
	err   error
}

// Store holds all tables of the memory backend.
type Store struct {
	// txMu serializes transactions; mu guards the maps for single statements.
	txMu sync.Mutex
	mu   sync.Mutex

	products  map[id.ID]product.Product
	orders    map[id.ID]sales.Order
	lines     map[id.ID][]sales.OrderLine
	movements []inventory.Movement
	sequences map[string]int64
	audit     []audit.Entry

	faults map[string]*fault
}

// New creates an empty store.
func New() *Store {
	return &Store{
		products:  make(map[id.ID]product.Product),
		orders:    make(map[id.ID]sales.Order),
		lines:     make(map[id.ID][]sales.OrderLine),
		sequences: make(map[string]int64),
		faults:    make(map[string]*fault),
	}
}

// InjectFault makes the (after+1)-th call of op fail with err. The fault fires once.
func (s *Store) InjectFault(op string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{after: after, err: err}
}

// checkFault must be called with mu held.
func (s *Store) checkFault(op string) error {
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	delete(s.faults, op)
	return fmt.Errorf("%s: %w", op, f.err)
}

type snapshot struct {
	products  map[id.ID]product.Product
	orders    map[id.ID]sales.Order
	lines     map[id.ID][]sales.OrderLine
	movements []inventory.Movement
	sequences map[string]int64
	audit     []audit.Entry
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make(map[id.ID][]sales.OrderLine, len(s.lines))
	for k, v := range s.lines {
		lines[k] = append([]sales.OrderLine(nil), v...)
	}
	return snapshot{
		products:  maps.Clone(s.products),
		orders:    maps.Clone(s.orders),
		lines:     lines,
		movements: append([]inventory.Movement(nil), s.movements...),
		sequences: maps.Clone(s.sequences),
		audit:     append([]audit.Entry(nil), s.audit...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = snap.products
	s.orders = snap.orders
	s.lines = snap.lines
	s.movements = snap.movements
	s.sequences = snap.sequences
	s.audit = snap.audit
}

// TxManager implements tx.Manager for the memory store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager over store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

type txKey struct{}

// RunInTransaction runs fn with exclusive access to the store. Any error restores
// the state captured before fn. Nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			m.store.restore(snap)
			panic(p)
		}
		if err != nil {
			m.store.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// AuditEntries returns a copy of the recorded audit trail.
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.audit...)
}

// Record implements audit.Recorder.
func (s *Store) Record(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFault(OpAudit); err != nil {
		return err
	}
	s.audit = append(s.audit, entry)
	return nil
}

// Ping implements the readiness check.
func (s *Store) Ping(context.Context) error { return nil }
