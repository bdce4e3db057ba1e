package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/domain/product"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	store *Store
}

// NewProductRepo creates a product repository over store.
func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

// Create implements product.Repository.
func (r *ProductRepo) Create(_ context.Context, p *product.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.StoreID == p.StoreID && existing.SKU == p.SKU {
			return apperror.NewConflict("product with this sku already exists").WithDetail("sku", p.SKU)
		}
	}
	s.products[p.ID] = *p
	return nil
}

// GetByID implements product.Repository.
func (r *ProductRepo) GetByID(_ context.Context, storeID, productID id.ID) (*product.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok || p.StoreID != storeID {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return &p, nil
}

// List implements product.Repository. Results are ordered by name.
func (r *ProductRepo) List(_ context.Context, filter product.ListFilter) ([]*product.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := make([]*product.Product, 0)
	for _, p := range s.products {
		if p.StoreID != filter.StoreID {
			continue
		}
		if filter.LowStockOnly && !p.NeedsReorder() {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		items = append(items, &p)
	}

	slices.SortFunc(items, func(a, b *product.Product) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return page(items, filter.Limit, filter.Offset), nil
}

// StockRepo implements product.StockRepository. Each mutation evaluates its
// guard and applies the write under one lock, like a single UPDATE statement.
type StockRepo struct {
	store *Store
}

// NewStockRepo creates a stock repository over store.
func NewStockRepo(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

func (r *StockRepo) mutate(storeID, productID id.ID, qty int64, m product.Mutation) (product.StockLevel, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault(OpUpdateStock); err != nil {
		return product.StockLevel{}, err
	}

	p, ok := s.products[productID]
	if !ok || p.StoreID != storeID {
		return m.ExplainMiss(productID, nil, qty)
	}
	if !m.Apply(&p, qty) {
		return m.ExplainMiss(productID, &p, qty)
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[productID] = p
	return p.Level(), nil
}

// DecrementFloor implements product.StockRepository.
func (r *StockRepo) DecrementFloor(_ context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(storeID, productID, qty, product.MutationDecrementFloor)
}

// DecrementFloorIfSufficient implements product.StockRepository.
func (r *StockRepo) DecrementFloorIfSufficient(_ context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(storeID, productID, qty, product.MutationDecrementFloorIfSufficient)
}

// IncrementFloor implements product.StockRepository.
func (r *StockRepo) IncrementFloor(_ context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(storeID, productID, qty, product.MutationIncrementFloor)
}

// IncrementWarehouse implements product.StockRepository.
func (r *StockRepo) IncrementWarehouse(_ context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(storeID, productID, qty, product.MutationIncrementWarehouse)
}

// TransferToFloor implements product.StockRepository.
func (r *StockRepo) TransferToFloor(_ context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(storeID, productID, qty, product.MutationTransferToFloor)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
