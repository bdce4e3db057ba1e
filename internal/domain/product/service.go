package product

import (
	"context"
	"fmt"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/tx"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/audit"
	"kasirku/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// InitialStockPoster posts the opening quantity of a new product as an IN movement.
// Implemented by the inventory service.
type InitialStockPoster interface {
	PostInitialStock(ctx context.Context, p *Product, qty int64, unitCost types.Money) error
}

// CreateInput carries the fields of a new product.
type CreateInput struct {
	StoreID          id.ID
	SKU              string
	Name             string
	Category         string
	SellingPrice     types.Money
	ReorderThreshold int64
	StockPolicy      StockPolicy
	InitialQuantity  int64
	UnitCost         types.Money
}

// Service provides catalog operations over products.
type Service struct {
	repo      Repository
	txManager tx.Manager
	stock     InitialStockPoster
	audit     audit.Recorder
}

// NewService creates a product service. stock may be nil when initial
// quantities are not accepted; audit may be nil.
func NewService(repo Repository, txManager tx.Manager, stock InitialStockPoster, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		stock:     stock,
		audit:     recorder,
	}
}

// Create registers a product. A positive initial quantity is received in the
// same transaction, so the product never exists without its opening movement.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if in.StockPolicy == "" {
		in.StockPolicy = StockTracked
	}
	p := New(in.StoreID, in.SKU, in.Name, in.SellingPrice, in.StockPolicy)
	p.Category = in.Category
	p.ReorderThreshold = in.ReorderThreshold

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if in.InitialQuantity < 0 {
		return nil, apperror.NewValidation("initial_quantity must not be negative")
	}
	if in.InitialQuantity > 0 && s.stock == nil {
		return nil, apperror.NewValidation("initial stock is not supported")
	}
	if in.UnitCost.IsNegative() {
		return nil, apperror.NewValidation("unit_cost must not be negative")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := s.audit.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   p.ID,
			Action:     audit.ActionCreate,
			Changes: map[string]any{
				"sku":           p.SKU,
				"name":          p.Name,
				"selling_price": p.SellingPrice.String(),
				"stock_policy":  p.StockPolicy,
			},
		}); err != nil {
			return fmt.Errorf("audit product: %w", err)
		}
		if in.InitialQuantity > 0 {
			if err := s.stock.PostInitialStock(ctx, p, in.InitialQuantity, in.UnitCost); err != nil {
				return fmt.Errorf("post initial stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperror.AsPersistence(err)
	}

	logger.Info(ctx, "product created",
		"product_id", p.ID,
		"sku", p.SKU,
		"initial_quantity", in.InitialQuantity,
	)

	// Re-read so the returned counters include the opening movement.
	return s.Get(ctx, p.StoreID, p.ID)
}

// Get returns one product of the store.
func (s *Service) Get(ctx context.Context, storeID, productID id.ID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, storeID, productID)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err).WithDetail("product_id", productID.String())
	}
	return p, nil
}

// List returns the store's products matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return items, nil
}

// LowStock returns tracked products at or below their reorder threshold.
func (s *Service) LowStock(ctx context.Context, storeID id.ID) ([]*Product, error) {
	return s.List(ctx, ListFilter{StoreID: storeID, LowStockOnly: true, Limit: maxListLimit})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
