package inventory

import (
	"context"
	"fmt"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/tx"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/audit"
	"kasirku/internal/domain/product"
	"kasirku/pkg/logger"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// Service is the inventory ledger.
type Service struct {
	products  product.Repository
	stock     product.StockRepository
	movements MovementRepository
	txManager tx.Manager
	audit     audit.Recorder
}

// NewService creates the inventory ledger service. recorder may be nil.
func NewService(
	products product.Repository,
	stock product.StockRepository,
	movements MovementRepository,
	txManager tx.Manager,
	recorder audit.Recorder,
) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		products:  products,
		stock:     stock,
		movements: movements,
		txManager: txManager,
		audit:     recorder,
	}
}

// ReceiveStock increments floor or warehouse stock and appends an IN movement
// in one transaction. Floor receipts of UNTRACKED products leave the counters
// unchanged but are still logged.
func (s *Service) ReceiveStock(ctx context.Context, in ReceiveStockInput) (*Movement, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var movement *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.receive(ctx, in, CauseRestock)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, apperror.AsPersistence(err)
	}

	logger.Info(ctx, "stock received",
		"product_id", in.ProductID,
		"quantity", in.Quantity,
		"destination", in.Destination,
		"movement_id", movement.ID,
	)

	return movement, nil
}

// PostInitialStock receives the opening quantity of a freshly created product.
// It must run inside the caller's transaction.
func (s *Service) PostInitialStock(ctx context.Context, p *product.Product, qty int64, unitCost types.Money) error {
	in := ReceiveStockInput{
		StoreID:     p.StoreID,
		ProductID:   p.ID,
		Quantity:    qty,
		UnitCost:    unitCost,
		Destination: DestinationStoreFloor,
	}
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.receive(ctx, in, CauseInitial)
	return err
}

func (s *Service) receive(ctx context.Context, in ReceiveStockInput, cause Cause) (*Movement, error) {
	var (
		level product.StockLevel
		err   error
	)
	switch in.Destination {
	case DestinationWarehouse:
		level, err = s.stock.IncrementWarehouse(ctx, in.StoreID, in.ProductID, in.Quantity)
	default:
		level, err = s.stock.IncrementFloor(ctx, in.StoreID, in.ProductID, in.Quantity)
	}
	if err != nil {
		return nil, fmt.Errorf("increment stock: %w", err)
	}

	m := NewMovement(in.StoreID, in.ProductID, DirectionIn, in.Destination, cause, in.Quantity, in.UnitCost)
	if !id.IsNil(in.UserID) {
		userID := in.UserID
		m.UserID = &userID
	}
	if err := s.movements.Append(ctx, m); err != nil {
		return nil, fmt.Errorf("append movement: %w", err)
	}

	if err := s.audit.Record(ctx, audit.Entry{
		EntityType: "product",
		EntityID:   in.ProductID,
		Action:     audit.ActionReceive,
		Changes: map[string]any{
			"movement_id":     m.ID,
			"destination":     in.Destination,
			"quantity":        in.Quantity,
			"total_cost":      m.TotalCost.String(),
			"floor_stock":     level.FloorStock,
			"warehouse_stock": level.WarehouseStock,
		},
	}); err != nil {
		return nil, fmt.Errorf("audit receipt: %w", err)
	}

	return m, nil
}

// TransferToStore moves qty units from the warehouse to the store floor with a
// single conditional update. When the warehouse holds less than qty nothing
// changes and apperror InsufficientStock reports the shortfall.
func (s *Service) TransferToStore(ctx context.Context, storeID, productID, userID id.ID, qty int64) (*product.Product, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("quantity", qty)
	}

	var level product.StockLevel
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.stock.TransferToFloor(ctx, storeID, productID, qty)
		if err != nil {
			return err
		}
		level = l
		return s.audit.Record(ctx, audit.Entry{
			EntityType: "product",
			EntityID:   productID,
			Action:     audit.ActionTransfer,
			Changes: map[string]any{
				"quantity":        qty,
				"user_id":         userID,
				"floor_stock":     l.FloorStock,
				"warehouse_stock": l.WarehouseStock,
			},
		})
	})
	if err != nil {
		return nil, apperror.AsPersistence(err)
	}

	logger.Info(ctx, "stock transferred to floor",
		"product_id", productID,
		"quantity", qty,
		"floor_stock", level.FloorStock,
		"warehouse_stock", level.WarehouseStock,
	)

	p, err := s.products.GetByID(ctx, storeID, productID)
	if err != nil {
		return nil, apperror.AsPersistence(err)
	}
	return p, nil
}

// History returns a page of a product's movements, newest first.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]*Movement, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	items, err := s.movements.ListByProduct(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return items, nil
}
