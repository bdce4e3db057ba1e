package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/tx"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/audit"
	"kasirku/internal/domain/inventory"
	"kasirku/internal/domain/product"
	"kasirku/pkg/logger"
)

// StockMode selects how a sale decrements store-floor stock.
type StockMode string

const (
	// StockModeAllowNegative decrements unconditionally; floor stock may go negative.
	StockModeAllowNegative StockMode = "allow_negative"
	// StockModeStrict rejects the sale when floor stock does not cover a line.
	StockModeStrict StockMode = "strict"
)

// ParseStockMode normalizes a stock mode name. Empty defaults to allow_negative.
func ParseStockMode(s string) (StockMode, error) {
	switch StockMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", StockModeAllowNegative:
		return StockModeAllowNegative, nil
	case StockModeStrict:
		return StockModeStrict, nil
	}
	return "", fmt.Errorf("unknown sale stock mode %q", s)
}

// Options tune RecordSale. The zero value trusts client totals, allows
// negative floor stock and writes no OUT movements.
type Options struct {
	StockMode       StockMode
	RecordMovements bool
	VerifyTotals    bool
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service is the order ledger.
type Service struct {
	repo      Repository
	stock     product.StockRepository
	movements inventory.MovementRepository
	numberer  ReceiptNumberer
	txManager tx.Manager
	audit     audit.Recorder
	cache     OrderCache
	opts      Options
}

// Deps groups the collaborators of Service. Movements is required only when
// Options.RecordMovements is set; Audit and Cache are optional.
type Deps struct {
	Repo      Repository
	Stock     product.StockRepository
	Movements inventory.MovementRepository
	Numberer  ReceiptNumberer
	TxManager tx.Manager
	Audit     audit.Recorder
	Cache     OrderCache
}

// NewService creates the order ledger service.
func NewService(deps Deps, opts Options) *Service {
	if deps.Audit == nil {
		deps.Audit = audit.Nop{}
	}
	if opts.StockMode == "" {
		opts.StockMode = StockModeAllowNegative
	}
	return &Service{
		repo:      deps.Repo,
		stock:     deps.Stock,
		movements: deps.Movements,
		numberer:  deps.Numberer,
		txManager: deps.TxManager,
		audit:     deps.Audit,
		cache:     deps.Cache,
		opts:      opts,
	}
}

// RecordSale writes the order header, its lines and the floor stock decrements
// of tracked products in one transaction. Any failure rolls back all of it.
func (s *Service) RecordSale(ctx context.Context, in RecordSaleInput) (*Order, error) {
	if method, err := ParsePaymentMethod(string(in.PaymentMethod)); err == nil {
		in.PaymentMethod = method
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if s.opts.VerifyTotals {
		if err := in.VerifyTotals(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	order := &Order{
		ID:            id.New(),
		StoreID:       in.StoreID,
		CashierID:     in.CashierID,
		PaymentMethod: in.PaymentMethod,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		Subtotal:      in.Subtotal,
		Discount:      in.Discount,
		Total:         in.Total,
		CreatedAt:     now,
		Lines:         make([]OrderLine, 0, len(in.Lines)),
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numberer.NextReceiptNumber(ctx, in.StoreID, now)
		if err != nil {
			return fmt.Errorf("next receipt number: %w", err)
		}
		order.ReceiptNumber = number
		order.Lines = order.Lines[:0]

		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for i, l := range in.Lines {
			line := OrderLine{
				ID:        id.New(),
				OrderID:   order.ID,
				LineNo:    i + 1,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				LineTotal: types.Extend(l.UnitPrice, l.Quantity),
			}
			if err := s.repo.InsertLine(ctx, &line); err != nil {
				return fmt.Errorf("insert line %d: %w", line.LineNo, err)
			}
			order.Lines = append(order.Lines, line)

			level, err := s.decrement(ctx, in.StoreID, l.ProductID, l.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock for line %d: %w", line.LineNo, err)
			}

			if s.opts.RecordMovements && level.IsTracked() {
				m := inventory.NewMovement(in.StoreID, l.ProductID, inventory.DirectionOut,
					inventory.DestinationStoreFloor, inventory.CauseSale, l.Quantity, l.UnitPrice)
				cashier := in.CashierID
				ref := order.ID
				m.UserID = &cashier
				m.ReferenceID = &ref
				m.CreatedAt = now
				if err := s.movements.Append(ctx, m); err != nil {
					return fmt.Errorf("append sale movement for line %d: %w", line.LineNo, err)
				}
			}
		}

		return s.audit.Record(ctx, audit.Entry{
			EntityType: "sales_order",
			EntityID:   order.ID,
			Action:     audit.ActionSale,
			Changes: map[string]any{
				"receipt_number": order.ReceiptNumber,
				"lines":          len(order.Lines),
				"total":          order.Total.String(),
				"payment_method": order.PaymentMethod,
			},
		})
	})
	if err != nil {
		logger.Warn(ctx, "sale rolled back", "order_id", order.ID, "error", err)
		return nil, apperror.AsPersistence(err)
	}

	logger.Info(ctx, "sale recorded",
		"order_id", order.ID,
		"receipt_number", order.ReceiptNumber,
		"lines", len(order.Lines),
		"total", order.Total.String(),
	)

	return order, nil
}

func (s *Service) decrement(ctx context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	if s.opts.StockMode == StockModeStrict {
		return s.stock.DecrementFloorIfSufficient(ctx, storeID, productID, qty)
	}
	return s.stock.DecrementFloor(ctx, storeID, productID, qty)
}

// Get returns one order of the store with its lines.
func (s *Service) Get(ctx context.Context, storeID, orderID id.ID) (*Order, error) {
	if s.cache != nil {
		if o, ok := s.cache.Get(ctx, storeID, orderID); ok {
			return o, nil
		}
	}

	o, err := s.repo.GetByID(ctx, storeID, orderID)
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewInternal(err).WithDetail("order_id", orderID.String())
	}

	if s.cache != nil {
		s.cache.Set(ctx, o)
	}
	return o, nil
}

// List returns the store's orders matching filter, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Search = strings.TrimSpace(filter.Search)

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return orders, nil
}
