// Package sales_repo provides the PostgreSQL order ledger repository.
package sales_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/domain/sales"
	"kasirku/internal/infrastructure/storage/postgres"
)

const (
	ordersTable = "sales_orders"
	linesTable  = "sales_order_lines"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var orderColumns = []string{
	"id", "store_id", "cashier_id", "receipt_number", "payment_method", "customer_name",
	"subtotal", "discount", "total", "created_at",
}

var lineColumns = []string{
	"id", "order_id", "line_no", "product_id", "quantity", "unit_price", "line_total",
}

// OrderRepo implements sales.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateOrder implements sales.Repository.
func (r *OrderRepo) CreateOrder(ctx context.Context, o *sales.Order) error {
	sql, args, err := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(
			o.ID, o.StoreID, o.CashierID, o.ReceiptNumber, o.PaymentMethod, o.CustomerName,
			o.Subtotal, o.Discount, o.Total, o.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.NewConflict("receipt number already used").WithDetail("receipt_number", o.ReceiptNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertLine implements sales.Repository. The line is written only when its
// product belongs to the order's store; otherwise NotFound is returned.
func (r *OrderRepo) InsertLine(ctx context.Context, line *sales.OrderLine) error {
	sql, args, err := r.insertLineQuery(line).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperror.NewNotFound("product", line.ProductID.String())
		}
		return fmt.Errorf("insert order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", line.ProductID.String())
	}
	return nil
}

func (r *OrderRepo) insertLineQuery(line *sales.OrderLine) squirrel.InsertBuilder {
	sel := r.builder.Select().
		Column("?::uuid", line.ID).
		Column("o.id").
		Column("?::int", line.LineNo).
		Column("p.id").
		Column("?::bigint", line.Quantity).
		Column("?::numeric", line.UnitPrice).
		Column("?::numeric", line.LineTotal).
		From(ordersTable + " o").
		Join(productsJoin).
		Where(squirrel.Eq{"o.id": line.OrderID, "p.id": line.ProductID})

	return r.builder.Insert(linesTable).
		Columns(lineColumns...).
		Select(sel)
}

const productsJoin = "products p ON p.store_id = o.store_id"

// GetByID implements sales.Repository.
func (r *OrderRepo) GetByID(ctx context.Context, storeID, orderID id.ID) (*sales.Order, error) {
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"store_id": storeID, "id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var o sales.Order
	if err := pgxscan.Get(ctx, querier, &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	sql, args, err = r.builder.Select(lineColumns...).
		From(linesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select lines: %w", err)
	}

	o.Lines = make([]sales.OrderLine, 0)
	if err := pgxscan.Select(ctx, querier, &o.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	return &o, nil
}

// List implements sales.Repository.
func (r *OrderRepo) List(ctx context.Context, filter sales.ListFilter) ([]*sales.Order, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	items := make([]*sales.Order, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return items, nil
}

func (r *OrderRepo) listQuery(filter sales.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"store_id": filter.StoreID})

	if filter.Date != nil {
		y, m, d := filter.Date.UTC().Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		q = q.Where(squirrel.GtOrEq{"created_at": start}).
			Where(squirrel.Lt{"created_at": start.AddDate(0, 0, 1)})
	}
	if filter.PaymentMethod != "" {
		q = q.Where(squirrel.Eq{"payment_method": filter.PaymentMethod})
	}
	if filter.CashierID != nil {
		q = q.Where(squirrel.Eq{"cashier_id": *filter.CashierID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"receipt_number": pattern},
			squirrel.ILike{"customer_name": pattern},
		})
	}

	q = q.OrderBy("created_at DESC", "receipt_number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}
