// Package sales implements the order ledger: recording a completed sale with
// its lines and the matching store-floor stock decrements as one unit.
package sales

import (
	"fmt"
	"strings"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentQRIS     PaymentMethod = "qris"
	PaymentTransfer PaymentMethod = "transfer"
)

// ParsePaymentMethod normalizes a payment method name.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentCash, PaymentCard, PaymentQRIS, PaymentTransfer:
		return m, nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown payment method %q", s))
}

// Order is an immutable sale header.
type Order struct {
	ID            id.ID         `db:"id" json:"id"`
	StoreID       id.ID         `db:"store_id" json:"storeId"`
	CashierID     id.ID         `db:"cashier_id" json:"cashierId"`
	ReceiptNumber string        `db:"receipt_number" json:"receiptNumber"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`
	CustomerName  string        `db:"customer_name" json:"customerName,omitempty"`
	Subtotal      types.Money   `db:"subtotal" json:"subtotal"`
	Discount      types.Money   `db:"discount" json:"discount"`
	Total         types.Money   `db:"total" json:"total"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`

	Lines []OrderLine `db:"-" json:"items,omitempty"`
}

// OrderLine is one product line of an order.
type OrderLine struct {
	ID        id.ID       `db:"id" json:"id"`
	OrderID   id.ID       `db:"order_id" json:"orderId"`
	LineNo    int         `db:"line_no" json:"lineNo"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	LineTotal types.Money `db:"line_total" json:"lineTotal"`
}

// LineInput is one cart item of a sale.
type LineInput struct {
	ProductID id.ID
	Quantity  int64
	UnitPrice types.Money
}

// RecordSaleInput is a completed checkout.
type RecordSaleInput struct {
	StoreID       id.ID
	CashierID     id.ID
	Lines         []LineInput
	PaymentMethod PaymentMethod
	CustomerName  string
	Subtotal      types.Money
	Discount      types.Money
	Total         types.Money
}

// Validate checks the shape of the sale. Totals are checked separately by VerifyTotals.
func (in *RecordSaleInput) Validate() error {
	if id.IsNil(in.StoreID) {
		return apperror.NewValidation("store_id is required")
	}
	if id.IsNil(in.CashierID) {
		return apperror.NewValidation("cashier_id is required")
	}
	if len(in.Lines) == 0 {
		return apperror.NewValidation("at least one item is required")
	}
	for i, l := range in.Lines {
		if id.IsNil(l.ProductID) {
			return apperror.NewValidation(fmt.Sprintf("item %d: product_id is required", i))
		}
		if l.Quantity <= 0 {
			return apperror.NewValidation(fmt.Sprintf("item %d: quantity must be positive", i)).
				WithDetail("product_id", l.ProductID.String())
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation(fmt.Sprintf("item %d: selling_price must not be negative", i)).
				WithDetail("product_id", l.ProductID.String())
		}
	}
	if _, err := ParsePaymentMethod(string(in.PaymentMethod)); err != nil {
		return err
	}
	if in.Subtotal.IsNegative() || in.Discount.IsNegative() || in.Total.IsNegative() {
		return apperror.NewValidation("amounts must not be negative")
	}
	return nil
}

// ComputedSubtotal is the sum of quantity * unit price over all lines.
func (in *RecordSaleInput) ComputedSubtotal() types.Money {
	sum := types.Zero()
	for _, l := range in.Lines {
		sum = sum.Add(types.Extend(l.UnitPrice, l.Quantity))
	}
	return sum
}

// VerifyTotals checks subtotal = sum(lines) and total = subtotal - discount.
func (in *RecordSaleInput) VerifyTotals() error {
	computed := in.ComputedSubtotal()
	if !computed.Equal(in.Subtotal) {
		return apperror.NewValidation("subtotal does not match items").
			WithDetail("expected", computed.String()).
			WithDetail("actual", in.Subtotal.String())
	}
	if in.Discount.GreaterThan(in.Subtotal) {
		return apperror.NewValidation("discount exceeds subtotal")
	}
	expected := in.Subtotal.Sub(in.Discount)
	if !expected.Equal(in.Total) {
		return apperror.NewValidation("total does not match subtotal minus discount").
			WithDetail("expected", expected.String()).
			WithDetail("actual", in.Total.String())
	}
	return nil
}

// ListFilter narrows the store's sales. All fields except StoreID are optional.
type ListFilter struct {
	StoreID       id.ID
	Date          *time.Time // calendar day in UTC
	PaymentMethod PaymentMethod
	CashierID     *id.ID
	Search        string // receipt number or customer name
	Limit         int
	Offset        int
}
