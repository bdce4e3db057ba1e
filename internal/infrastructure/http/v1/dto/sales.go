package dto

import (
	"fmt"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/sales"
)

// CartItemRequest is one line of a sale.
type CartItemRequest struct {
	ProductID    string      `json:"product_id" binding:"required"`
	Quantity     int64       `json:"quantity" binding:"required,gt=0"`
	SellingPrice types.Money `json:"selling_price"`
}

// RecordSaleRequest is the body of POST /transactions.
type RecordSaleRequest struct {
	CartItems      []CartItemRequest `json:"cartItems" binding:"required,min=1,dive"`
	PaymentMethod  string            `json:"paymentMethod" binding:"required"`
	CustomerName   string            `json:"customerName"`
	Subtotal       types.Money       `json:"subtotal"`
	DiscountAmount types.Money       `json:"discountAmount"`
	Total          types.Money       `json:"total"`
}

// ToInput converts the request into a sale of the caller's store.
func (r *RecordSaleRequest) ToInput(storeID, cashierID id.ID) (sales.RecordSaleInput, error) {
	lines := make([]sales.LineInput, len(r.CartItems))
	for i, item := range r.CartItems {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return sales.RecordSaleInput{}, apperror.NewValidation(fmt.Sprintf("item %d: invalid product_id", i)).
				WithDetail("product_id", item.ProductID)
		}
		lines[i] = sales.LineInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.SellingPrice,
		}
	}

	return sales.RecordSaleInput{
		StoreID:       storeID,
		CashierID:     cashierID,
		Lines:         lines,
		PaymentMethod: sales.PaymentMethod(r.PaymentMethod),
		CustomerName:  r.CustomerName,
		Subtotal:      r.Subtotal,
		Discount:      r.DiscountAmount,
		Total:         r.Total,
	}, nil
}

// RecordSaleResponse is returned by POST /transactions.
type RecordSaleResponse struct {
	TransactionID string `json:"transactionId"`
	ReceiptNumber string `json:"receiptNumber"`
}

// SalesListQuery holds the filters of GET /transactions.
type SalesListQuery struct {
	PageQuery
	Date        string `form:"date"`
	PaymentType string `form:"paymentType"`
	CashierID   string `form:"cashierId"`
	Search      string `form:"search"`
}

// ToFilter converts the query into a store-scoped filter. date is YYYY-MM-DD.
func (q *SalesListQuery) ToFilter(storeID id.ID) (sales.ListFilter, error) {
	filter := sales.ListFilter{
		StoreID: storeID,
		Search:  q.Search,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
	if q.Date != "" {
		day, err := time.Parse(time.DateOnly, q.Date)
		if err != nil {
			return filter, apperror.NewValidation("date must be YYYY-MM-DD").WithDetail("date", q.Date)
		}
		filter.Date = &day
	}
	if q.PaymentType != "" {
		method, err := sales.ParsePaymentMethod(q.PaymentType)
		if err != nil {
			return filter, err
		}
		filter.PaymentMethod = method
	}
	if q.CashierID != "" {
		cashierID, err := id.Parse(q.CashierID)
		if err != nil {
			return filter, apperror.NewValidation("invalid cashierId format")
		}
		filter.CashierID = &cashierID
	}
	return filter, nil
}

// OrderItemResponse is one line of a sale detail.
type OrderItemResponse struct {
	ID           string      `json:"id"`
	LineNo       int         `json:"lineNo"`
	ProductID    string      `json:"product_id"`
	Quantity     int64       `json:"quantity"`
	SellingPrice types.Money `json:"selling_price"`
	LineTotal    types.Money `json:"lineTotal"`
}

// OrderResponse is a sale header with optional items.
type OrderResponse struct {
	ID             string              `json:"id"`
	ReceiptNumber  string              `json:"receiptNumber"`
	CashierID      string              `json:"cashierId"`
	PaymentMethod  string              `json:"paymentMethod"`
	CustomerName   string              `json:"customerName,omitempty"`
	Subtotal       types.Money         `json:"subtotal"`
	DiscountAmount types.Money         `json:"discountAmount"`
	Total          types.Money         `json:"total"`
	CreatedAt      time.Time           `json:"createdAt"`
	Items          []OrderItemResponse `json:"items,omitempty"`
}

// FromOrder creates OrderResponse from sales.Order.
func FromOrder(o *sales.Order) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID.String(),
		ReceiptNumber:  o.ReceiptNumber,
		CashierID:      o.CashierID.String(),
		PaymentMethod:  string(o.PaymentMethod),
		CustomerName:   o.CustomerName,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.Discount,
		Total:          o.Total,
		CreatedAt:      o.CreatedAt,
	}
	if len(o.Lines) > 0 {
		resp.Items = make([]OrderItemResponse, len(o.Lines))
		for i, l := range o.Lines {
			resp.Items[i] = OrderItemResponse{
				ID:           l.ID.String(),
				LineNo:       l.LineNo,
				ProductID:    l.ProductID.String(),
				Quantity:     l.Quantity,
				SellingPrice: l.UnitPrice,
				LineTotal:    l.LineTotal,
			}
		}
	}
	return resp
}
