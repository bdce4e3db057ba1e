package handlers

import (
	"github.com/gin-gonic/gin"

	"kasirku/internal/domain/sales"
	"kasirku/internal/infrastructure/http/v1/dto"
)

// TransactionHandler handles the order ledger endpoints.
type TransactionHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *sales.Service) *TransactionHandler {
	return &TransactionHandler{BaseHandler: base, service: service}
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	storeID, userID, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.RecordSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(storeID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.RecordSale(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.RecordSaleResponse{
		TransactionID: order.ID.String(),
		ReceiptNumber: order.ReceiptNumber,
	})
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	storeID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var q dto.SalesListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter(storeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = dto.FromOrder(o)
	}
	h.OK(c, items)
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	storeID, _, ok := h.Caller(c)
	if !ok {
		return
	}
	orderID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.Get(c.Request.Context(), storeID, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(order))
}
