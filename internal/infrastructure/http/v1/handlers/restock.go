package handlers

import (
	"github.com/gin-gonic/gin"

	"kasirku/internal/domain/inventory"
	"kasirku/internal/infrastructure/http/v1/dto"
)

// RestockHandler handles the inventory ledger endpoints.
type RestockHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewRestockHandler creates a new restock handler.
func NewRestockHandler(base *BaseHandler, service *inventory.Service) *RestockHandler {
	return &RestockHandler{BaseHandler: base, service: service}
}

// Receive handles POST /restock
func (h *RestockHandler) Receive(c *gin.Context) {
	storeID, userID, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.RestockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(storeID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	movement, err := h.service.ReceiveStock(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMovement(movement))
}

// History handles GET /restock/:productId
func (h *RestockHandler) History(c *gin.Context) {
	storeID, _, ok := h.Caller(c)
	if !ok {
		return
	}
	productID, ok := h.PathID(c, "productId")
	if !ok {
		return
	}

	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}

	movements, err := h.service.History(c.Request.Context(), inventory.HistoryFilter{
		StoreID:   storeID,
		ProductID: productID,
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromMovement(m)
	}
	h.OK(c, items)
}

// Transfer handles POST /products/:id/transfer
func (h *RestockHandler) Transfer(c *gin.Context) {
	storeID, userID, ok := h.Caller(c)
	if !ok {
		return
	}
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.TransferToStore(c.Request.Context(), storeID, productID, userID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}
