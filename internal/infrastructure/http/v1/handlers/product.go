package handlers

import (
	"github.com/gin-gonic/gin"

	"kasirku/internal/domain/product"
	"kasirku/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles the product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	storeID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(storeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromProduct(p))
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	storeID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	var q dto.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	items, err := h.service.List(c.Request.Context(), product.ListFilter{
		StoreID: storeID,
		Search:  q.Search,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromProducts(items), q.Limit, q.Offset))
}

// LowStock handles GET /products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	storeID, _, ok := h.Caller(c)
	if !ok {
		return
	}

	items, err := h.service.LowStock(c.Request.Context(), storeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProducts(items))
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	storeID, _, ok := h.Caller(c)
	if !ok {
		return
	}
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), storeID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}
