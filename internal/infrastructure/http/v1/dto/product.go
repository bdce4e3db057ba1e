package dto

import (
	"time"

	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/product"
)

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	SKU              string       `json:"sku" binding:"required"`
	Name             string       `json:"name" binding:"required"`
	Category         string       `json:"category"`
	SellingPrice     types.Money  `json:"sellingPrice"`
	ReorderThreshold int64        `json:"reorderThreshold"`
	StockPolicy      string       `json:"stockPolicy"`
	InitialQuantity  int64        `json:"initialQuantity"`
	UnitCost         *types.Money `json:"unitCost"`
}

// ToInput converts the request into a product of the caller's store.
func (r *CreateProductRequest) ToInput(storeID id.ID) (product.CreateInput, error) {
	policy, err := product.ParseStockPolicy(r.StockPolicy)
	if err != nil {
		return product.CreateInput{}, err
	}
	in := product.CreateInput{
		StoreID:          storeID,
		SKU:              r.SKU,
		Name:             r.Name,
		Category:         r.Category,
		SellingPrice:     r.SellingPrice,
		ReorderThreshold: r.ReorderThreshold,
		StockPolicy:      policy,
		InitialQuantity:  r.InitialQuantity,
		UnitCost:         types.Zero(),
	}
	if r.UnitCost != nil {
		in.UnitCost = *r.UnitCost
	}
	return in, nil
}

// ProductListQuery holds the filters of GET /products.
type ProductListQuery struct {
	PageQuery
	Search string `form:"search"`
}

// ProductResponse is a product with its stock counters.
type ProductResponse struct {
	ID               string      `json:"id"`
	SKU              string      `json:"sku"`
	Name             string      `json:"name"`
	Category         string      `json:"category,omitempty"`
	SellingPrice     types.Money `json:"sellingPrice"`
	StoreFloorStock  int64       `json:"storeFloorStock"`
	WarehouseStock   int64       `json:"warehouseStock"`
	ReorderThreshold int64       `json:"reorderThreshold"`
	StockPolicy      string      `json:"stockPolicy"`
	NeedsReorder     bool        `json:"needsReorder"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// FromProduct creates ProductResponse from product.Product.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID.String(),
		SKU:              p.SKU,
		Name:             p.Name,
		Category:         p.Category,
		SellingPrice:     p.SellingPrice,
		StoreFloorStock:  p.FloorStock,
		WarehouseStock:   p.WarehouseStock,
		ReorderThreshold: p.ReorderThreshold,
		StockPolicy:      string(p.StockPolicy),
		NeedsReorder:     p.NeedsReorder(),
		UpdatedAt:        p.UpdatedAt,
	}
}

// FromProducts maps a list of products.
func FromProducts(items []*product.Product) []ProductResponse {
	out := make([]ProductResponse, len(items))
	for i, p := range items {
		out[i] = FromProduct(p)
	}
	return out
}
