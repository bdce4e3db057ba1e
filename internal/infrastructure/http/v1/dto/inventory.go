package dto

import (
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/inventory"
)

// RestockRequest is the body of POST /restock.
type RestockRequest struct {
	ProductID   string       `json:"product_id" binding:"required"`
	Quantity    int64        `json:"quantity" binding:"required,gt=0"`
	UnitCost    *types.Money `json:"unit_cost"`
	Destination string       `json:"destination"`
}

// ToInput converts the request into a receipt of the caller's store.
func (r *RestockRequest) ToInput(storeID, userID id.ID) (inventory.ReceiveStockInput, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return inventory.ReceiveStockInput{}, apperror.NewValidation("invalid product_id format").
			WithDetail("product_id", r.ProductID)
	}
	dest, err := inventory.ParseDestination(r.Destination)
	if err != nil {
		return inventory.ReceiveStockInput{}, err
	}
	in := inventory.ReceiveStockInput{
		StoreID:     storeID,
		ProductID:   productID,
		UserID:      userID,
		Quantity:    r.Quantity,
		UnitCost:    types.Zero(),
		Destination: dest,
	}
	if r.UnitCost != nil {
		in.UnitCost = *r.UnitCost
	}
	return in, nil
}

// TransferRequest is the body of POST /products/:id/transfer.
type TransferRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// MovementResponse is one row of the stock movement log.
type MovementResponse struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"productId"`
	UserID      *string     `json:"userId,omitempty"`
	Direction   string      `json:"direction"`
	Destination string      `json:"destination"`
	Cause       string      `json:"cause"`
	Quantity    int64       `json:"quantity"`
	UnitCost    types.Money `json:"unitCost"`
	TotalCost   types.Money `json:"totalCost"`
	ReferenceID *string     `json:"referenceId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// FromMovement creates MovementResponse from inventory.Movement.
func FromMovement(m *inventory.Movement) MovementResponse {
	resp := MovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Direction:   string(m.Direction),
		Destination: string(m.Destination),
		Cause:       string(m.Cause),
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		CreatedAt:   m.CreatedAt,
	}
	if m.UserID != nil {
		s := m.UserID.String()
		resp.UserID = &s
	}
	if m.ReferenceID != nil {
		s := m.ReferenceID.String()
		resp.ReferenceID = &s
	}
	return resp
}
