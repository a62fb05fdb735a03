package purchaseorder

import (
	"time"

	"github.com/google/uuid"
)

// Status represents purchase order state.
type Status string

const (
	StatusIssued    Status = "ISSUED"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
)

// Details is caller input for issuing a purchase order.
type Details struct {
	DeliveryAddress string `json:"deliveryAddress"`
	PaymentTerms    string `json:"paymentTerms"`
	Notes           string `json:"notes,omitempty"`
}

// PurchaseOrder is the binding order document generated from an accepted
// negotiation. At most one exists per negotiation.
type PurchaseOrder struct {
	ID              int64     `json:"id"`
	POID            uuid.UUID `json:"purchaseOrderId"`
	NegotiationID   uuid.UUID `json:"negotiationId"`
	BidID           uuid.UUID `json:"bidId"`
	BuyerID         uuid.UUID `json:"buyerId"`
	SupplierID      uuid.UUID `json:"supplierId"`
	TotalPrice      float64   `json:"totalPrice"`
	Currency        string    `json:"currency"`
	DeliveryAddress string    `json:"deliveryAddress"`
	PaymentTerms    string    `json:"paymentTerms"`
	Notes           string    `json:"notes,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}
