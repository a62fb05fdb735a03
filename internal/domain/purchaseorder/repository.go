package purchaseorder

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for purchase orders.
type Repository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	GetByID(ctx context.Context, poID uuid.UUID) (*PurchaseOrder, error)
	GetByNegotiationID(ctx context.Context, negotiationID uuid.UUID) (*PurchaseOrder, error)
}
