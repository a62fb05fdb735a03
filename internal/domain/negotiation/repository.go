package negotiation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for negotiations and their message logs.
// ListMessages must return the log in insertion order and never reorder.
type Repository interface {
	Create(ctx context.Context, n *Negotiation) error
	GetByID(ctx context.Context, negotiationID uuid.UUID) (*Negotiation, error)
	GetByBidID(ctx context.Context, bidID uuid.UUID) (*Negotiation, error)
	ListByBidID(ctx context.Context, bidID uuid.UUID) ([]*Negotiation, error)
	UpdateStatus(ctx context.Context, negotiationID uuid.UUID, from, to Status) (bool, error)
	SetPurchaseOrderID(ctx context.Context, negotiationID, purchaseOrderID uuid.UUID) (bool, error)

	AppendMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, negotiationID uuid.UUID) ([]*Message, error)
	// ResolveOffer sets a still-unresolved offer's status. It reports false when
	// the offer was already resolved, so the first concurrent writer wins.
	ResolveOffer(ctx context.Context, negotiationID uuid.UUID, messageID string, to OfferStatus) (bool, error)
}
