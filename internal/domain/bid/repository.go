package bid

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for bids.
type Repository interface {
	Create(ctx context.Context, b *Bid) error
	GetByID(ctx context.Context, bidID uuid.UUID) (*Bid, error)
}
