package bid

import (
	"time"

	"github.com/google/uuid"
)

// Status represents bid lifecycle state.
type Status string

const (
	StatusSubmitted   Status = "SUBMITTED"
	StatusShortlisted Status = "SHORTLISTED"
	StatusAwarded     Status = "AWARDED"
	StatusDeclined    Status = "DECLINED"
)

// Bid is a supplier's priced response to an RFQ. Bids are authored and scored
// elsewhere; this package only anchors negotiations to their two parties.
type Bid struct {
	ID         int64     `json:"id"`
	BidID      uuid.UUID `json:"bidId"`
	RFQID      uuid.UUID `json:"rfqId"`
	BuyerID    uuid.UUID `json:"buyerId"`
	SupplierID uuid.UUID `json:"supplierId"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Negotiable reports whether a negotiation may be opened against the bid.
func (b *Bid) Negotiable() bool {
	return b.Status == StatusSubmitted || b.Status == StatusShortlisted
}
