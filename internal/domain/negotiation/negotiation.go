package negotiation

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Status represents negotiation state. CLOSED and CANCELLED are terminal.
type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusClosed    Status = "CLOSED"
	StatusCancelled Status = "CANCELLED"
)

// MessageType represents the kind of a negotiation message.
type MessageType string

const (
	TypeText         MessageType = "TEXT"
	TypeCounterOffer MessageType = "COUNTER_OFFER"
	TypeAcceptance   MessageType = "ACCEPTANCE"
	TypeRejection    MessageType = "REJECTION"
)

// OfferStatus represents the resolution of a single counter-offer.
// A nil OfferStatus on a counter-offer message means unresolved.
type OfferStatus string

const (
	OfferPending   OfferStatus = "PENDING"
	OfferAccepted  OfferStatus = "ACCEPTED"
	OfferRejected  OfferStatus = "REJECTED"
	OfferCancelled OfferStatus = "CANCELLED"
)

// OfferDecision is a party's verdict on a pending counter-offer.
type OfferDecision string

const (
	DecisionAccept   OfferDecision = "ACCEPT"
	DecisionReject   OfferDecision = "REJECT"
	DecisionWithdraw OfferDecision = "WITHDRAW"
)

var (
	ErrInvalidTransition = errors.New("invalid offer or negotiation transition")
	ErrNegotiationClosed = errors.New("negotiation no longer accepts this operation")
	ErrNotParticipant    = errors.New("actor is not a negotiation participant")
	ErrNotAcceptedYet    = errors.New("negotiation has no accepted offer")
	ErrNotFound          = errors.New("not found")
)

// Offer carries the structured terms embedded in a counter-offer message.
type Offer struct {
	Price         *float64 `json:"price,omitempty"`
	DeliveryTerms *string  `json:"deliveryTerms,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	DeliveryDays  *int     `json:"deliveryDays,omitempty"`
}

// Actionable reports whether the offer carries enough terms to be accepted.
func (o *Offer) Actionable() bool {
	if o == nil {
		return false
	}
	return o.Price != nil || (o.DeliveryTerms != nil && strings.TrimSpace(*o.DeliveryTerms) != "")
}

// Message is one entry in a negotiation's append-only log. MessageID is a ULID,
// so insertion order and lexicographic id order agree.
type Message struct {
	ID            int64        `json:"id"`
	MessageID     string       `json:"messageId"`
	NegotiationID uuid.UUID    `json:"negotiationId"`
	SenderID      uuid.UUID    `json:"senderId"`
	Type          MessageType  `json:"type"`
	Body          string       `json:"body"`
	Offer         *Offer       `json:"offer,omitempty"`
	OfferStatus   *OfferStatus `json:"offerStatus,omitempty"`
	Attachments   []string     `json:"attachments,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// Negotiation binds one bid to its message log and top-level status.
// It is never deleted; terminal states are permanent.
type Negotiation struct {
	ID              int64      `json:"id"`
	NegotiationID   uuid.UUID  `json:"negotiationId"`
	BidID           uuid.UUID  `json:"bidId"`
	BuyerID         uuid.UUID  `json:"buyerId"`
	SupplierID      uuid.UUID  `json:"supplierId"`
	Status          Status     `json:"status"`
	PurchaseOrderID *uuid.UUID `json:"purchaseOrderId,omitempty"`
	Messages        []*Message `json:"messages"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Terminal reports whether the negotiation reached a final status.
func (n *Negotiation) Terminal() bool {
	return n.Status == StatusClosed || n.Status == StatusCancelled
}

// IsParticipant reports whether actorID is one of the two parties.
func (n *Negotiation) IsParticipant(actorID uuid.UUID) bool {
	return actorID == n.BuyerID || actorID == n.SupplierID
}

// Counterparty returns the other party relative to actorID.
func (n *Negotiation) Counterparty(actorID uuid.UUID) uuid.UUID {
	if actorID == n.BuyerID {
		return n.SupplierID
	}
	return n.BuyerID
}

// AcceptedOffer returns the accepted counter-offer message, if any.
func (n *Negotiation) AcceptedOffer() *Message {
	for _, m := range n.Messages {
		if m.Type == TypeCounterOffer && m.OfferStatus != nil && *m.OfferStatus == OfferAccepted {
			return m
		}
	}
	return nil
}

// ClosedByAcceptance reports whether the negotiation closed because terms were
// accepted, as opposed to being cancelled outright.
func (n *Negotiation) ClosedByAcceptance() bool {
	if n.Status != StatusClosed {
		return false
	}
	if n.AcceptedOffer() != nil {
		return true
	}
	for _, m := range n.Messages {
		if m.Type == TypeAcceptance {
			return true
		}
	}
	return false
}

// Draft is caller input for a new message, validated before append.
type Draft struct {
	Type        MessageType `json:"type"`
	Body        string      `json:"body"`
	Offer       *Offer      `json:"offer,omitempty"`
	Attachments []string    `json:"attachments,omitempty"`
	// CloseNegotiation on a REJECTION draft cancels the whole negotiation
	// instead of commenting; single-offer rejection goes through RespondToOffer.
	CloseNegotiation bool `json:"closeNegotiation,omitempty"`
}

// ValidateDraft checks a draft against the type-specific message shape.
func ValidateDraft(d Draft) error {
	switch d.Type {
	case TypeText:
		if strings.TrimSpace(d.Body) == "" {
			return errors.New("text message requires a body")
		}
		if d.Offer != nil {
			return errors.New("text message must not carry offer terms")
		}
	case TypeCounterOffer:
		if !d.Offer.Actionable() {
			return errors.New("counter-offer requires a price or delivery terms")
		}
		if d.Offer.Price != nil && *d.Offer.Price <= 0 {
			return errors.New("counter-offer price must be positive")
		}
		if d.Offer.DeliveryDays != nil && *d.Offer.DeliveryDays < 0 {
			return errors.New("counter-offer delivery days must not be negative")
		}
	case TypeAcceptance, TypeRejection:
		if d.Offer != nil {
			return errors.New(strings.ToLower(string(d.Type)) + " message must not carry offer terms")
		}
	default:
		return errors.New("unknown message type: " + string(d.Type))
	}
	return nil
}

// DefaultBody fills the conventional phrase for typed messages sent without one.
func DefaultBody(t MessageType) string {
	switch t {
	case TypeCounterOffer:
		return "Counter-offer proposed."
	case TypeAcceptance:
		return "Offer accepted."
	case TypeRejection:
		return "Offer declined."
	default:
		return ""
	}
}

// NewMessageID returns a ULID string; ids assigned later sort later.
func NewMessageID() string {
	return ulid.Make().String()
}

// EqualLogs compares two message logs by content. Pollers must use this rather
// than reference identity: independently decoded payloads never share pointers.
func EqualLogs(a, b []*Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalMessage(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalMessage(a, b *Message) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.MessageID != b.MessageID ||
		a.NegotiationID != b.NegotiationID ||
		a.SenderID != b.SenderID ||
		a.Type != b.Type ||
		a.Body != b.Body ||
		!a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if !equalOfferStatus(a.OfferStatus, b.OfferStatus) {
		return false
	}
	if !equalOffer(a.Offer, b.Offer) {
		return false
	}
	if len(a.Attachments) != len(b.Attachments) {
		return false
	}
	for i := range a.Attachments {
		if a.Attachments[i] != b.Attachments[i] {
			return false
		}
	}
	return true
}

func equalOfferStatus(a, b *OfferStatus) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalOffer(a, b *Offer) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return equalFloatPtr(a.Price, b.Price) &&
		equalStringPtr(a.DeliveryTerms, b.DeliveryTerms) &&
		equalStringPtr(a.Currency, b.Currency) &&
		equalIntPtr(a.DeliveryDays, b.DeliveryDays)
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
