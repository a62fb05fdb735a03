package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/procure-hub/procure-hub/internal/domain/bid"
	domainNegotiation "github.com/procure-hub/procure-hub/internal/domain/negotiation"
)

// Service is the aggregate root for negotiation sessions. Every operation
// takes the acting party explicitly; no ambient identity is consulted.
type Service struct {
	negotiationRepo domainNegotiation.Repository
	bidRepo         bid.Repository
	policy          *OfferPolicy
	logger          zerolog.Logger
}

// NewService creates a negotiation service.
func NewService(negotiationRepo domainNegotiation.Repository, bidRepo bid.Repository, policy *OfferPolicy, logger zerolog.Logger) *Service {
	return &Service{
		negotiationRepo: negotiationRepo,
		bidRepo:         bidRepo,
		policy:          policy,
		logger:          logger.With().Str("service", "negotiation").Logger(),
	}
}

// Start opens a negotiation for a bid, or returns the existing one. Starting
// twice for the same bid yields the same negotiation.
func (s *Service) Start(ctx context.Context, bidID, actorID uuid.UUID) (*domainNegotiation.Negotiation, error) {
	existing, err := s.negotiationRepo.GetByBidID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	b, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("bid %s: %w", bidID, domainNegotiation.ErrNotFound)
	}
	if actorID != b.BuyerID && actorID != b.SupplierID {
		return nil, domainNegotiation.ErrNotParticipant
	}
	if !b.Negotiable() {
		return nil, domainNegotiation.ErrNegotiationClosed
	}

	now := time.Now().UTC()
	n := &domainNegotiation.Negotiation{
		NegotiationID: uuid.New(),
		BidID:         b.BidID,
		BuyerID:       b.BuyerID,
		SupplierID:    b.SupplierID,
		Status:        domainNegotiation.StatusOpen,
		Messages:      []*domainNegotiation.Message{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.negotiationRepo.Create(ctx, n); err != nil {
		// Two parties starting at once race on the bid's uniqueness constraint;
		// the loser adopts the winner's negotiation.
		if existing, getErr := s.negotiationRepo.GetByBidID(ctx, bidID); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	s.logger.Info().
		Str("negotiationId", n.NegotiationID.String()).
		Str("bidId", bidID.String()).
		Msg("negotiation started")
	return n, nil
}

// Get retrieves a negotiation with its full message log.
func (s *Service) Get(ctx context.Context, negotiationID uuid.UUID) (*domainNegotiation.Negotiation, error) {
	return s.negotiationRepo.GetByID(ctx, negotiationID)
}

// ListForBid returns negotiations anchored to a bid.
func (s *Service) ListForBid(ctx context.Context, bidID uuid.UUID) ([]*domainNegotiation.Negotiation, error) {
	return s.negotiationRepo.ListByBidID(ctx, bidID)
}

// Messages returns the ordered message log. Satisfies the poller's Source.
func (s *Service) Messages(ctx context.Context, negotiationID uuid.UUID) ([]*domainNegotiation.Message, error) {
	return s.negotiationRepo.ListMessages(ctx, negotiationID)
}

// SendMessage validates and appends a message. An acceptance draft also
// resolves the latest open offer and closes the negotiation in the same
// operation; a rejection draft with CloseNegotiation cancels it outright.
func (s *Service) SendMessage(ctx context.Context, negotiationID, actorID uuid.UUID, draft domainNegotiation.Draft) (*domainNegotiation.Message, error) {
	n, err := s.requireParticipant(ctx, negotiationID, actorID)
	if err != nil {
		return nil, err
	}
	if n.Terminal() {
		return nil, domainNegotiation.ErrNegotiationClosed
	}
	if err := domainNegotiation.ValidateDraft(draft); err != nil {
		return nil, err
	}
	if draft.Type == domainNegotiation.TypeCounterOffer {
		if err := s.policy.Evaluate(draft.Offer); err != nil {
			return nil, err
		}
	}

	body := draft.Body
	if body == "" {
		body = domainNegotiation.DefaultBody(draft.Type)
	}
	m := &domainNegotiation.Message{
		MessageID:     domainNegotiation.NewMessageID(),
		NegotiationID: n.NegotiationID,
		SenderID:      actorID,
		Type:          draft.Type,
		Body:          body,
		Offer:         draft.Offer,
		Attachments:   draft.Attachments,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.negotiationRepo.AppendMessage(ctx, m); err != nil {
		return nil, err
	}

	switch draft.Type {
	case domainNegotiation.TypeAcceptance:
		s.acceptLatestOpenOffer(ctx, n, actorID)
		if _, err := s.negotiationRepo.UpdateStatus(ctx, n.NegotiationID, domainNegotiation.StatusOpen, domainNegotiation.StatusClosed); err != nil {
			return nil, err
		}
		s.logger.Info().Str("negotiationId", n.NegotiationID.String()).Msg("negotiation closed by acceptance")
	case domainNegotiation.TypeRejection:
		if draft.CloseNegotiation {
			if _, err := s.negotiationRepo.UpdateStatus(ctx, n.NegotiationID, domainNegotiation.StatusOpen, domainNegotiation.StatusCancelled); err != nil {
				return nil, err
			}
			s.logger.Info().Str("negotiationId", n.NegotiationID.String()).Msg("negotiation cancelled by rejection")
		}
	}
	return m, nil
}

// RespondToOffer applies an accept/reject/withdraw decision to a counter-offer.
// The store serializes concurrent decisions; a lost race surfaces as
// ErrInvalidTransition so the caller rolls back its optimistic view.
func (s *Service) RespondToOffer(ctx context.Context, negotiationID uuid.UUID, messageID string, actorID uuid.UUID, decision domainNegotiation.OfferDecision) (*domainNegotiation.Negotiation, error) {
	n, err := s.requireParticipant(ctx, negotiationID, actorID)
	if err != nil {
		return nil, err
	}
	var target *domainNegotiation.Message
	for _, m := range n.Messages {
		if m.MessageID == messageID {
			target = m
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("message %s: %w", messageID, domainNegotiation.ErrNotFound)
	}
	if !domainNegotiation.CanDecide(n, target, actorID, decision) {
		return nil, domainNegotiation.ErrInvalidTransition
	}

	var to domainNegotiation.OfferStatus
	switch decision {
	case domainNegotiation.DecisionAccept:
		to = domainNegotiation.OfferAccepted
	case domainNegotiation.DecisionReject:
		to = domainNegotiation.OfferRejected
	case domainNegotiation.DecisionWithdraw:
		to = domainNegotiation.OfferCancelled
	}
	ok, err := s.negotiationRepo.ResolveOffer(ctx, n.NegotiationID, messageID, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else resolved this offer first.
		return nil, domainNegotiation.ErrInvalidTransition
	}

	if decision == domainNegotiation.DecisionAccept {
		closing := &domainNegotiation.Message{
			MessageID:     domainNegotiation.NewMessageID(),
			NegotiationID: n.NegotiationID,
			SenderID:      actorID,
			Type:          domainNegotiation.TypeAcceptance,
			Body:          domainNegotiation.DefaultBody(domainNegotiation.TypeAcceptance),
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.negotiationRepo.AppendMessage(ctx, closing); err != nil {
			s.logger.Warn().Err(err).Str("negotiationId", n.NegotiationID.String()).Msg("failed to append acceptance message")
		}
		if _, err := s.negotiationRepo.UpdateStatus(ctx, n.NegotiationID, domainNegotiation.StatusOpen, domainNegotiation.StatusClosed); err != nil {
			return nil, err
		}
		s.logger.Info().
			Str("negotiationId", n.NegotiationID.String()).
			Str("messageId", messageID).
			Msg("offer accepted, negotiation closed")
	}
	return s.negotiationRepo.GetByID(ctx, n.NegotiationID)
}

// Close transitions the negotiation to CLOSED. Idempotent: a terminal
// negotiation is returned unchanged, so closing after an acceptance message
// can never disagree with it.
func (s *Service) Close(ctx context.Context, negotiationID, actorID uuid.UUID) (*domainNegotiation.Negotiation, error) {
	n, err := s.requireParticipant(ctx, negotiationID, actorID)
	if err != nil {
		return nil, err
	}
	if n.Terminal() {
		return n, nil
	}
	if _, err := s.negotiationRepo.UpdateStatus(ctx, n.NegotiationID, domainNegotiation.StatusOpen, domainNegotiation.StatusClosed); err != nil {
		return nil, err
	}
	return s.negotiationRepo.GetByID(ctx, n.NegotiationID)
}

func (s *Service) requireParticipant(ctx context.Context, negotiationID, actorID uuid.UUID) (*domainNegotiation.Negotiation, error) {
	n, err := s.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("negotiation %s: %w", negotiationID, domainNegotiation.ErrNotFound)
	}
	if !n.IsParticipant(actorID) {
		return nil, domainNegotiation.ErrNotParticipant
	}
	return n, nil
}

// Acceptance messages settle whatever offer is still on the table. No open
// offer is fine: the acceptance then refers to the bid's standing terms.
func (s *Service) acceptLatestOpenOffer(ctx context.Context, n *domainNegotiation.Negotiation, actorID uuid.UUID) {
	states := domainNegotiation.DeriveOfferStates(n.Messages)
	for _, m := range n.Messages {
		if !states[m.MessageID].IsLatestOpenOffer {
			continue
		}
		if m.SenderID == actorID {
			// A party cannot accept its own pending offer by sending an
			// acceptance message; leave it dangling.
			return
		}
		if ok, err := s.negotiationRepo.ResolveOffer(ctx, n.NegotiationID, m.MessageID, domainNegotiation.OfferAccepted); err != nil || !ok {
			s.logger.Warn().Err(err).Str("messageId", m.MessageID).Msg("latest open offer was not resolvable on acceptance")
		}
		return
	}
}
