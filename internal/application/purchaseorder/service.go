package purchaseorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/procure-hub/procure-hub/internal/domain/bid"
	domainNegotiation "github.com/procure-hub/procure-hub/internal/domain/negotiation"
	domainPO "github.com/procure-hub/procure-hub/internal/domain/purchaseorder"
)

// Result wraps a purchase order with the idempotency outcome. AlreadyExisted
// marks the duplicate-creation path, which is a success, not an error.
type Result struct {
	PurchaseOrder  *domainPO.PurchaseOrder
	AlreadyExisted bool
}

// Service issues purchase orders from accepted negotiations, exactly once.
type Service struct {
	poRepo          domainPO.Repository
	negotiationRepo domainNegotiation.Repository
	bidRepo         bid.Repository
	logger          zerolog.Logger
}

// NewService creates a purchase order service.
func NewService(poRepo domainPO.Repository, negotiationRepo domainNegotiation.Repository, bidRepo bid.Repository, logger zerolog.Logger) *Service {
	return &Service{
		poRepo:          poRepo,
		negotiationRepo: negotiationRepo,
		bidRepo:         bidRepo,
		logger:          logger.With().Str("service", "purchaseorder").Logger(),
	}
}

// Get retrieves a purchase order by id.
func (s *Service) Get(ctx context.Context, poID uuid.UUID) (*domainPO.PurchaseOrder, error) {
	return s.poRepo.GetByID(ctx, poID)
}

// CreateFromNegotiation issues the purchase order for a negotiation closed by
// acceptance. The guard is the negotiation's purchase order back-reference: a
// second call returns the already-issued order.
func (s *Service) CreateFromNegotiation(ctx context.Context, negotiationID, actorID uuid.UUID, details domainPO.Details) (*Result, error) {
	n, err := s.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("negotiation %s: %w", negotiationID, domainNegotiation.ErrNotFound)
	}
	if actorID != n.BuyerID {
		return nil, domainNegotiation.ErrNotParticipant
	}
	if n.PurchaseOrderID != nil {
		// The back-reference on the negotiation is the order of record; never
		// resolve the duplicate by negotiation lookup, which could surface an
		// orphan row from a lost creation race.
		existing, err := s.poRepo.GetByID(ctx, *n.PurchaseOrderID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("negotiation %s references a missing purchase order", negotiationID)
		}
		return &Result{PurchaseOrder: existing, AlreadyExisted: true}, nil
	}
	if !n.ClosedByAcceptance() {
		return nil, domainNegotiation.ErrNotAcceptedYet
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	price, currency, err := s.agreedTerms(ctx, n)
	if err != nil {
		return nil, err
	}
	po := &domainPO.PurchaseOrder{
		POID:            uuid.New(),
		NegotiationID:   n.NegotiationID,
		BidID:           n.BidID,
		BuyerID:         n.BuyerID,
		SupplierID:      n.SupplierID,
		TotalPrice:      price,
		Currency:        currency,
		DeliveryAddress: details.DeliveryAddress,
		PaymentTerms:    details.PaymentTerms,
		Notes:           details.Notes,
		Status:          domainPO.StatusIssued,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.poRepo.Create(ctx, po); err != nil {
		// The unique negotiation_id constraint stops a concurrent double
		// create; the row that got in is the order of record.
		if existing, getErr := s.poRepo.GetByNegotiationID(ctx, n.NegotiationID); getErr == nil && existing != nil {
			return &Result{PurchaseOrder: existing, AlreadyExisted: true}, nil
		}
		return nil, err
	}

	ok, err := s.negotiationRepo.SetPurchaseOrderID(ctx, n.NegotiationID, po.POID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent call won the back-reference; re-read it and surface
		// that order as the duplicate case.
		fresh, getErr := s.negotiationRepo.GetByID(ctx, n.NegotiationID)
		if getErr != nil || fresh == nil || fresh.PurchaseOrderID == nil {
			return nil, fmt.Errorf("purchase order already recorded for negotiation %s", negotiationID)
		}
		winner, getErr := s.poRepo.GetByID(ctx, *fresh.PurchaseOrderID)
		if getErr != nil || winner == nil {
			return nil, fmt.Errorf("purchase order already recorded for negotiation %s", negotiationID)
		}
		return &Result{PurchaseOrder: winner, AlreadyExisted: true}, nil
	}
	s.logger.Info().
		Str("purchaseOrderId", po.POID.String()).
		Str("negotiationId", n.NegotiationID.String()).
		Float64("totalPrice", po.TotalPrice).
		Msg("purchase order issued")
	return &Result{PurchaseOrder: po}, nil
}

// agreedTerms reads price and currency from the accepted offer, falling back
// to the bid when the acceptance covered terms-only or standing bid terms.
func (s *Service) agreedTerms(ctx context.Context, n *domainNegotiation.Negotiation) (float64, string, error) {
	accepted := n.AcceptedOffer()
	if accepted != nil && accepted.Offer != nil && accepted.Offer.Price != nil {
		currency := ""
		if accepted.Offer.Currency != nil {
			currency = *accepted.Offer.Currency
		}
		if currency == "" {
			if b, err := s.bidRepo.GetByID(ctx, n.BidID); err == nil && b != nil {
				currency = b.Currency
			}
		}
		return *accepted.Offer.Price, currency, nil
	}
	b, err := s.bidRepo.GetByID(ctx, n.BidID)
	if err != nil {
		return 0, "", err
	}
	if b == nil {
		return 0, "", fmt.Errorf("bid %s: %w", n.BidID, domainNegotiation.ErrNotFound)
	}
	return b.Amount, b.Currency, nil
}

func validateDetails(d domainPO.Details) error {
	if strings.TrimSpace(d.DeliveryAddress) == "" {
		return errors.New("delivery address is required")
	}
	if strings.TrimSpace(d.PaymentTerms) == "" {
		return errors.New("payment terms are required")
	}
	return nil
}
