package purchaseorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/procure-hub/procure-hub/internal/domain/bid"
	bidMocks "github.com/procure-hub/procure-hub/internal/domain/bid/mocks"
	domainNegotiation "github.com/procure-hub/procure-hub/internal/domain/negotiation"
	negotiationMocks "github.com/procure-hub/procure-hub/internal/domain/negotiation/mocks"
	domainPO "github.com/procure-hub/procure-hub/internal/domain/purchaseorder"
	poMocks "github.com/procure-hub/procure-hub/internal/domain/purchaseorder/mocks"
)

var (
	buyerID    = uuid.New()
	supplierID = uuid.New()
)

func details() domainPO.Details {
	return domainPO.Details{
		DeliveryAddress: "12 Dockside Way, Rotterdam",
		PaymentTerms:    "net 30",
	}
}

func acceptedNegotiation(price float64) *domainNegotiation.Negotiation {
	accepted := domainNegotiation.OfferAccepted
	currency := "EUR"
	return &domainNegotiation.Negotiation{
		NegotiationID: uuid.New(),
		BidID:         uuid.New(),
		BuyerID:       buyerID,
		SupplierID:    supplierID,
		Status:        domainNegotiation.StatusClosed,
		Messages: []*domainNegotiation.Message{
			{
				MessageID:   domainNegotiation.NewMessageID(),
				SenderID:    supplierID,
				Type:        domainNegotiation.TypeCounterOffer,
				Body:        "Counter-offer proposed.",
				Offer:       &domainNegotiation.Offer{Price: &price, Currency: &currency},
				OfferStatus: &accepted,
				CreatedAt:   time.Now().UTC(),
			},
		},
	}
}

func TestCreateFromNegotiation(t *testing.T) {
	t.Run("issues a purchase order from the accepted offer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		poRepo := new(poMocks.MockRepository)
		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		bidRepo := new(bidMocks.MockRepository)
		svc := NewService(poRepo, negotiationRepo, bidRepo, zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)
		poRepo.On("Create", ctx, mock.Anything).Return(nil)
		negotiationRepo.EXPECT().SetPurchaseOrderID(ctx, n.NegotiationID, gomock.Any()).Return(true, nil)

		result, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		require.NoError(t, err)
		require.NotNil(t, result.PurchaseOrder)
		assert.False(t, result.AlreadyExisted)
		assert.Equal(t, 1400.0, result.PurchaseOrder.TotalPrice)
		assert.Equal(t, "EUR", result.PurchaseOrder.Currency)
		assert.Equal(t, domainPO.StatusIssued, result.PurchaseOrder.Status)
	})

	t.Run("second call returns the existing order as success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		poRepo := new(poMocks.MockRepository)
		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(poRepo, negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		existing := &domainPO.PurchaseOrder{POID: uuid.New(), NegotiationID: n.NegotiationID}
		n.PurchaseOrderID = &existing.POID
		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)
		poRepo.On("GetByID", ctx, existing.POID).Return(existing, nil)

		result, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		require.NoError(t, err)
		assert.True(t, result.AlreadyExisted)
		assert.Equal(t, existing.POID, result.PurchaseOrder.POID)
		poRepo.AssertNotCalled(t, "Create")
	})

	t.Run("duplicate path resolves by back-reference, never by negotiation lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		poRepo := new(poMocks.MockRepository)
		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(poRepo, negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		winner := &domainPO.PurchaseOrder{POID: uuid.New(), NegotiationID: n.NegotiationID}
		n.PurchaseOrderID = &winner.POID

		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)
		poRepo.On("GetByID", ctx, winner.POID).Return(winner, nil)

		result, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		require.NoError(t, err)
		assert.True(t, result.AlreadyExisted)
		assert.Equal(t, winner.POID, result.PurchaseOrder.POID)
		poRepo.AssertNotCalled(t, "GetByNegotiationID")
	})

	t.Run("insert conflict returns the recorded order as success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		poRepo := new(poMocks.MockRepository)
		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(poRepo, negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		winner := &domainPO.PurchaseOrder{POID: uuid.New(), NegotiationID: n.NegotiationID}

		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)
		poRepo.On("Create", ctx, mock.Anything).Return(errors.New("duplicate key value violates unique constraint"))
		poRepo.On("GetByNegotiationID", ctx, n.NegotiationID).Return(winner, nil)

		result, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		require.NoError(t, err)
		assert.True(t, result.AlreadyExisted)
		assert.Equal(t, winner.POID, result.PurchaseOrder.POID)
	})

	t.Run("open negotiation fails with not accepted yet", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		poRepo := new(poMocks.MockRepository)
		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(poRepo, negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		n.Status = domainNegotiation.StatusOpen
		n.Messages[0].OfferStatus = nil
		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)

		_, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		assert.ErrorIs(t, err, domainNegotiation.ErrNotAcceptedYet)
	})

	t.Run("cancelled negotiation fails with not accepted yet", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(new(poMocks.MockRepository), negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		n.Status = domainNegotiation.StatusCancelled
		n.Messages[0].OfferStatus = nil
		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)

		_, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		assert.ErrorIs(t, err, domainNegotiation.ErrNotAcceptedYet)
	})

	t.Run("only the buyer may issue the order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(new(poMocks.MockRepository), negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)

		_, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, supplierID, details())
		assert.ErrorIs(t, err, domainNegotiation.ErrNotParticipant)
	})

	t.Run("terms-only acceptance falls back to the bid amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		poRepo := new(poMocks.MockRepository)
		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		bidRepo := new(bidMocks.MockRepository)
		svc := NewService(poRepo, negotiationRepo, bidRepo, zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		terms := "DDP, incoterms 2020"
		n.Messages[0].Offer = &domainNegotiation.Offer{DeliveryTerms: &terms}
		b := &bid.Bid{BidID: n.BidID, BuyerID: buyerID, SupplierID: supplierID, Amount: 1500, Currency: "USD", Status: bid.StatusSubmitted}

		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)
		bidRepo.On("GetByID", ctx, n.BidID).Return(b, nil)
		poRepo.On("Create", ctx, mock.Anything).Return(nil)
		negotiationRepo.EXPECT().SetPurchaseOrderID(ctx, n.NegotiationID, gomock.Any()).Return(true, nil)

		result, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		require.NoError(t, err)
		assert.Equal(t, 1500.0, result.PurchaseOrder.TotalPrice)
		assert.Equal(t, "USD", result.PurchaseOrder.Currency)
	})

	t.Run("losing the back-reference race returns the winner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		poRepo := new(poMocks.MockRepository)
		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(poRepo, negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		winner := &domainPO.PurchaseOrder{POID: uuid.New(), NegotiationID: n.NegotiationID}
		fresh := acceptedNegotiation(1400)
		fresh.NegotiationID = n.NegotiationID
		fresh.PurchaseOrderID = &winner.POID

		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)
		poRepo.On("Create", ctx, mock.Anything).Return(nil)
		negotiationRepo.EXPECT().SetPurchaseOrderID(ctx, n.NegotiationID, gomock.Any()).Return(false, nil)
		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(fresh, nil)
		poRepo.On("GetByID", ctx, winner.POID).Return(winner, nil)

		result, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, details())
		require.NoError(t, err)
		assert.True(t, result.AlreadyExisted)
		assert.Equal(t, winner.POID, result.PurchaseOrder.POID)
		poRepo.AssertNotCalled(t, "GetByNegotiationID")
	})

	t.Run("missing delivery address fails validation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
		svc := NewService(new(poMocks.MockRepository), negotiationRepo, new(bidMocks.MockRepository), zerolog.Nop())

		ctx := context.Background()
		n := acceptedNegotiation(1400)
		negotiationRepo.EXPECT().GetByID(ctx, n.NegotiationID).Return(n, nil)

		_, err := svc.CreateFromNegotiation(ctx, n.NegotiationID, buyerID, domainPO.Details{PaymentTerms: "net 30"})
		assert.ErrorContains(t, err, "delivery address")
	})
}
