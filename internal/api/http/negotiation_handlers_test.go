package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	appNegotiation "github.com/procure-hub/procure-hub/internal/application/negotiation"
	appPurchaseOrder "github.com/procure-hub/procure-hub/internal/application/purchaseorder"
	bidMocks "github.com/procure-hub/procure-hub/internal/domain/bid/mocks"
	domainNegotiation "github.com/procure-hub/procure-hub/internal/domain/negotiation"
	negotiationMocks "github.com/procure-hub/procure-hub/internal/domain/negotiation/mocks"
	poMocks "github.com/procure-hub/procure-hub/internal/domain/purchaseorder/mocks"
)

func newTestRouter(t *testing.T) (http.Handler, *negotiationMocks.MockRepository, *bidMocks.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	negotiationRepo := negotiationMocks.NewMockRepository(ctrl)
	bidRepo := new(bidMocks.MockRepository)
	negotiationSvc := appNegotiation.NewService(negotiationRepo, bidRepo, nil, zerolog.Nop())
	purchaseOrderSvc := appPurchaseOrder.NewService(new(poMocks.MockRepository), negotiationRepo, bidRepo, zerolog.Nop())
	return NewServer(negotiationSvc, purchaseOrderSvc).Router(), negotiationRepo, bidRepo
}

func TestSendMessageIgnoresOfferStatusField(t *testing.T) {
	router, negotiationRepo, _ := newTestRouter(t)

	buyerID := uuid.New()
	n := &domainNegotiation.Negotiation{
		NegotiationID: uuid.New(),
		BidID:         uuid.New(),
		BuyerID:       buyerID,
		SupplierID:    uuid.New(),
		Status:        domainNegotiation.StatusOpen,
	}
	negotiationRepo.EXPECT().GetByID(gomock.Any(), n.NegotiationID).Return(n, nil)
	negotiationRepo.EXPECT().
		AppendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *domainNegotiation.Message) error {
			// Resolution only happens through the respond endpoint.
			assert.Nil(t, m.OfferStatus)
			return nil
		})

	body := `{"message":"counter at 900","message_type":"COUNTER_OFFER","offer_data":{"price":900},"offer_status":"pending"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/negotiations/"+n.NegotiationID.String()+"/messages", strings.NewReader(body))
	req.Header.Set("X-Actor-ID", buyerID.String())
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
}

func TestStartNegotiationUnknownBidIs404(t *testing.T) {
	router, negotiationRepo, bidRepo := newTestRouter(t)

	bidID := uuid.New()
	negotiationRepo.EXPECT().GetByBidID(gomock.Any(), bidID).Return(nil, nil)
	bidRepo.On("GetByID", mock.Anything, bidID).Return(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/negotiations/start/"+bidID.String(), nil)
	req.Header.Set("X-Actor-ID", uuid.New().String())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Error)
}
