package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procure-hub/procure-hub/internal/domain/negotiation"
	"github.com/procure-hub/procure-hub/internal/domain/purchaseorder"
)

func respond(t *testing.T, w http.ResponseWriter, status int, data interface{}, message string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"success": status < 400}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClientMessages(t *testing.T) {
	actorID := uuid.New()
	negotiationID := uuid.New()
	price := 980.0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/negotiations/"+negotiationID.String(), r.URL.Path)
		assert.Equal(t, actorID.String(), r.Header.Get("X-Actor-ID"))

		respond(t, w, http.StatusOK, negotiation.Negotiation{
			NegotiationID: negotiationID,
			Status:        negotiation.StatusOpen,
			Messages: []*negotiation.Message{
				{
					MessageID: negotiation.NewMessageID(),
					SenderID:  actorID,
					Type:      negotiation.TypeCounterOffer,
					Body:      "Can do 980 per unit.",
					Offer:     &negotiation.Offer{Price: &price},
				},
			},
		}, "")
	}))
	defer srv.Close()

	c := New(srv.URL, actorID, time.Second)
	msgs, err := c.Messages(context.Background(), negotiationID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, negotiation.TypeCounterOffer, msgs[0].Type)
	require.NotNil(t, msgs[0].Offer)
	assert.Equal(t, 980.0, *msgs[0].Offer.Price)
}

func TestClientSendMessage(t *testing.T) {
	actorID := uuid.New()
	negotiationID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/negotiations/"+negotiationID.String()+"/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "COUNTER_OFFER", body["message_type"])
		assert.NotNil(t, body["offer_data"])

		respond(t, w, http.StatusCreated, negotiation.Message{
			MessageID: negotiation.NewMessageID(),
			SenderID:  actorID,
			Type:      negotiation.TypeCounterOffer,
			Body:      "Best and final.",
		}, "")
	}))
	defer srv.Close()

	price := 950.0
	c := New(srv.URL, actorID, time.Second)
	msg, err := c.SendMessage(context.Background(), negotiationID, negotiation.Draft{
		Type:  negotiation.TypeCounterOffer,
		Body:  "Best and final.",
		Offer: &negotiation.Offer{Price: &price},
	})
	require.NoError(t, err)
	assert.Equal(t, "Best and final.", msg.Body)
}

func TestClientCreatePurchaseOrderAlreadyExists(t *testing.T) {
	actorID := uuid.New()
	negotiationID := uuid.New()
	poID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusOK, purchaseorder.PurchaseOrder{
			POID:          poID,
			NegotiationID: negotiationID,
			Status:        purchaseorder.StatusIssued,
		}, "purchase order already exists")
	}))
	defer srv.Close()

	c := New(srv.URL, actorID, time.Second)
	po, existed, err := c.CreatePurchaseOrder(context.Background(), negotiationID, purchaseorder.Details{
		DeliveryAddress: "12 Dock Rd",
		PaymentTerms:    "Net 30",
	})
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, poID, po.POID)
}

func TestClientErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":"CONFLICT","message":"offer already resolved"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, uuid.New(), time.Second)
	_, err := c.RespondToOffer(context.Background(), uuid.New(), negotiation.NewMessageID(), negotiation.DecisionAccept)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONFLICT")
	assert.Contains(t, err.Error(), "offer already resolved")
}

func TestClientMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":"not-a-negotiation"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, uuid.New(), time.Second)
	_, err := c.GetNegotiation(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}
