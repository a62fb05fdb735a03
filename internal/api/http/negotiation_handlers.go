package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domainNegotiation "github.com/procure-hub/procure-hub/internal/domain/negotiation"
)

type sendMessageRequest struct {
	Message          string                   `json:"message"`
	MessageType      string                   `json:"message_type"`
	OfferData        *domainNegotiation.Offer `json:"offer_data,omitempty"`
	Attachments      []string                 `json:"attachments,omitempty"`
	CloseNegotiation bool                     `json:"close_negotiation,omitempty"`
	// Accepted for wire compatibility and ignored: offers are resolved
	// through the respond endpoint, never at send time.
	OfferStatus *string `json:"offer_status,omitempty"`
}

type respondToOfferRequest struct {
	Decision string `json:"decision"`
}

func (s *Server) listNegotiations(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("bid_id")
	bidID, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid bid_id")
		return
	}
	items, err := s.negotiationSvc.ListForBid(r.Context(), bidID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	respondData(w, http.StatusOK, items)
}

func (s *Server) getNegotiation(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "negotiationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid negotiationId")
		return
	}
	n, err := s.negotiationSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if n == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "negotiation not found")
		return
	}
	respondData(w, http.StatusOK, n)
}

func (s *Server) startNegotiation(w http.ResponseWriter, r *http.Request) {
	bidID, err := parseUUIDParam(r, "bidId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid bidId")
		return
	}
	actorID, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	n, err := s.negotiationSvc.Start(r.Context(), bidID, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, n)
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "negotiationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid negotiationId")
		return
	}
	actorID, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	var req sendMessageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	draft := domainNegotiation.Draft{
		Type:             domainNegotiation.MessageType(strings.ToUpper(req.MessageType)),
		Body:             req.Message,
		Offer:            req.OfferData,
		Attachments:      req.Attachments,
		CloseNegotiation: req.CloseNegotiation,
	}
	m, err := s.negotiationSvc.SendMessage(r.Context(), id, actorID, draft)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, m)
}

func (s *Server) respondToOffer(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "negotiationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid negotiationId")
		return
	}
	messageID := chi.URLParam(r, "messageId")
	if messageID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid messageId")
		return
	}
	actorID, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	var req respondToOfferRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	decision := domainNegotiation.OfferDecision(strings.ToUpper(req.Decision))
	switch decision {
	case domainNegotiation.DecisionAccept, domainNegotiation.DecisionReject, domainNegotiation.DecisionWithdraw:
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "decision must be ACCEPT, REJECT or WITHDRAW")
		return
	}
	n, err := s.negotiationSvc.RespondToOffer(r.Context(), id, messageID, actorID, decision)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, n)
}

func (s *Server) closeNegotiation(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "negotiationId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid negotiationId")
		return
	}
	actorID, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor")
		return
	}
	n, err := s.negotiationSvc.Close(r.Context(), id, actorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, n)
}
