package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appNegotiation "github.com/procure-hub/procure-hub/internal/application/negotiation"
	appPurchaseOrder "github.com/procure-hub/procure-hub/internal/application/purchaseorder"
	domainNegotiation "github.com/procure-hub/procure-hub/internal/domain/negotiation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	negotiationSvc   *appNegotiation.Service
	purchaseOrderSvc *appPurchaseOrder.Service
}

func NewServer(negotiationSvc *appNegotiation.Service, purchaseOrderSvc *appPurchaseOrder.Service) *Server {
	return &Server{
		negotiationSvc:   negotiationSvc,
		purchaseOrderSvc: purchaseOrderSvc,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireActor)

			r.Route("/negotiations", func(r chi.Router) {
				r.Get("/", s.listNegotiations)
				r.Post("/start/{bidId}", s.startNegotiation)
				r.Get("/{negotiationId}", s.getNegotiation)
				r.Post("/{negotiationId}/messages", s.sendMessage)
				r.Post("/{negotiationId}/messages/{messageId}/respond", s.respondToOffer)
				r.Post("/{negotiationId}/close", s.closeNegotiation)
			})

			r.Route("/purchase-orders", func(r chi.Router) {
				r.Post("/from-negotiation/{negotiationId}", s.createPurchaseOrder)
				r.Get("/{purchaseOrderId}", s.getPurchaseOrder)
			})
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

// All responses use the {success, data, message?} envelope.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondDataMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   code,
		"message": message,
	})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainNegotiation.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domainNegotiation.ErrNegotiationClosed):
		respondError(w, http.StatusConflict, "NEGOTIATION_CLOSED", err.Error())
	case errors.Is(err, domainNegotiation.ErrNotAcceptedYet):
		respondError(w, http.StatusUnprocessableEntity, "NOT_ACCEPTED_YET", err.Error())
	case errors.Is(err, domainNegotiation.ErrNotParticipant):
		respondError(w, http.StatusForbidden, "NOT_PARTICIPANT", err.Error())
	case errors.Is(err, domainNegotiation.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
	}
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
