package httpapi

import (
	"net/http"

	domainPO "github.com/procure-hub/procure-hub/internal/domain/purchaseorder"
)

type createPurchaseOrderRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	PaymentTerms    string `json:"payment_terms"`
	Notes           string `json:"notes,omitempty"`
}

func (s *Server) createPurchaseOrder(w http.ResponseWriter, r *http.Request) {
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
	var req createPurchaseOrderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	result, err := s.purchaseOrderSvc.CreateFromNegotiation(r.Context(), id, actorID, domainPO.Details{
		DeliveryAddress: req.DeliveryAddress,
		PaymentTerms:    req.PaymentTerms,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	// Duplicate issuance is a success, not an error: the existing order comes
	// back with the marker message the portal surfaces treat as "already done".
	if result.AlreadyExisted {
		respondDataMessage(w, http.StatusOK, result.PurchaseOrder, "purchase order already exists")
		return
	}
	respondData(w, http.StatusCreated, result.PurchaseOrder)
}

func (s *Server) getPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "purchaseOrderId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid purchaseOrderId")
		return
	}
	po, err := s.purchaseOrderSvc.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if po == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "purchase order not found")
		return
	}
	respondData(w, http.StatusOK, po)
}
