package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procure-hub/procure-hub/internal/domain/negotiation"
	"github.com/procure-hub/procure-hub/internal/domain/purchaseorder"
)

// Client consumes the portal's negotiation API on behalf of one actor. It
// satisfies the poller's Source, so remote negotiations can be watched the
// same way local ones are.
type Client struct {
	baseURL    string
	actorID    uuid.UUID
	httpClient *http.Client
}

// New creates a client. A non-positive timeout falls back to 10s so a dead
// store can never hang a poll indefinitely.
func New(baseURL string, actorID uuid.UUID, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		actorID:    actorID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// StartNegotiation opens (or returns) the negotiation for a bid.
func (c *Client) StartNegotiation(ctx context.Context, bidID uuid.UUID) (*negotiation.Negotiation, error) {
	var n negotiation.Negotiation
	if _, err := c.do(ctx, http.MethodPost, "/v1/negotiations/start/"+bidID.String(), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// GetNegotiation fetches the aggregate with its full message log.
func (c *Client) GetNegotiation(ctx context.Context, negotiationID uuid.UUID) (*negotiation.Negotiation, error) {
	var n negotiation.Negotiation
	if _, err := c.do(ctx, http.MethodGet, "/v1/negotiations/"+negotiationID.String(), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNegotiations returns negotiations for a bid.
func (c *Client) ListNegotiations(ctx context.Context, bidID uuid.UUID) ([]*negotiation.Negotiation, error) {
	var out []*negotiation.Negotiation
	if _, err := c.do(ctx, http.MethodGet, "/v1/negotiations/?bid_id="+bidID.String(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Messages satisfies sync.Source against a remote store.
func (c *Client) Messages(ctx context.Context, negotiationID uuid.UUID) ([]*negotiation.Message, error) {
	n, err := c.GetNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	return n.Messages, nil
}

// SendMessage posts a draft to the negotiation log.
func (c *Client) SendMessage(ctx context.Context, negotiationID uuid.UUID, draft negotiation.Draft) (*negotiation.Message, error) {
	body := map[string]interface{}{
		"message":      draft.Body,
		"message_type": string(draft.Type),
	}
	if draft.Offer != nil {
		body["offer_data"] = draft.Offer
	}
	if len(draft.Attachments) > 0 {
		body["attachments"] = draft.Attachments
	}
	if draft.CloseNegotiation {
		body["close_negotiation"] = true
	}
	var m negotiation.Message
	if _, err := c.do(ctx, http.MethodPost, "/v1/negotiations/"+negotiationID.String()+"/messages", body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// RespondToOffer applies an accept/reject/withdraw decision.
func (c *Client) RespondToOffer(ctx context.Context, negotiationID uuid.UUID, messageID string, decision negotiation.OfferDecision) (*negotiation.Negotiation, error) {
	body := map[string]string{"decision": string(decision)}
	var n negotiation.Negotiation
	path := "/v1/negotiations/" + negotiationID.String() + "/messages/" + messageID + "/respond"
	if _, err := c.do(ctx, http.MethodPost, path, body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// CloseNegotiation requests the explicit terminal transition.
func (c *Client) CloseNegotiation(ctx context.Context, negotiationID uuid.UUID) (*negotiation.Negotiation, error) {
	var n negotiation.Negotiation
	if _, err := c.do(ctx, http.MethodPost, "/v1/negotiations/"+negotiationID.String()+"/close", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreatePurchaseOrder issues the PO for an accepted negotiation. The second
// return reports the duplicate path, normalized from the server's
// "already exists" message; callers must re-fetch the negotiation before
// treating the order as recorded.
func (c *Client) CreatePurchaseOrder(ctx context.Context, negotiationID uuid.UUID, details purchaseorder.Details) (*purchaseorder.PurchaseOrder, bool, error) {
	body := map[string]string{
		"delivery_address": details.DeliveryAddress,
		"payment_terms":    details.PaymentTerms,
	}
	if details.Notes != "" {
		body["notes"] = details.Notes
	}
	var po purchaseorder.PurchaseOrder
	message, err := c.do(ctx, http.MethodPost, "/v1/purchase-orders/from-negotiation/"+negotiationID.String(), body, &po)
	if err != nil {
		return nil, false, err
	}
	return &po, strings.Contains(message, "already exists"), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (string, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Actor-ID", c.actorID.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// A payload that fails to decode is dropped for this cycle; the
		// caller keeps its previous known-good state.
		return "", fmt.Errorf("malformed response (%d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		code := env.Error
		if code == "" {
			code = http.StatusText(resp.StatusCode)
		}
		return env.Message, fmt.Errorf("%s: %s", code, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("malformed response payload: %w", err)
		}
	}
	return env.Message, nil
}
