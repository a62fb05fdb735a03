package negotiation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"

	domainNegotiation "github.com/procure-hub/procure-hub/internal/domain/negotiation"
)

// OfferPolicy screens counter-offers with a deployment-configured expression,
// e.g. "price > 0 && deliveryDays <= 90". A nil policy accepts everything.
type OfferPolicy struct {
	raw  string
	expr *govaluate.EvaluableExpression
}

// NewOfferPolicy compiles a policy expression. Empty input yields a nil policy.
func NewOfferPolicy(expression string) (*OfferPolicy, error) {
	raw := strings.TrimSpace(expression)
	if raw == "" {
		return nil, nil
	}
	expr, err := govaluate.NewEvaluableExpression(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid offer policy expression: %w", err)
	}
	return &OfferPolicy{raw: raw, expr: expr}, nil
}

// Evaluate checks an offer against the policy expression.
func (p *OfferPolicy) Evaluate(o *domainNegotiation.Offer) error {
	if p == nil {
		return nil
	}
	result, err := p.expr.Evaluate(offerParams(o))
	if err != nil {
		return fmt.Errorf("offer policy evaluation failed: %w", err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return errors.New("offer policy did not evaluate to boolean")
	}
	if !ok {
		return fmt.Errorf("offer violates policy: %s", p.raw)
	}
	return nil
}

// Absent fields evaluate as zero values so expressions stay total.
func offerParams(o *domainNegotiation.Offer) map[string]interface{} {
	params := map[string]interface{}{
		"price":         0.0,
		"deliveryDays":  0,
		"currency":      "",
		"deliveryTerms": "",
	}
	if o == nil {
		return params
	}
	if o.Price != nil {
		params["price"] = *o.Price
	}
	if o.DeliveryDays != nil {
		params["deliveryDays"] = *o.DeliveryDays
	}
	if o.Currency != nil {
		params["currency"] = *o.Currency
	}
	if o.DeliveryTerms != nil {
		params["deliveryTerms"] = *o.DeliveryTerms
	}
	return params
}
