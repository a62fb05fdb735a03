package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procure-hub/procure-hub/internal/domain/negotiation"
)

// NegotiationRepository implements negotiation.Repository.
type NegotiationRepository struct {
	pool *pgxpool.Pool
}

func NewNegotiationRepository(pool *pgxpool.Pool) *NegotiationRepository {
	return &NegotiationRepository{pool: pool}
}

func (r *NegotiationRepository) Create(ctx context.Context, n *negotiation.Negotiation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO negotiations
		(negotiation_id, bid_id, buyer_id, supplier_id, status, purchase_order_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, n.NegotiationID, n.BidID, n.BuyerID, n.SupplierID, n.Status, n.PurchaseOrderID, n.CreatedAt, n.UpdatedAt)
	return err
}

func (r *NegotiationRepository) GetByID(ctx context.Context, negotiationID uuid.UUID) (*negotiation.Negotiation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, negotiation_id, bid_id, buyer_id, supplier_id, status, purchase_order_id, created_at, updated_at
		FROM negotiations WHERE negotiation_id=$1
	`, negotiationID)
	n, err := scanNegotiation(row)
	if err != nil || n == nil {
		return n, err
	}
	n.Messages, err = r.ListMessages(ctx, n.NegotiationID)
	return n, err
}

func (r *NegotiationRepository) GetByBidID(ctx context.Context, bidID uuid.UUID) (*negotiation.Negotiation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, negotiation_id, bid_id, buyer_id, supplier_id, status, purchase_order_id, created_at, updated_at
		FROM negotiations WHERE bid_id=$1
	`, bidID)
	n, err := scanNegotiation(row)
	if err != nil || n == nil {
		return n, err
	}
	n.Messages, err = r.ListMessages(ctx, n.NegotiationID)
	return n, err
}

func (r *NegotiationRepository) ListByBidID(ctx context.Context, bidID uuid.UUID) ([]*negotiation.Negotiation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, negotiation_id, bid_id, buyer_id, supplier_id, status, purchase_order_id, created_at, updated_at
		FROM negotiations WHERE bid_id=$1 ORDER BY created_at ASC
	`, bidID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var negotiations []*negotiation.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, err
		}
		negotiations = append(negotiations, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, n := range negotiations {
		if n.Messages, err = r.ListMessages(ctx, n.NegotiationID); err != nil {
			return nil, err
		}
	}
	return negotiations, nil
}

// UpdateStatus flips status only from the expected prior state, keeping
// terminal states monotonic under concurrent writers.
func (r *NegotiationRepository) UpdateStatus(ctx context.Context, negotiationID uuid.UUID, from, to negotiation.Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE negotiations SET status=$1, updated_at=NOW()
		WHERE negotiation_id=$2 AND status=$3
	`, to, negotiationID, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetPurchaseOrderID records the PO back-reference once; later calls report
// false and leave the first reference in place.
func (r *NegotiationRepository) SetPurchaseOrderID(ctx context.Context, negotiationID, purchaseOrderID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE negotiations SET purchase_order_id=$1, updated_at=NOW()
		WHERE negotiation_id=$2 AND purchase_order_id IS NULL
	`, purchaseOrderID, negotiationID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AppendMessage inserts only while the negotiation is still OPEN, so a
// concurrent close can never gain messages after the fact. Zero rows
// affected means the negotiation went terminal under us.
func (r *NegotiationRepository) AppendMessage(ctx context.Context, m *negotiation.Message) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO negotiation_messages
		(message_id, negotiation_id, sender_id, type, body, offer_price, offer_delivery_terms, offer_currency, offer_delivery_days, offer_status, attachments, created_at)
		SELECT $1, $2::uuid, $3::uuid, $4, $5, $6::double precision, $7, $8, $9::int, $10, $11::text[], $12::timestamptz
		WHERE EXISTS (SELECT 1 FROM negotiations WHERE negotiation_id=$2 AND status='OPEN')
	`, m.MessageID, m.NegotiationID, m.SenderID, m.Type, m.Body,
		offerPrice(m.Offer), offerDeliveryTerms(m.Offer), offerCurrency(m.Offer), offerDeliveryDays(m.Offer),
		m.OfferStatus, m.Attachments, m.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return negotiation.ErrNegotiationClosed
	}
	return nil
}

func (r *NegotiationRepository) ListMessages(ctx context.Context, negotiationID uuid.UUID) ([]*negotiation.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, message_id, negotiation_id, sender_id, type, body, offer_price, offer_delivery_terms, offer_currency, offer_delivery_days, offer_status, attachments, created_at
		FROM negotiation_messages WHERE negotiation_id=$1 ORDER BY message_id ASC
	`, negotiationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []*negotiation.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ResolveOffer is the serialization point for concurrent decisions: the
// compare-and-set on the unresolved status lets exactly one writer through.
func (r *NegotiationRepository) ResolveOffer(ctx context.Context, negotiationID uuid.UUID, messageID string, to negotiation.OfferStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE negotiation_messages SET offer_status=$1
		WHERE negotiation_id=$2 AND message_id=$3 AND type='COUNTER_OFFER' AND offer_status IS NULL
	`, to, negotiationID, messageID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanNegotiation(row pgx.Row) (*negotiation.Negotiation, error) {
	var n negotiation.Negotiation
	if err := row.Scan(&n.ID, &n.NegotiationID, &n.BidID, &n.BuyerID, &n.SupplierID, &n.Status, &n.PurchaseOrderID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func scanMessage(row pgx.Row) (*negotiation.Message, error) {
	var m negotiation.Message
	var price *float64
	var deliveryTerms, currency *string
	var deliveryDays *int
	if err := row.Scan(&m.ID, &m.MessageID, &m.NegotiationID, &m.SenderID, &m.Type, &m.Body, &price, &deliveryTerms, &currency, &deliveryDays, &m.OfferStatus, &m.Attachments, &m.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if price != nil || deliveryTerms != nil || currency != nil || deliveryDays != nil {
		m.Offer = &negotiation.Offer{
			Price:         price,
			DeliveryTerms: deliveryTerms,
			Currency:      currency,
			DeliveryDays:  deliveryDays,
		}
	}
	return &m, nil
}

func offerPrice(o *negotiation.Offer) *float64 {
	if o == nil {
		return nil
	}
	return o.Price
}

func offerDeliveryTerms(o *negotiation.Offer) *string {
	if o == nil {
		return nil
	}
	return o.DeliveryTerms
}

func offerCurrency(o *negotiation.Offer) *string {
	if o == nil {
		return nil
	}
	return o.Currency
}

func offerDeliveryDays(o *negotiation.Offer) *int {
	if o == nil {
		return nil
	}
	return o.DeliveryDays
}
