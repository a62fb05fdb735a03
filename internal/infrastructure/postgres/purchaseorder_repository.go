package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procure-hub/procure-hub/internal/domain/purchaseorder"
)

// PurchaseOrderRepository implements purchaseorder.Repository.
type PurchaseOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPurchaseOrderRepository(pool *pgxpool.Pool) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{pool: pool}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *purchaseorder.PurchaseOrder) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO purchase_orders
		(po_id, negotiation_id, bid_id, buyer_id, supplier_id, total_price, currency, delivery_address, payment_terms, notes, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, po.POID, po.NegotiationID, po.BidID, po.BuyerID, po.SupplierID, po.TotalPrice, po.Currency, po.DeliveryAddress, po.PaymentTerms, po.Notes, po.Status, po.CreatedAt)
	return err
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, poID uuid.UUID) (*purchaseorder.PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, po_id, negotiation_id, bid_id, buyer_id, supplier_id, total_price, currency, delivery_address, payment_terms, notes, status, created_at
		FROM purchase_orders WHERE po_id=$1
	`, poID)
	return scanPurchaseOrder(row)
}

func (r *PurchaseOrderRepository) GetByNegotiationID(ctx context.Context, negotiationID uuid.UUID) (*purchaseorder.PurchaseOrder, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, po_id, negotiation_id, bid_id, buyer_id, supplier_id, total_price, currency, delivery_address, payment_terms, notes, status, created_at
		FROM purchase_orders WHERE negotiation_id=$1
	`, negotiationID)
	return scanPurchaseOrder(row)
}

func scanPurchaseOrder(row pgx.Row) (*purchaseorder.PurchaseOrder, error) {
	var po purchaseorder.PurchaseOrder
	if err := row.Scan(&po.ID, &po.POID, &po.NegotiationID, &po.BidID, &po.BuyerID, &po.SupplierID, &po.TotalPrice, &po.Currency, &po.DeliveryAddress, &po.PaymentTerms, &po.Notes, &po.Status, &po.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}
