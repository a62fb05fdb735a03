package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procure-hub/procure-hub/internal/domain/bid"
)

// BidRepository implements bid.Repository.
type BidRepository struct {
	pool *pgxpool.Pool
}

func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

func (r *BidRepository) Create(ctx context.Context, b *bid.Bid) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bids (bid_id, rfq_id, buyer_id, supplier_id, amount, currency, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, b.BidID, b.RFQID, b.BuyerID, b.SupplierID, b.Amount, b.Currency, b.Status, b.CreatedAt)
	return err
}

func (r *BidRepository) GetByID(ctx context.Context, bidID uuid.UUID) (*bid.Bid, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, bid_id, rfq_id, buyer_id, supplier_id, amount, currency, status, created_at
		FROM bids WHERE bid_id=$1
	`, bidID)
	var b bid.Bid
	if err := row.Scan(&b.ID, &b.BidID, &b.RFQID, &b.BuyerID, &b.SupplierID, &b.Amount, &b.Currency, &b.Status, &b.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
