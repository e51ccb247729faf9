package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	intdb "strappon/internal/db"
	"strappon/internal/domain"
	"strappon/internal/domain/models"
)

type PaymentRepository struct {
	DB *sql.DB
	Tx *sql.Tx
}

func (r PaymentRepository) InTx(tx *sql.Tx) PaymentRepository {
	r.Tx = tx
	return r
}

// Add appends one ledger row. Rows are never updated.
func (r PaymentRepository) Add(ctx context.Context, p models.Payment, now time.Time) (models.Payment, error) {
	if p.Credits <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "credits", Msg: "must be positive"}
	}
	if p.PayerUserID == "" && p.PayeeUserID == "" {
		return models.Payment{}, domain.ValidationError{Field: "payer_user_id", Msg: "payer or payee required"}
	}
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.Payment{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = now
	_, err = q.ExecContext(ctx, `
		INSERT INTO payments (id, drive_request_id, payer_user_id, payee_user_id, promo_code_id, credits, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, intdb.NullIfEmpty(p.DriveRequestID), intdb.NullIfEmpty(p.PayerUserID), intdb.NullIfEmpty(p.PayeeUserID),
		intdb.NullIfEmpty(p.PromoCodeID), p.Credits, now,
	)
	if err != nil {
		return models.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	return p, nil
}

// LockUser takes a row lock on the user so ledger writes for the same user
// are serialized. It is a no-op outside a transaction.
func (r PaymentRepository) LockUser(ctx context.Context, userID string) error {
	if r.Tx == nil {
		return nil
	}
	var id string
	err := r.Tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ? FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		return notFound(err, "user", userID)
	}
	return nil
}

// BucketTotals aggregates a user's payments per promo code. The row with an
// empty promo code id is the cash bucket; promo rows carry the redemption
// time and validity of the code.
func (r PaymentRepository) BucketTotals(ctx context.Context, userID string) ([]models.BucketTotal, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, `
		SELECT COALESCE(p.promo_code_id,''),
		       COALESCE(SUM(CASE WHEN p.payee_user_id = ? THEN p.credits ELSE 0 END),0),
		       COALESCE(SUM(CASE WHEN p.payer_user_id = ? THEN p.credits ELSE 0 END),0),
		       MIN(upc.created_at),
		       COALESCE(MAX(pc.active_for),0)
		FROM payments p
		LEFT JOIN user_promo_codes upc ON upc.promo_code_id = p.promo_code_id AND upc.user_id = ?
		LEFT JOIN promo_codes pc ON pc.id = p.promo_code_id
		WHERE p.payer_user_id = ? OR p.payee_user_id = ?
		GROUP BY p.promo_code_id`,
		userID, userID, userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("bucket totals: %w", err)
	}
	defer rows.Close()

	out := []models.BucketTotal{}
	for rows.Next() {
		var (
			t        models.BucketTotal
			redeemed sql.NullTime
		)
		if err := rows.Scan(&t.PromoCodeID, &t.Income, &t.Outcome, &redeemed, &t.ActiveFor); err != nil {
			return nil, fmt.Errorf("scan bucket total: %w", err)
		}
		if redeemed.Valid {
			t.RedeemedAt = redeemed.Time.UTC()
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const paymentSelect = `
	SELECT id, COALESCE(drive_request_id,''), COALESCE(payer_user_id,''), COALESCE(payee_user_id,''),
	       COALESCE(promo_code_id,''), credits, created_at
	FROM payments`

// ListByUser returns the statement of a user, newest first.
func (r PaymentRepository) ListByUser(ctx context.Context, userID string, page domain.Page) ([]models.Payment, error) {
	page = page.Normalize()
	return r.list(ctx, paymentSelect+`
		WHERE payer_user_id = ? OR payee_user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, userID, userID, page.Limit, page.Offset)
}

func (r PaymentRepository) ListByDriveRequest(ctx context.Context, driveRequestID string) ([]models.Payment, error) {
	return r.list(ctx, paymentSelect+`
		WHERE drive_request_id = ?
		ORDER BY created_at, id`, driveRequestID)
}

func (r PaymentRepository) list(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	out := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.DriveRequestID, &p.PayerUserID, &p.PayeeUserID, &p.PromoCodeID, &p.Credits, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
