package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

// PaymentService reads and writes the credit ledger of a user.
type PaymentService struct {
	Payments  repositories.PaymentRepository
	Now       domain.Clock
	RequestID string
}

func (s PaymentService) InTx(tx *sql.Tx) PaymentService {
	s.Payments = s.Payments.InTx(tx)
	return s
}

func (s PaymentService) Buckets(ctx context.Context, userID string) ([]domain.Bucket, error) {
	totals, err := s.Payments.BucketTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BucketsFrom(totals), nil
}

func (s PaymentService) Balance(ctx context.Context, userID string) (models.Balance, error) {
	buckets, err := s.Buckets(ctx, userID)
	if err != nil {
		return models.Balance{}, err
	}
	sum := domain.Summarize(buckets, nowOf(s.Now))
	return models.Balance{UserID: userID, Balance: sum.Balance, BonusBalance: sum.BonusBalance}, nil
}

func (s PaymentService) Statement(ctx context.Context, userID string, page domain.Page) ([]models.Payment, error) {
	return s.Payments.ListByUser(ctx, userID, page)
}

// TopUp credits the cash bucket of a user on behalf of an admin.
func (s PaymentService) TopUp(ctx context.Context, adminID, userID string, credits int64) (models.Payment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.Payment{}, domain.ValidationError{Field: "user_id", Msg: "required"}
	}
	if credits <= 0 {
		return models.Payment{}, domain.ValidationError{Field: "credits", Msg: "must be positive"}
	}
	p, err := s.Payments.Add(ctx, models.Payment{PayeeUserID: userID, Credits: credits}, nowOf(s.Now))
	if err != nil {
		return models.Payment{}, err
	}
	utils.LogEvent(s.RequestID, "payment", "top_up", fmt.Sprintf("admin_id=%s user_id=%s credits=%d", adminID, userID, credits))
	return p, nil
}

// Charge debits credits from a user for a ride, draining live promo buckets
// before cash. One payment row is written per bucket touched. When bound to
// a transaction the user row is locked first so that concurrent charges see
// each other's rows.
func (s PaymentService) Charge(ctx context.Context, userID, driveRequestID string, credits int64) ([]models.Payment, error) {
	if err := s.Payments.LockUser(ctx, userID); err != nil {
		return nil, err
	}
	buckets, err := s.Buckets(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := nowOf(s.Now)
	lines, err := domain.PlanDebit(buckets, credits, now)
	if err != nil {
		return nil, err
	}
	out := make([]models.Payment, 0, len(lines))
	for _, line := range lines {
		p, err := s.Payments.Add(ctx, models.Payment{
			DriveRequestID: driveRequestID,
			PayerUserID:    userID,
			PromoCodeID:    line.PromoCodeID,
			Credits:        line.Credits,
		}, now)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	utils.LogEvent(s.RequestID, "payment", "charge", fmt.Sprintf("user_id=%s drive_request_id=%s credits=%d lines=%d", userID, driveRequestID, credits, len(out)))
	return out, nil
}

// Reimburse pays credits into the cash bucket of a driver. Nothing is
// written for a zero amount.
func (s PaymentService) Reimburse(ctx context.Context, userID, driveRequestID string, credits int64) (models.Payment, error) {
	if credits < 0 {
		return models.Payment{}, domain.ValidationError{Field: "credits", Msg: "must not be negative"}
	}
	if credits == 0 {
		return models.Payment{}, nil
	}
	p, err := s.Payments.Add(ctx, models.Payment{
		DriveRequestID: driveRequestID,
		PayeeUserID:    userID,
		Credits:        credits,
	}, nowOf(s.Now))
	if err != nil {
		return models.Payment{}, err
	}
	utils.LogEvent(s.RequestID, "payment", "reimburse", fmt.Sprintf("user_id=%s drive_request_id=%s credits=%d", userID, driveRequestID, credits))
	return p, nil
}
