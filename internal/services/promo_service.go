package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intdb "strappon/internal/db"
	"strappon/internal/domain"
	"strappon/internal/domain/models"
	"strappon/internal/metrics"
	"strappon/internal/repositories"
	"strappon/internal/utils"
)

type PromoCodeInput struct {
	Name         string    `json:"name"`
	EligibleTill string `json:"eligible_till"`
	ActiveFor    int       `json:"active_for"`
	Credits      int64     `json:"credits"`
}

// PromoService issues promo codes and redeems them into promo buckets.
type PromoService struct {
	DB         *sql.DB
	PromoCodes repositories.PromoCodeRepository
	Payments   repositories.PaymentRepository
	Metrics    *metrics.Metrics
	Now        domain.Clock
	RequestID  string
}

func (s PromoService) Create(ctx context.Context, in PromoCodeInput) (models.PromoCode, error) {
	name := utils.NormalizeCode(in.Name)
	switch {
	case name == "":
		return models.PromoCode{}, domain.ValidationError{Field: "name", Msg: "required"}
	case in.Credits <= 0:
		return models.PromoCode{}, domain.ValidationError{Field: "credits", Msg: "must be positive"}
	case in.ActiveFor <= 0:
		return models.PromoCode{}, domain.ValidationError{Field: "active_for", Msg: "must be positive"}
	case strings.TrimSpace(in.EligibleTill) == "":
		return models.PromoCode{}, domain.ValidationError{Field: "eligible_till", Msg: "required"}
	}
	eligibleTill, err := utils.ParseDateOrDateTime(in.EligibleTill)
	if err != nil {
		return models.PromoCode{}, domain.ValidationError{Field: "eligible_till", Msg: "expected YYYY-MM-DD, YYYY-MM-DD HH:MM:SS or RFC3339"}
	}

	if _, err := s.PromoCodes.GetByName(ctx, name); err == nil {
		return models.PromoCode{}, domain.ConflictError{Resource: "promo code", Msg: name + " already exists"}
	} else if !domain.IsNotFound(err) {
		return models.PromoCode{}, err
	}

	pc, err := s.PromoCodes.Create(ctx, models.PromoCode{
		Name:         name,
		EligibleTill: eligibleTill,
		ActiveFor:    in.ActiveFor,
		Credits:      in.Credits,
	}, nowOf(s.Now))
	if err != nil {
		return models.PromoCode{}, err
	}
	utils.LogEvent(s.RequestID, "promo", "create", fmt.Sprintf("name=%s credits=%d", name, in.Credits))
	return pc, nil
}

// Redeem links the code to the user and credits its amount into the
// promo bucket. A code is redeemable once per user while eligible.
func (s PromoService) Redeem(ctx context.Context, userID, name string) (models.UserPromoCode, error) {
	name = utils.NormalizeCode(name)
	if name == "" {
		return models.UserPromoCode{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	db, err := txDB(s.DB)
	if err != nil {
		return models.UserPromoCode{}, err
	}
	now := nowOf(s.Now)

	var out models.UserPromoCode
	err = intdb.WithTx(ctx, db, func(tx *sql.Tx) error {
		codes := s.PromoCodes.InTx(tx)
		payments := s.Payments.InTx(tx)

		pc, err := codes.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if now.After(pc.EligibleTill) {
			return domain.ValidationError{Field: "name", Msg: "promo code expired"}
		}
		if err := payments.LockUser(ctx, userID); err != nil {
			return err
		}
		redeemed, err := codes.Redeemed(ctx, userID, pc.ID)
		if err != nil {
			return err
		}
		if redeemed {
			return domain.ConflictError{Resource: "promo code", Msg: "already redeemed"}
		}
		if out, err = codes.AddRedemption(ctx, userID, pc.ID, now); err != nil {
			return err
		}
		_, err = payments.Add(ctx, models.Payment{
			PayeeUserID: userID,
			PromoCodeID: pc.ID,
			Credits:     pc.Credits,
		}, now)
		return err
	})
	if err != nil {
		return models.UserPromoCode{}, err
	}
	s.Metrics.PromoRedeemed()
	utils.LogEvent(s.RequestID, "promo", "redeem", fmt.Sprintf("user_id=%s name=%s", userID, name))
	return out, nil
}
