package models

import "time"

// Payment is one signed ledger row. Credits are always positive; the sign
// comes from whether a user is the payer or the payee.
type Payment struct {
	ID             string    `json:"id"`
	DriveRequestID string    `json:"drive_request_id,omitempty"`
	PayerUserID    string    `json:"payer_user_id,omitempty"`
	PayeeUserID    string    `json:"payee_user_id,omitempty"`
	PromoCodeID    string    `json:"promo_code_id,omitempty"`
	Credits        int64     `json:"credits"`
	CreatedAt      time.Time `json:"created"`
}

type PromoCode struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	EligibleTill time.Time `json:"eligible_till"`
	ActiveFor    int       `json:"active_for"`
	Credits      int64     `json:"credits"`
	CreatedAt    time.Time `json:"-"`
}

// UserPromoCode records that a user redeemed a promo code.
type UserPromoCode struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PromoCodeID string    `json:"promo_code_id"`
	CreatedAt   time.Time `json:"created"`
}

// BucketTotal is the per promo code aggregate read back from storage.
// PromoCodeID is empty for the cash bucket.
type BucketTotal struct {
	PromoCodeID string
	Income      int64
	Outcome     int64
	RedeemedAt  time.Time
	ActiveFor   int
}

type Balance struct {
	UserID       string `json:"user_id"`
	Balance      int64  `json:"balance"`
	BonusBalance int64  `json:"bonus_balance"`
}
