package domain

import (
	"sort"
	"time"

	"strappon/internal/domain/models"
)

// Bucket is the spendable remainder of one promo code for one user, or the
// cash remainder when PromoCodeID is empty.
type Bucket struct {
	PromoCodeID string
	Credits     int64
	RedeemedAt  time.Time
	ExpiresAt   time.Time
}

func (b Bucket) IsCash() bool { return b.PromoCodeID == "" }

// Live reports whether the bucket can still be spent at now. The cash
// bucket never expires.
func (b Bucket) Live(now time.Time) bool {
	if b.IsCash() {
		return true
	}
	return now.Before(b.ExpiresAt)
}

// BucketsFrom folds per promo code aggregates into signed buckets. The cash
// bucket is always present, first.
func BucketsFrom(totals []models.BucketTotal) []Bucket {
	out := []Bucket{{}}
	for _, t := range totals {
		if t.PromoCodeID == "" {
			out[0].Credits += t.Income - t.Outcome
			continue
		}
		out = append(out, Bucket{
			PromoCodeID: t.PromoCodeID,
			Credits:     t.Income - t.Outcome,
			RedeemedAt:  t.RedeemedAt,
			ExpiresAt:   t.RedeemedAt.AddDate(0, 0, t.ActiveFor),
		})
	}
	return out
}

// Summary is the outcome of a ledger read.
type Summary struct {
	Balance      int64
	BonusBalance int64
}

// Summarize computes the spendable balance: the cash bucket plus every live,
// positive promo bucket. Expired promo leftovers are not spendable.
func Summarize(buckets []Bucket, now time.Time) Summary {
	var s Summary
	for _, b := range buckets {
		if b.IsCash() {
			s.Balance += b.Credits
			continue
		}
		if b.Live(now) && b.Credits > 0 {
			s.BonusBalance += b.Credits
		}
	}
	s.Balance += s.BonusBalance
	return s
}

// DebitLine is one slice of a debit charged against a single bucket.
type DebitLine struct {
	PromoCodeID string
	Credits     int64
}

// PlanDebit splits amount across the buckets. Live promo buckets are drained
// first, soonest to expire first; whatever is left lands on the cash bucket,
// which may go negative. Lines always sum to amount.
func PlanDebit(buckets []Bucket, amount int64, now time.Time) ([]DebitLine, error) {
	if amount < 0 {
		return nil, ValidationError{Field: "credits", Msg: "must not be negative"}
	}
	if amount == 0 {
		return nil, nil
	}

	promos := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if !b.IsCash() && b.Live(now) && b.Credits > 0 {
			promos = append(promos, b)
		}
	}
	sort.SliceStable(promos, func(i, j int) bool {
		a, b := promos[i], promos[j]
		if !a.ExpiresAt.Equal(b.ExpiresAt) {
			return a.ExpiresAt.Before(b.ExpiresAt)
		}
		if !a.RedeemedAt.Equal(b.RedeemedAt) {
			return a.RedeemedAt.Before(b.RedeemedAt)
		}
		return a.PromoCodeID < b.PromoCodeID
	})

	remaining := amount
	lines := make([]DebitLine, 0, len(promos)+1)
	for _, b := range promos {
		if remaining == 0 {
			break
		}
		take := min(b.Credits, remaining)
		lines = append(lines, DebitLine{PromoCodeID: b.PromoCodeID, Credits: take})
		remaining -= take
	}
	if remaining > 0 {
		lines = append(lines, DebitLine{Credits: remaining})
	}
	return lines, nil
}
