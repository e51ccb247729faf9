package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"strappon/internal/domain/models"
)

var ledgerNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestBucketsFromGroupsByPromoCode(t *testing.T) {
	redeemed := ledgerNow.AddDate(0, 0, -2)
	buckets := BucketsFrom([]models.BucketTotal{
		{PromoCodeID: "", Income: 1000, Outcome: 300},
		{PromoCodeID: "welcome", Income: 500, Outcome: 100, RedeemedAt: redeemed, ActiveFor: 30},
	})

	require.Len(t, buckets, 2)
	require.True(t, buckets[0].IsCash())
	require.Equal(t, int64(700), buckets[0].Credits)
	require.Equal(t, "welcome", buckets[1].PromoCodeID)
	require.Equal(t, int64(400), buckets[1].Credits)
	require.Equal(t, redeemed.AddDate(0, 0, 30), buckets[1].ExpiresAt)
}

func TestBucketsFromAlwaysHasCash(t *testing.T) {
	buckets := BucketsFrom(nil)
	require.Len(t, buckets, 1)
	require.True(t, buckets[0].IsCash())
	require.Zero(t, buckets[0].Credits)
}

func TestSummarizeSkipsExpiredAndNegativePromos(t *testing.T) {
	buckets := []Bucket{
		{Credits: 250},
		{PromoCodeID: "live", Credits: 300, ExpiresAt: ledgerNow.Add(time.Hour)},
		{PromoCodeID: "expired", Credits: 900, ExpiresAt: ledgerNow.Add(-time.Hour)},
		{PromoCodeID: "overdrawn", Credits: -50, ExpiresAt: ledgerNow.Add(time.Hour)},
	}

	s := Summarize(buckets, ledgerNow)
	require.Equal(t, int64(300), s.BonusBalance)
	require.Equal(t, int64(550), s.Balance)
}

func TestSummarizeNegativeCash(t *testing.T) {
	s := Summarize([]Bucket{{Credits: -120}, {PromoCodeID: "p", Credits: 20, ExpiresAt: ledgerNow.Add(time.Minute)}}, ledgerNow)
	require.Equal(t, int64(-100), s.Balance)
	require.Equal(t, int64(20), s.BonusBalance)
}

func TestPlanDebitDrainsSoonestExpiringFirst(t *testing.T) {
	buckets := []Bucket{
		{Credits: 1000},
		{PromoCodeID: "late", Credits: 500, RedeemedAt: ledgerNow.AddDate(0, 0, -1), ExpiresAt: ledgerNow.AddDate(0, 0, 20)},
		{PromoCodeID: "soon", Credits: 200, RedeemedAt: ledgerNow.AddDate(0, 0, -9), ExpiresAt: ledgerNow.AddDate(0, 0, 1)},
	}

	lines, err := PlanDebit(buckets, 450, ledgerNow)
	require.NoError(t, err)
	require.Equal(t, []DebitLine{
		{PromoCodeID: "soon", Credits: 200},
		{PromoCodeID: "late", Credits: 250},
	}, lines)
}

func TestPlanDebitFallsBackToCash(t *testing.T) {
	buckets := []Bucket{
		{Credits: 100},
		{PromoCodeID: "p", Credits: 50, ExpiresAt: ledgerNow.AddDate(0, 0, 3)},
		{PromoCodeID: "gone", Credits: 800, ExpiresAt: ledgerNow.AddDate(0, 0, -3)},
	}

	lines, err := PlanDebit(buckets, 400, ledgerNow)
	require.NoError(t, err)
	require.Equal(t, []DebitLine{
		{PromoCodeID: "p", Credits: 50},
		{Credits: 350},
	}, lines)

	var total int64
	for _, l := range lines {
		total += l.Credits
	}
	require.Equal(t, int64(400), total)
}

func TestPlanDebitTieBreaksOnRedemptionThenID(t *testing.T) {
	expires := ledgerNow.AddDate(0, 0, 5)
	buckets := []Bucket{
		{PromoCodeID: "b", Credits: 10, RedeemedAt: ledgerNow.AddDate(0, 0, -1), ExpiresAt: expires},
		{PromoCodeID: "a", Credits: 10, RedeemedAt: ledgerNow.AddDate(0, 0, -1), ExpiresAt: expires},
		{PromoCodeID: "c", Credits: 10, RedeemedAt: ledgerNow.AddDate(0, 0, -4), ExpiresAt: expires},
	}

	lines, err := PlanDebit(buckets, 25, ledgerNow)
	require.NoError(t, err)
	require.Equal(t, []DebitLine{
		{PromoCodeID: "c", Credits: 10},
		{PromoCodeID: "a", Credits: 10},
		{PromoCodeID: "b", Credits: 5},
	}, lines)
}

func TestPlanDebitEdgeAmounts(t *testing.T) {
	lines, err := PlanDebit([]Bucket{{Credits: 10}}, 0, ledgerNow)
	require.NoError(t, err)
	require.Empty(t, lines)

	_, err = PlanDebit([]Bucket{{Credits: 10}}, -1, ledgerNow)
	require.True(t, IsValidation(err))
}

func TestPromoBucketExpiresExactlyAtExpiry(t *testing.T) {
	promo := Bucket{PromoCodeID: "welcome", Credits: 300, RedeemedAt: ledgerNow.AddDate(0, 0, -30), ExpiresAt: ledgerNow}
	buckets := []Bucket{{Credits: 100}, promo}

	require.True(t, promo.Live(ledgerNow.Add(-time.Nanosecond)))
	require.False(t, promo.Live(ledgerNow))

	sum := Summarize(buckets, ledgerNow)
	require.Equal(t, int64(100), sum.Balance)
	require.Equal(t, int64(0), sum.BonusBalance)

	lines, err := PlanDebit(buckets, 50, ledgerNow)
	require.NoError(t, err)
	require.Equal(t, []DebitLine{{Credits: 50}}, lines)
}
