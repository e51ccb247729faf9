package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"strappon/internal/domain/models"
)

func grant(name, fixed, mult string, created, validUntil time.Time) models.PerkGrant {
	return models.PerkGrant{
		ID:         name + "-grant",
		PerkID:     name,
		ValidUntil: validUntil,
		CreatedAt:  created,
		Perk:       models.Perk{ID: name, Name: name, FixedRate: d(fixed), Multiplier: d(mult)},
	}
}

func TestGrantUntilAndLive(t *testing.T) {
	now := time.Date(2025, 5, 1, 18, 30, 0, 0, time.UTC)
	until := GrantUntil(now, 7)
	require.Equal(t, time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC), until)

	g := models.PerkGrant{ValidUntil: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
	require.True(t, GrantLive(g, now), "valid through the whole last day")
	require.False(t, GrantLive(g, now.AddDate(0, 0, 1)))

	g.Deleted = true
	require.False(t, GrantLive(g, now))
}

func TestBestPassengerPerkPicksCheapest(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 10)
	grants := []models.PerkGrant{
		grant(StandardPassengerPerk, "0", "1", now.AddDate(0, 0, -30), future),
		grant("passenger_half", "0", "0.5", now.AddDate(0, 0, -1), future),
		grant("passenger_expired_free", "0", "0", now.AddDate(0, 0, -5), now.AddDate(0, 0, -1)),
	}

	choice, err := BestPassengerPerk(grants, 2, 10, now)
	require.NoError(t, err)
	require.Equal(t, "passenger_half", choice.Perk.Name)
	require.True(t, choice.Amount.Equal(d("3.9")))
}

func TestBestDriverPerkPicksHighestAndNewestOnTie(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 10)
	grants := []models.PerkGrant{
		grant(StandardDriverPerk, "0", "1", now.AddDate(0, 0, -30), future),
		grant(EarlyBirdDriverPerk, "1", "1", now.AddDate(0, 0, -3), future),
		grant("driver_twin", "1", "1", now.AddDate(0, 0, -1), future),
	}

	choice, err := BestDriverPerk(grants, 1, 0, now)
	require.NoError(t, err)
	require.Equal(t, "driver_twin", choice.Perk.Name)
	require.True(t, choice.Amount.Equal(d("1.3")))
}

func TestBestPerkFallsBackToDefault(t *testing.T) {
	now := time.Now().UTC()
	choice, err := BestDriverPerk(nil, 1, 10, now)
	require.NoError(t, err)
	require.Equal(t, StandardDriverPerk, choice.Perk.Name)
	require.True(t, choice.Amount.Equal(d("3.9")))
}

func TestWithoutStandard(t *testing.T) {
	now := time.Now().UTC()
	grants := []models.PerkGrant{
		grant(StandardDriverPerk, "0", "1", now, now),
		grant(EarlyBirdDriverPerk, "1", "1", now, now),
	}
	out := WithoutStandard(grants, RoleDriver)
	require.Len(t, out, 1)
	require.Equal(t, EarlyBirdDriverPerk, out[0].Perk.Name)
}
