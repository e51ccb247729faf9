package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
)

// PerkRepository reads and writes the perk tables of one side. Drivers and
// passengers have the same layout under different table names.
type PerkRepository struct {
	DB   *sql.DB
	Tx   *sql.Tx
	Role domain.Role
}

func (r PerkRepository) InTx(tx *sql.Tx) PerkRepository {
	r.Tx = tx
	return r
}

func (r PerkRepository) side() string {
	if r.Role == domain.RoleDriver {
		return "driver"
	}
	return "passenger"
}

func (r PerkRepository) perks() string    { return r.side() + "_perks" }
func (r PerkRepository) eligible() string { return "eligible_" + r.side() + "_perks" }
func (r PerkRepository) active() string   { return "active_" + r.side() + "_perks" }

const perkColumns = `pk.id, pk.name, pk.eligible_for, pk.active_for, pk.fixed_rate, pk.multiplier, pk.deleted, pk.created_at`

func perkDest(p *models.Perk) []any {
	return []any{&p.ID, &p.Name, &p.EligibleFor, &p.ActiveFor, &p.FixedRate, &p.Multiplier, &p.Deleted, &p.CreatedAt}
}

func (r PerkRepository) CreatePerk(ctx context.Context, p models.Perk, now time.Time) (models.Perk, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.Perk{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = now
	_, err = q.ExecContext(ctx, `
		INSERT INTO `+r.perks()+` (id, name, eligible_for, active_for, fixed_rate, multiplier, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		p.ID, p.Name, p.EligibleFor, p.ActiveFor, p.FixedRate, p.Multiplier, now, now,
	)
	if err != nil {
		return models.Perk{}, fmt.Errorf("insert %s perk: %w", r.side(), err)
	}
	return p, nil
}

func (r PerkRepository) GetByName(ctx context.Context, name string) (models.Perk, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.Perk{}, err
	}
	var p models.Perk
	err = q.QueryRowContext(ctx, `
		SELECT `+perkColumns+`
		FROM `+r.perks()+` pk
		WHERE pk.name = ? AND pk.deleted = 0
		ORDER BY pk.created_at DESC
		LIMIT 1`, name).Scan(perkDest(&p)...)
	if err != nil {
		return models.Perk{}, notFound(err, r.side()+" perk", name)
	}
	return p, nil
}

func (r PerkRepository) AddEligible(ctx context.Context, userID string, perk models.Perk, validUntil, now time.Time) (models.PerkGrant, error) {
	return r.addGrant(ctx, r.eligible(), userID, perk, validUntil, now)
}

func (r PerkRepository) AddActive(ctx context.Context, userID string, perk models.Perk, validUntil, now time.Time) (models.PerkGrant, error) {
	return r.addGrant(ctx, r.active(), userID, perk, validUntil, now)
}

func (r PerkRepository) addGrant(ctx context.Context, table, userID string, perk models.Perk, validUntil, now time.Time) (models.PerkGrant, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return models.PerkGrant{}, err
	}
	g := models.PerkGrant{
		ID:         uuid.NewString(),
		UserID:     userID,
		PerkID:     perk.ID,
		ValidUntil: validUntil,
		CreatedAt:  now,
		Perk:       perk,
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO `+table+` (id, user_id, perk_id, valid_until, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)`,
		g.ID, userID, perk.ID, validUntil, now, now,
	)
	if err != nil {
		return models.PerkGrant{}, fmt.Errorf("insert %s: %w", table, err)
	}
	return g, nil
}

// ListEligible returns the live eligibilities of a user that were never
// activated. Any activation row of the same perk, expired or not, hides the
// eligibility so each one activates at most once.
func (r PerkRepository) ListEligible(ctx context.Context, userID string, today time.Time) ([]models.PerkGrant, error) {
	return r.listGrants(ctx, `
		SELECT g.id, g.user_id, g.perk_id, g.valid_until, g.deleted, g.created_at, `+perkColumns+`
		FROM `+r.eligible()+` g
		JOIN `+r.perks()+` pk ON pk.id = g.perk_id AND pk.deleted = 0
		WHERE g.user_id = ? AND g.deleted = 0 AND g.valid_until >= ?
		  AND NOT EXISTS (
		      SELECT 1 FROM `+r.active()+` a
		      WHERE a.user_id = g.user_id AND a.perk_id = g.perk_id
		  )
		ORDER BY g.created_at DESC`, userID, today)
}

// ListActive returns the live activations of a user.
func (r PerkRepository) ListActive(ctx context.Context, userID string, today time.Time) ([]models.PerkGrant, error) {
	return r.listGrants(ctx, `
		SELECT g.id, g.user_id, g.perk_id, g.valid_until, g.deleted, g.created_at, `+perkColumns+`
		FROM `+r.active()+` g
		JOIN `+r.perks()+` pk ON pk.id = g.perk_id AND pk.deleted = 0
		WHERE g.user_id = ? AND g.deleted = 0 AND g.valid_until >= ?
		ORDER BY g.created_at DESC`, userID, today)
}

func (r PerkRepository) listGrants(ctx context.Context, query string, args ...any) ([]models.PerkGrant, error) {
	q, err := querier(r.DB, r.Tx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s perks: %w", r.side(), err)
	}
	defer rows.Close()

	out := []models.PerkGrant{}
	for rows.Next() {
		var g models.PerkGrant
		dest := []any{&g.ID, &g.UserID, &g.PerkID, &g.ValidUntil, &g.Deleted, &g.CreatedAt}
		if err := rows.Scan(append(dest, perkDest(&g.Perk)...)...); err != nil {
			return nil, fmt.Errorf("scan %s perk: %w", r.side(), err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
