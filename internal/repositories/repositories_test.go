package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"strappon/internal/domain"
	"strappon/internal/domain/models"
)

var now = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func userCols() []string {
	return []string{"id", "acs_id", "facebook_id", "name", "avatar", "email", "locale", "deleted", "created_at", "updated_at"}
}

func userVals(id string) []driver.Value {
	return []driver.Value{id, "", "fb-" + id, "Anna", "", "anna@example.com", "it", false, now, now}
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM users u").WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userCols()))

	_, err = UserRepository{DB: db}.GetByID(context.Background(), "missing")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

	err = UserRepository{DB: db}.Update(context.Background(), "u1", models.UserInput{Name: "x", Locale: "en"}, now)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDriverListUnhiddenJoinsUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	cols := append([]string{"id", "user_id", "car_make", "car_model", "car_color", "license_plate", "telephone",
		"hidden", "active", "created_at", "updated_at"}, userCols()...)
	vals := append([]driver.Value{"d1", "u1", "Fiat", "Panda", "red", "AB123CD", "", false, true, now, now}, userVals("u1")...)

	mock.ExpectQuery("LEFT JOIN user_positions").
		WithArgs("milan", "milan", 20, 0).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(vals...))

	drivers, err := DriverRepository{DB: db}.ListUnhidden(context.Background(), "milan", domain.Page{})
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(drivers) != 1 || drivers[0].User == nil || drivers[0].User.Name != "Anna" {
		t.Fatalf("unexpected drivers %+v", drivers)
	}
	if drivers[0].CarModel != "Panda" {
		t.Fatalf("car model not scanned, got %q", drivers[0].CarModel)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRideStatsUsesSideOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`dr\.accepted = 1 AND dr\.cancelled = 0 AND d\.user_id = \?`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(3, 42.5))
	mock.ExpectQuery(`AND p\.user_id = \?`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(0, 0))

	repo := DriveRequestRepository{DB: db}
	asDriver, err := repo.RideStats(context.Background(), "u1", domain.RoleDriver)
	if err != nil {
		t.Fatalf("driver stats error: %v", err)
	}
	if asDriver.Rides != 3 || asDriver.Distance != 42.5 {
		t.Fatalf("unexpected driver stats %+v", asDriver)
	}
	asPassenger, err := repo.RideStats(context.Background(), "u1", domain.RolePassenger)
	if err != nil {
		t.Fatalf("passenger stats error: %v", err)
	}
	if asPassenger.Rides != 0 {
		t.Fatalf("unexpected passenger stats %+v", asPassenger)
	}
}

func TestPaymentAddRejectsNonPositiveCredits(t *testing.T) {
	_, err := PaymentRepository{}.Add(context.Background(), models.Payment{PayerUserID: "u1"}, now)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = PaymentRepository{}.Add(context.Background(), models.Payment{Credits: 10}, now)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error without parties, got %v", err)
	}
}

func TestPaymentAddStoresNullPromo(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), "dr1", "u1", "u2", nil, int64(390), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	p, err := PaymentRepository{DB: db}.Add(context.Background(), models.Payment{
		DriveRequestID: "dr1",
		PayerUserID:    "u1",
		PayeeUserID:    "u2",
		Credits:        390,
	}, now)
	if err != nil {
		t.Fatalf("add error: %v", err)
	}
	if p.ID == "" || !p.CreatedAt.Equal(now) {
		t.Fatalf("id/created not set: %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentBucketTotals(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	redeemed := now.AddDate(0, 0, -2)
	mock.ExpectQuery("GROUP BY p.promo_code_id").
		WithArgs("u1", "u1", "u1", "u1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"promo", "income", "outcome", "redeemed", "active_for"}).
			AddRow("", 1000, 250, nil, 0).
			AddRow("pc1", 500, 100, redeemed, 30))

	totals, err := PaymentRepository{DB: db}.BucketTotals(context.Background(), "u1")
	if err != nil {
		t.Fatalf("bucket totals error: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 totals, got %d", len(totals))
	}
	if totals[0].PromoCodeID != "" || totals[0].Income != 1000 || totals[0].Outcome != 250 || !totals[0].RedeemedAt.IsZero() {
		t.Fatalf("unexpected cash total %+v", totals[0])
	}
	if totals[1].PromoCodeID != "pc1" || totals[1].ActiveFor != 30 || !totals[1].RedeemedAt.Equal(redeemed) {
		t.Fatalf("unexpected promo total %+v", totals[1])
	}
}

func TestPerkListEligibleExcludesAnyActivation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	today := domain.Today(now)
	cols := []string{"id", "user_id", "perk_id", "valid_until", "deleted", "created_at",
		"pk_id", "name", "eligible_for", "active_for", "fixed_rate", "multiplier", "pk_deleted", "pk_created"}
	// an expired activation must still hide the eligibility, so the
	// subquery carries no validity filter
	mock.ExpectQuery(`FROM eligible_passenger_perks g\s+JOIN passenger_perks pk(.|\n)+NOT EXISTS \(\s*SELECT 1 FROM active_passenger_perks a\s+WHERE a\.user_id = g\.user_id AND a\.perk_id = g\.perk_id\s*\)`).
		WithArgs("u1", today).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("g1", "u1", "pk1", today.AddDate(0, 0, 5), false, now, "pk1", "summer", 10, 30, "0.50", "0.90", false, now))

	grants, err := PerkRepository{DB: db, Role: domain.RolePassenger}.ListEligible(context.Background(), "u1", today)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	if !grants[0].Perk.Multiplier.Equal(decimal.RequireFromString("0.9")) {
		t.Fatalf("multiplier not scanned, got %s", grants[0].Perk.Multiplier)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPerkTablesFollowRole(t *testing.T) {
	driver := PerkRepository{Role: domain.RoleDriver}
	if driver.perks() != "driver_perks" || driver.eligible() != "eligible_driver_perks" || driver.active() != "active_driver_perks" {
		t.Fatalf("unexpected driver tables")
	}
	passenger := PerkRepository{Role: domain.RolePassenger}
	if passenger.active() != "active_passenger_perks" {
		t.Fatalf("unexpected passenger table %s", passenger.active())
	}
}

func TestTraceCreateManyBatchesRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO traces .+ VALUES \(\?,\?,\?,\?,\?,\?,\?\), \(\?,\?,\?,\?,\?,\?,\?\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	out, err := TraceRepository{DB: db}.CreateMany(context.Background(), "u1", []domain.ParsedTrace{
		{Level: "info", Date: "2024-03-10", Message: "a"},
		{AppVersion: "1.2", Level: "error", Date: "2024-03-10", Message: "b"},
	}, now)
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if len(out) != 2 || out[1].AppVersion != "1.2" {
		t.Fatalf("unexpected traces %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQuerierWithoutConnection(t *testing.T) {
	if _, err := (RateRepository{}).Exists(context.Background(), "dr", "u"); err == nil {
		t.Fatalf("expected error without db")
	}
}

func TestDuplicateRateIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO rates").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'dr1-u1' for key 'uniq_request_rater'"})

	_, err = RateRepository{DB: db}.Create(context.Background(), models.Rate{DriveRequestID: "dr1", RaterUserID: "u1", RatedUserID: "u2", Stars: 5}, now)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDuplicatePromoCodeIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	mock.ExpectExec("INSERT INTO promo_codes").WillReturnError(dup)
	mock.ExpectExec("INSERT INTO user_promo_codes").WillReturnError(dup)

	repo := PromoCodeRepository{DB: db}
	_, err = repo.Create(context.Background(), models.PromoCode{Name: "WELCOME", ActiveFor: 30, Credits: 500, EligibleTill: now}, now)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict on code, got %v", err)
	}
	_, err = repo.AddRedemption(context.Background(), "u1", "pc1", now)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict on redemption, got %v", err)
	}
}

func TestOtherInsertErrorsAreNotConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO rates").WillReturnError(errors.New("connection reset"))

	_, err = RateRepository{DB: db}.Create(context.Background(), models.Rate{DriveRequestID: "dr1", RaterUserID: "u1", Stars: 3}, now)
	if err == nil || domain.IsConflict(err) {
		t.Fatalf("expected plain error, got %v", err)
	}
}

func TestSetMatchedGuardsCurrentValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE passengers SET matched = \?, updated_at = \? WHERE id = \? AND active = 1 AND matched = \?`).
		WithArgs(true, now, "p1", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = PassengerRepository{DB: db}.SetMatched(context.Background(), "p1", true, now)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
