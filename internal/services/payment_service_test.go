package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strappon/internal/domain"
	"strappon/internal/metrics"
	"strappon/internal/repositories"
)

func TestBalanceIgnoresExpiredPromoLeftovers(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("GROUP BY p.promo_code_id").WithArgs("u1", "u1", "u1", "u1", "u1").
		WillReturnRows(sqlmock.NewRows(bucketCols).
			AddRow("", 100, 400, nil, 0).
			AddRow("live", 600, 100, testNow.AddDate(0, 0, -5), 30).
			AddRow("expired", 200, 0, testNow.AddDate(0, 0, -40), 30))

	svc := PaymentService{Payments: repositories.PaymentRepository{DB: db}, Now: fixedClock}
	bal, err := svc.Balance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), bal.Balance)
	assert.Equal(t, int64(500), bal.BonusBalance)
}

func TestTopUpRejectsNonPositive(t *testing.T) {
	_, err := PaymentService{}.TopUp(context.Background(), "admin1", "u1", 0)
	assert.True(t, domain.IsValidation(err))
}

func TestTopUpRequiresTargetUser(t *testing.T) {
	_, err := PaymentService{}.TopUp(context.Background(), "admin1", "  ", 100)
	assert.True(t, domain.IsValidation(err))
}

func TestTopUpCreditsTargetUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), nil, nil, "u2", nil, int64(300), testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := PaymentService{Payments: repositories.PaymentRepository{DB: db}, Now: fixedClock}
	p, err := svc.TopUp(context.Background(), "admin1", "u2", 300)
	require.NoError(t, err)
	assert.Equal(t, "u2", p.PayeeUserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReimburseZeroWritesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p, err := PaymentService{Payments: repositories.PaymentRepository{DB: db}}.Reimburse(context.Background(), "u1", "dr1", 0)
	require.NoError(t, err)
	assert.Empty(t, p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemCreditsPromoBucket(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := metrics.New(prometheus.NewRegistry())
	svc := PromoService{
		DB:         db,
		PromoCodes: repositories.PromoCodeRepository{DB: db},
		Payments:   repositories.PaymentRepository{DB: db},
		Metrics:    m,
		Now:        fixedClock,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM promo_codes").WithArgs("WELCOME5").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "eligible_till", "active_for", "credits", "created_at"}).
			AddRow("pc1", "WELCOME5", testNow.AddDate(0, 1, 0), 30, 500, testNow.AddDate(0, -1, 0)))
	mock.ExpectQuery("FOR UPDATE").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectQuery("FROM user_promo_codes").WithArgs("u1", "pc1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO user_promo_codes").WithArgs(sqlmock.AnyArg(), "u1", "pc1", testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), nil, nil, "u1", "pc1", int64(500), testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	upc, err := svc.Redeem(context.Background(), "u1", " welcome 5 ")
	require.NoError(t, err)
	assert.Equal(t, "pc1", upc.PromoCodeID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PromoRedemptions))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemTwiceConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := PromoService{DB: db, Now: fixedClock,
		PromoCodes: repositories.PromoCodeRepository{DB: db},
		Payments:   repositories.PaymentRepository{DB: db},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM promo_codes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "eligible_till", "active_for", "credits", "created_at"}).
			AddRow("pc1", "WELCOME5", testNow.AddDate(0, 1, 0), 30, 500, testNow))
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectQuery("FROM user_promo_codes").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err = svc.Redeem(context.Background(), "u1", "WELCOME5")
	assert.True(t, domain.IsConflict(err), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemExpiredCode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := PromoService{DB: db, Now: fixedClock, PromoCodes: repositories.PromoCodeRepository{DB: db}}

	mock.ExpectBegin()
	mock.ExpectQuery("FROM promo_codes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "eligible_till", "active_for", "credits", "created_at"}).
			AddRow("pc1", "OLD", testNow.AddDate(0, 0, -1), 30, 500, testNow.AddDate(-1, 0, 0)))
	mock.ExpectRollback()

	_, err = svc.Redeem(context.Background(), "u1", "old")
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestCreatePromoCodeValidates(t *testing.T) {
	svc := PromoService{Now: fixedClock}
	_, err := svc.Create(context.Background(), PromoCodeInput{Name: "X", Credits: 0, ActiveFor: 10, EligibleTill: "2024-06-01"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Create(context.Background(), PromoCodeInput{Name: " ", Credits: 10, ActiveFor: 10, EligibleTill: "2024-06-01"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Create(context.Background(), PromoCodeInput{Name: "X", Credits: 10, ActiveFor: 10, EligibleTill: "01/06/2024"})
	assert.True(t, domain.IsValidation(err), "got %v", err)
}

func TestCreatePromoCodeParsesEligibleTill(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	till := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)
	mock.ExpectQuery("FROM promo_codes").WithArgs("SPRING24").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "eligible_till", "active_for", "credits", "created_at"}))
	mock.ExpectExec("INSERT INTO promo_codes").
		WithArgs(sqlmock.AnyArg(), "SPRING24", till, int64(14), int64(500), testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := PromoService{PromoCodes: repositories.PromoCodeRepository{DB: db}, Now: fixedClock}
	pc, err := svc.Create(context.Background(), PromoCodeInput{Name: "spring 24", EligibleTill: "2024-06-01 18:30:00", ActiveFor: 14, Credits: 500})
	require.NoError(t, err)
	assert.Equal(t, till, pc.EligibleTill)
	require.NoError(t, mock.ExpectationsWereMet())
}
