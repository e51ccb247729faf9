package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strappon/internal/domain"
	"strappon/internal/repositories"
)

func TestAuthorizedByResolvesTokenOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM tokens").WithArgs("tok1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow("tok1", "u1", testNow))
	mock.ExpectQuery("FROM users u").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(userVals("u1", "Anna")...))

	svc := UserService{Users: repositories.UserRepository{DB: db}, Tokens: repositories.TokenRepository{DB: db}, Now: fixedClock}
	u, err := svc.AuthorizedBy(context.Background(), "tok1")
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizedByRevokedToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM tokens").WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}))

	svc := UserService{Tokens: repositories.TokenRepository{DB: db}}
	_, err = svc.AuthorizedBy(context.Background(), "gone")
	assert.True(t, domain.IsNotFound(err))
}

func TestNotificationCounters(t *testing.T) {
	ctx := context.Background()
	counters := newFakeCounters()
	svc := NotificationService{Store: counters}

	svc.Bump(ctx, "u1", "", "u2", "u1")
	n, err := svc.Count(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, counters.values, 2)

	require.NoError(t, svc.Reset(ctx, "u1"))
	n, _ = svc.Count(ctx, "u1")
	assert.Zero(t, n)
}

func TestNotificationsWithoutStore(t *testing.T) {
	svc := NotificationService{}
	svc.Bump(context.Background(), "u1")
	n, err := svc.Count(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, svc.Reset(context.Background(), "u1"))
}
