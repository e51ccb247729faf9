package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strappon/internal/auth"
	intconfig "strappon/internal/config"
	"strappon/internal/domain/models"
	h "strappon/internal/http/handlers"
	"strappon/internal/metrics"
)

var testNow = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, admins ...string) (*gin.Engine, sqlmock.Sqlmock, auth.Signer) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	signer := auth.NewSigner("test-secret", time.Hour)
	handler := h.Handler{
		DB:      db,
		Metrics: metrics.New(reg),
		Catalog: intconfig.DefaultCatalog(),
		Signer:  signer,
		Now:     func() time.Time { return testNow },
	}
	env := intconfig.Env{AdminUserIDs: admins}
	return NewRouter(env, handler, reg), mock, signer
}

func bearer(t *testing.T, s auth.Signer, tokenID, userID string) string {
	t.Helper()
	raw, err := s.Issue(models.Token{ID: tokenID, UserID: userID})
	require.NoError(t, err)
	return "Bearer " + raw
}

func expectAuth(mock sqlmock.Sqlmock, tokenID, userID string) {
	mock.ExpectQuery("FROM tokens").WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at"}).AddRow(tokenID, userID, testNow))
	mock.ExpectQuery("FROM users u").WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "acs_id", "facebook_id", "name", "avatar", "email", "locale", "deleted", "created_at", "updated_at"}).
			AddRow(userID, "", "", "Anna", "", "", "it", false, testNow, testNow))
}

func TestHealthAndRequestID(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/payments/balance", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	r, mock, signer := newTestRouter(t)
	mock.ExpectQuery("FROM tokens").WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/balance", nil)
	req.Header.Set("Authorization", bearer(t, signer, "tok1", "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBalanceRoute(t *testing.T) {
	r, mock, signer := newTestRouter(t)
	expectAuth(mock, "tok1", "u1")
	mock.ExpectQuery("GROUP BY p.promo_code_id").
		WillReturnRows(sqlmock.NewRows([]string{"promo", "income", "outcome", "redeemed", "active_for"}).
			AddRow("", 1000, 250, nil, 0).
			AddRow("pc1", 500, 0, testNow.AddDate(0, 0, -1), 30))

	req := httptest.NewRequest(http.MethodGet, "/api/payments/balance", nil)
	req.Header.Set("Authorization", bearer(t, signer, "tok1", "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Balance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1250), got.Balance)
	assert.Equal(t, int64(500), got.BonusBalance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopUpIsAdminOnly(t *testing.T) {
	r, mock, signer := newTestRouter(t, "admin1")
	expectAuth(mock, "tok1", "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/payments/top-up", strings.NewReader(`{"user_id":"u1","credits":100000000}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, signer, "tok1", "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminTopUpCreditsTargetUser(t *testing.T) {
	r, mock, signer := newTestRouter(t, "admin1")
	expectAuth(mock, "tok1", "admin1")
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(sqlmock.AnyArg(), nil, nil, "u2", nil, int64(500), testNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/payments/top-up", strings.NewReader(`{"user_id":"u2","credits":500}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, signer, "tok1", "admin1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var got models.Payment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "u2", got.PayeeUserID)
	assert.Equal(t, int64(500), got.Credits)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTopUpValidationMapsTo400(t *testing.T) {
	r, mock, signer := newTestRouter(t, "u1")
	expectAuth(mock, "tok1", "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/payments/top-up", strings.NewReader(`{"user_id":"u2","credits":0}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, signer, "tok1", "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["code"])
	assert.NotEmpty(t, body["request_id"])
}

func TestPromoCreationIsAdminOnly(t *testing.T) {
	r, mock, signer := newTestRouter(t, "admin1")
	expectAuth(mock, "tok1", "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/promo-codes", strings.NewReader(`{"name":"X","credits":100}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, signer, "tok1", "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnknownPerkSide(t *testing.T) {
	r, mock, signer := newTestRouter(t)
	expectAuth(mock, "tok1", "u1")

	req := httptest.NewRequest(http.MethodGet, "/api/perks/pilot/active", nil)
	req.Header.Set("Authorization", bearer(t, signer, "tok1", "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPOIsArePublic(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pois", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "strappon_rides_completed_total")
}
