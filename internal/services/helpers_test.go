package services

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var testNow = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

var userCols = []string{"id", "acs_id", "facebook_id", "name", "avatar", "email", "locale", "deleted", "created_at", "updated_at"}

func userVals(id, name string) []driver.Value {
	return []driver.Value{id, "", "", name, "", "", "it", false, testNow, testNow}
}

func passengerRows(id, userID string, seats int, distance float64, matched bool) *sqlmock.Rows {
	cols := append([]string{"id", "user_id", "origin", "origin_latitude", "origin_longitude", "destination",
		"destination_latitude", "destination_longitude", "distance", "seats", "pickup_time", "matched", "active",
		"created_at", "updated_at"}, userCols...)
	vals := append([]driver.Value{id, userID, "Porta Nuova", 45.48, 9.2, "Linate", 45.45, 9.27,
		distance, seats, nil, matched, true, testNow, testNow}, userVals(userID, "Paola")...)
	return sqlmock.NewRows(cols).AddRow(vals...)
}

func driverRows(id, userID string) *sqlmock.Rows {
	cols := append([]string{"id", "user_id", "car_make", "car_model", "car_color", "license_plate", "telephone",
		"hidden", "active", "created_at", "updated_at"}, userCols...)
	vals := append([]driver.Value{id, userID, "Fiat", "Panda", "red", "AB123CD", "", false, true, testNow, testNow},
		userVals(userID, "Dario")...)
	return sqlmock.NewRows(cols).AddRow(vals...)
}

var driveRequestCols = []string{"id", "driver_id", "passenger_id", "accepted", "cancelled", "active",
	"offered_pickup_time", "created_at", "updated_at"}

func driveRequestRows(id, driverID, passengerID string, accepted, cancelled, active bool) *sqlmock.Rows {
	return sqlmock.NewRows(driveRequestCols).
		AddRow(id, driverID, passengerID, accepted, cancelled, active, nil, testNow.Add(-time.Hour), testNow.Add(-time.Hour))
}

var grantCols = []string{"id", "user_id", "perk_id", "valid_until", "deleted", "created_at",
	"pk_id", "name", "eligible_for", "active_for", "fixed_rate", "multiplier", "pk_deleted", "pk_created"}

func grantRow(rows *sqlmock.Rows, id, userID, perkID, name, fixed, multiplier string, activeFor int) *sqlmock.Rows {
	return rows.AddRow(id, userID, perkID, testNow.AddDate(0, 0, 10), false, testNow.AddDate(0, 0, -1),
		perkID, name, 30, activeFor, fixed, multiplier, false, testNow.AddDate(0, -1, 0))
}

var perkCols = []string{"id", "name", "eligible_for", "active_for", "fixed_rate", "multiplier", "deleted", "created_at"}

var bucketCols = []string{"promo", "income", "outcome", "redeemed", "active_for"}

// fakeCounters is an in memory CounterStore.
type fakeCounters struct {
	values map[string]int64
}

func newFakeCounters() *fakeCounters { return &fakeCounters{values: map[string]int64{}} }

func (f *fakeCounters) Incr(_ context.Context, key string) (int64, error) {
	f.values[key]++
	return f.values[key], nil
}

func (f *fakeCounters) Get(_ context.Context, key string) (int64, error) {
	return f.values[key], nil
}

func (f *fakeCounters) Reset(_ context.Context, key string) error {
	f.values[key] = 0
	return nil
}
