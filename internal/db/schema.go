package db

import (
	"context"
	"fmt"
	"strings"
)

const tableOptions = `ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

var perkDDL = `(
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	eligible_for INT NOT NULL,
	active_for INT NOT NULL,
	fixed_rate DECIMAL(10,4) NOT NULL,
	multiplier DECIMAL(10,4) NOT NULL,
	deleted TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_name (name)
)`

var grantDDL = `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	perk_id CHAR(36) NOT NULL,
	valid_until DATETIME NOT NULL,
	deleted TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_user_perk (user_id, perk_id)
)`

// Schema lists the tables in creation order.
var Schema = []struct {
	Table string
	DDL   string
}{
	{"users", `(
	id CHAR(36) PRIMARY KEY,
	acs_id VARCHAR(100) NULL,
	facebook_id VARCHAR(100) NULL,
	name VARCHAR(255) NOT NULL,
	avatar VARCHAR(1024) NULL,
	email VARCHAR(255) NULL,
	locale VARCHAR(10) NOT NULL,
	deleted TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_facebook (facebook_id),
	KEY idx_acs (acs_id)
)`},
	{"tokens", `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_user (user_id)
)`},
	{"drivers", `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	car_make VARCHAR(100) NULL,
	car_model VARCHAR(100) NULL,
	car_color VARCHAR(50) NULL,
	license_plate VARCHAR(20) NULL,
	telephone VARCHAR(50) NULL,
	hidden TINYINT(1) NOT NULL DEFAULT 0,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_user (user_id)
)`},
	{"passengers", `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	origin TEXT NULL,
	origin_latitude DOUBLE NULL,
	origin_longitude DOUBLE NULL,
	destination TEXT NULL,
	destination_latitude DOUBLE NULL,
	destination_longitude DOUBLE NULL,
	distance DOUBLE NOT NULL DEFAULT 0,
	seats INT NOT NULL DEFAULT 1,
	pickup_time DATETIME NULL,
	matched TINYINT(1) NOT NULL DEFAULT 0,
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_user (user_id)
)`},
	{"drive_requests", `(
	id CHAR(36) PRIMARY KEY,
	driver_id CHAR(36) NOT NULL,
	passenger_id CHAR(36) NOT NULL,
	accepted TINYINT(1) NOT NULL DEFAULT 0,
	cancelled TINYINT(1) NOT NULL DEFAULT 0,
	active TINYINT(1) NOT NULL DEFAULT 1,
	offered_pickup_time DATETIME NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_driver (driver_id),
	KEY idx_passenger (passenger_id)
)`},
	{"rates", `(
	id CHAR(36) PRIMARY KEY,
	drive_request_id CHAR(36) NOT NULL,
	rater_user_id CHAR(36) NOT NULL,
	rated_user_id CHAR(36) NOT NULL,
	rater_is_driver TINYINT(1) NOT NULL,
	stars INT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_request_rater (drive_request_id, rater_user_id),
	KEY idx_rated (rated_user_id)
)`},
	{"driver_perks", perkDDL},
	{"eligible_driver_perks", grantDDL},
	{"active_driver_perks", grantDDL},
	{"passenger_perks", perkDDL},
	{"eligible_passenger_perks", grantDDL},
	{"active_passenger_perks", grantDDL},
	{"promo_codes", `(
	id CHAR(36) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	eligible_till DATETIME NOT NULL,
	active_for INT NOT NULL,
	credits BIGINT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_name (name)
)`},
	{"user_promo_codes", `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	promo_code_id CHAR(36) NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_user_promo (user_id, promo_code_id)
)`},
	{"payments", `(
	id CHAR(36) PRIMARY KEY,
	drive_request_id CHAR(36) NULL,
	payer_user_id CHAR(36) NULL,
	payee_user_id CHAR(36) NULL,
	promo_code_id CHAR(36) NULL,
	credits BIGINT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_payer (payer_user_id),
	KEY idx_payee (payee_user_id),
	KEY idx_request (drive_request_id)
)`},
	{"user_positions", `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	region VARCHAR(100) NULL,
	latitude DOUBLE NOT NULL,
	longitude DOUBLE NOT NULL,
	archived TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	KEY idx_user (user_id)
)`},
	{"traces", `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	app_version VARCHAR(50) NULL,
	level VARCHAR(20) NULL,
	date VARCHAR(50) NULL,
	message TEXT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
	{"feedbacks", `(
	id CHAR(36) PRIMARY KEY,
	user_id CHAR(36) NOT NULL,
	message TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`},
}

// EnsureSchema creates the missing tables. Existing tables are left alone.
func EnsureSchema(ctx context.Context, q Querier) ([]string, error) {
	created := []string{}
	for _, t := range Schema {
		if HasTable(ctx, q, t.Table) {
			continue
		}
		ddl := "CREATE TABLE IF NOT EXISTS " + t.Table + " " + strings.TrimSpace(t.DDL) + " " + tableOptions
		if _, err := q.ExecContext(ctx, ddl); err != nil {
			return created, fmt.Errorf("create table %s: %w", t.Table, err)
		}
		created = append(created, t.Table)
	}
	return created, nil
}
