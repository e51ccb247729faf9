package services

import (
	"database/sql"
	"errors"
	"time"

	intconfig "strappon/internal/config"
	"strappon/internal/domain"
)

var errNoDB = errors.New("db not connected")

func nowOf(c domain.Clock) time.Time {
	if c == nil {
		return domain.UTCNow()
	}
	return c().UTC()
}

// txDB returns the connection transactions are opened on.
func txDB(db *sql.DB) (*sql.DB, error) {
	if db != nil {
		return db, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, errNoDB
}
