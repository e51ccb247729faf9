package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	intconfig "strappon/internal/config"
	intdb "strappon/internal/db"
	"strappon/internal/domain"
	"strappon/internal/domain/models"
)

var errNoDB = errors.New("db not connected")

// querier picks the transaction when one is bound, then the repository DB,
// then the shared connection.
func querier(db *sql.DB, tx *sql.Tx) (intdb.Querier, error) {
	switch {
	case tx != nil:
		return tx, nil
	case db != nil:
		return db, nil
	case intconfig.DB != nil:
		return intconfig.DB, nil
	}
	return nil, errNoDB
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return fmt.Errorf("load %s: %w", resource, err)
}

func mustAffect(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", resource, err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// duplicateConflict returns a ConflictError when err is a unique key
// violation, nil otherwise.
func duplicateConflict(err error, resource, msg string) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return domain.ConflictError{Resource: resource, Msg: msg, Err: err}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const userColumns = `u.id, COALESCE(u.acs_id,''), COALESCE(u.facebook_id,''), u.name,
	COALESCE(u.avatar,''), COALESCE(u.email,''), u.locale, u.deleted, u.created_at, u.updated_at`

func userDest(u *models.User) []any {
	return []any{&u.ID, &u.AcsID, &u.FacebookID, &u.Name, &u.Avatar, &u.Email, &u.Locale, &u.Deleted, &u.CreatedAt, &u.UpdatedAt}
}
