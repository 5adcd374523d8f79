package driven

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/alorle/profile-cache/internal/audit"
	"github.com/alorle/profile-cache/internal/codec"
)

const createUsersAuditSQL = `
CREATE TABLE IF NOT EXISTS users_audit (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    external_id INTEGER NOT NULL UNIQUE,
    payload     TEXT    NOT NULL
);`

// AuditSQLiteRepository implements the AuditRepository port using SQLite
// (modernc.org/sqlite, no cgo). The UNIQUE constraint on external_id makes
// the at-most-one-record-per-external-id invariant an enforced property of
// the schema rather than an assumption of the query shape.
type AuditSQLiteRepository struct {
	db    *sql.DB
	codec codec.ProfileCodec
}

// NewAuditSQLiteRepository creates a new SQLite-backed audit repository and
// ensures the users_audit table exists.
func NewAuditSQLiteRepository(db *sql.DB, pc codec.ProfileCodec) (*AuditSQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	if _, err := db.Exec(createUsersAuditSQL); err != nil {
		return nil, fmt.Errorf("ensure users_audit table: %w", err)
	}

	return &AuditSQLiteRepository{db: db, codec: pc}, nil
}

// SQLiteDSN builds the connection string for the given database path.
func SQLiteDSN(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// Save inserts a record and returns it with the internal id assigned by
// SQLite. Returns audit.ErrRecordAlreadyExists on an external-id conflict.
func (r *AuditSQLiteRepository) Save(ctx context.Context, rec audit.Record) (audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return audit.Record{}, err
	}
	if rec.Persisted() {
		return audit.Record{}, errors.New("audit records are insert-only")
	}

	payload, err := r.codec.Encode(rec.Profile)
	if err != nil {
		return audit.Record{}, err
	}

	res, err := r.db.ExecContext(
		ctx,
		`INSERT INTO users_audit (external_id, payload) VALUES (?, ?)`,
		rec.ExternalID,
		string(payload),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return audit.Record{}, audit.ErrRecordAlreadyExists
		}
		return audit.Record{}, fmt.Errorf("insert audit record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return audit.Record{}, fmt.Errorf("read inserted record id: %w", err)
	}

	rec.ID = id
	return rec, nil
}

func (r *AuditSQLiteRepository) scanRecord(row *sql.Row) (audit.Record, error) {
	var rec audit.Record
	var payload string

	if err := row.Scan(&rec.ID, &rec.ExternalID, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return audit.Record{}, audit.ErrRecordNotFound
		}
		return audit.Record{}, fmt.Errorf("scan audit record: %w", err)
	}

	p, err := r.codec.Decode([]byte(payload))
	if err != nil {
		return audit.Record{}, err
	}
	rec.Profile = p

	return rec, nil
}

// FindByExternalID retrieves the record cached under the given external id.
func (r *AuditSQLiteRepository) FindByExternalID(ctx context.Context, externalID int64) (audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return audit.Record{}, err
	}

	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, external_id, payload FROM users_audit WHERE external_id = ?`,
		externalID,
	)
	return r.scanRecord(row)
}

// FindByID retrieves a record by its internal identifier.
func (r *AuditSQLiteRepository) FindByID(ctx context.Context, id int64) (audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return audit.Record{}, err
	}

	row := r.db.QueryRowContext(
		ctx,
		`SELECT id, external_id, payload FROM users_audit WHERE id = ?`,
		id,
	)
	return r.scanRecord(row)
}

// FindAll retrieves all audit records.
func (r *AuditSQLiteRepository) FindAll(ctx context.Context) ([]audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, external_id, payload FROM users_audit`)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	records := []audit.Record{}
	for rows.Next() {
		var rec audit.Record
		var payload string
		if err := rows.Scan(&rec.ID, &rec.ExternalID, &payload); err != nil {
			return nil, fmt.Errorf("list audit records: %w", err)
		}

		p, err := r.codec.Decode([]byte(payload))
		if err != nil {
			return nil, err
		}
		rec.Profile = p

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}

	return records, nil
}

// Ping checks if the SQLite database is accessible and operational.
func (r *AuditSQLiteRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.PingContext(ctx)
}
