package driven

import (
	"context"

	"github.com/alorle/profile-cache/internal/audit"
)

// AuditRepository defines the interface for audit record persistence.
// This is a driven port implemented by concrete adapters (BoltDB, SQLite).
//
// Every implementation enforces uniqueness of the external id: at most one
// record exists per external identifier, and a conflicting insert reports
// audit.ErrRecordAlreadyExists so callers can re-read the winning record.
type AuditRepository interface {
	// FindByExternalID retrieves the record cached under the given external
	// identifier. Returns audit.ErrRecordNotFound if no record exists.
	FindByExternalID(ctx context.Context, externalID int64) (audit.Record, error)

	// Save inserts an unpersisted record and returns it with the internal id
	// assigned by storage. Records are insert-only: this system never
	// supplies an internal id on write, so a save is never an update.
	// Returns audit.ErrRecordAlreadyExists if the external id is taken.
	Save(ctx context.Context, rec audit.Record) (audit.Record, error)

	// FindAll retrieves all records in no particular order.
	FindAll(ctx context.Context) ([]audit.Record, error)

	// FindByID retrieves a record by its internal identifier. Returns
	// audit.ErrRecordNotFound if the record does not exist.
	FindByID(ctx context.Context, id int64) (audit.Record, error)

	// Ping checks if the repository (database) is accessible and operational.
	Ping(ctx context.Context) error
}
