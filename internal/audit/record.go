// Package audit holds the persisted cache entry domain: an audit record
// wraps a fetched profile under the external identifier used as cache key.
package audit

import (
	"errors"
	"strconv"

	"github.com/alorle/profile-cache/internal/profile"
)

// Domain errors
var (
	ErrRecordNotFound      = errors.New("audit record not found")
	ErrRecordAlreadyExists = errors.New("audit record already exists")
	ErrInvalidExternalID   = errors.New("external id must be a positive integer")
	ErrEmptyProfile        = errors.New("audit record requires a populated profile")
)

// Record is one persisted cache entry. ID is the storage-assigned internal
// identifier and stays zero until the record has been saved. ExternalID is
// the upstream-assigned identifier used as the cache key. Once persisted the
// ExternalID-to-Profile mapping is never updated or deleted.
type Record struct {
	ID         int64
	ExternalID int64
	Profile    profile.Profile
}

// NewRecord creates an unpersisted record for the given external identifier.
// A record can only be constructed around a populated profile, so an
// "absent" payload is unrepresentable and can never reach storage.
func NewRecord(externalID int64, p profile.Profile) (Record, error) {
	if externalID <= 0 {
		return Record{}, ErrInvalidExternalID
	}
	if p.IsZero() {
		return Record{}, ErrEmptyProfile
	}
	return Record{ExternalID: externalID, Profile: p}, nil
}

// Persisted reports whether the record has been assigned an internal id.
func (r Record) Persisted() bool {
	return r.ID != 0
}

// ParseExternalID converts a caller-supplied identifier into the numeric
// external id used as storage key. Returns ErrInvalidExternalID for anything
// that is not a positive integer.
func ParseExternalID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidExternalID
	}
	return n, nil
}
