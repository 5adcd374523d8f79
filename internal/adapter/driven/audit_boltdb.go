package driven

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/alorle/profile-cache/internal/audit"
	"github.com/alorle/profile-cache/internal/codec"
)

const (
	auditRecordsBucket = "audit_records"
	// auditByIDBucket maps internal record ids back to external ids so the
	// administrative detail path can look records up by internal id.
	auditByIDBucket = "audit_records_by_id"
)

// AuditBoltDBRepository implements the AuditRepository port using BoltDB.
// Records are keyed by external id, which makes the at-most-one-record-per-
// external-id invariant structural: a second insert for the same key is
// rejected, never silently overwritten.
type AuditBoltDBRepository struct {
	db    *bbolt.DB
	codec codec.ProfileCodec
}

// NewAuditBoltDBRepository creates a new BoltDB-backed audit repository.
// It initializes the required buckets if they don't exist.
func NewAuditBoltDBRepository(db *bbolt.DB, pc codec.ProfileCodec) (*AuditBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(auditRecordsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(auditByIDBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &AuditBoltDBRepository{db: db, codec: pc}, nil
}

// auditRecordDTO is used for JSON serialization of a stored record. The
// profile payload is kept as codec output so the store itself never needs
// to understand the domain schema.
type auditRecordDTO struct {
	ID         int64           `json:"id"`
	ExternalID int64           `json:"external_id"`
	Payload    json.RawMessage `json:"payload"`
}

func externalIDKey(externalID int64) []byte {
	return []byte(strconv.FormatInt(externalID, 10))
}

func internalIDKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func (r *AuditBoltDBRepository) recordToDTO(rec audit.Record) (auditRecordDTO, error) {
	payload, err := r.codec.Encode(rec.Profile)
	if err != nil {
		return auditRecordDTO{}, err
	}
	return auditRecordDTO{
		ID:         rec.ID,
		ExternalID: rec.ExternalID,
		Payload:    payload,
	}, nil
}

func (r *AuditBoltDBRepository) dtoToRecord(dto auditRecordDTO) (audit.Record, error) {
	p, err := r.codec.Decode(dto.Payload)
	if err != nil {
		return audit.Record{}, err
	}
	return audit.Record{
		ID:         dto.ID,
		ExternalID: dto.ExternalID,
		Profile:    p,
	}, nil
}

// Save inserts a record, assigning its internal id from the bucket sequence.
// Returns audit.ErrRecordAlreadyExists if the external id is already cached.
func (r *AuditBoltDBRepository) Save(ctx context.Context, rec audit.Record) (audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return audit.Record{}, err
	}
	if rec.Persisted() {
		return audit.Record{}, errors.New("audit records are insert-only")
	}

	saved := rec

	err := r.db.Update(func(tx *bbolt.Tx) error {
		records := tx.Bucket([]byte(auditRecordsBucket))
		byID := tx.Bucket([]byte(auditByIDBucket))
		if records == nil || byID == nil {
			return errors.New("audit buckets not found")
		}

		key := externalIDKey(rec.ExternalID)
		if records.Get(key) != nil {
			return audit.ErrRecordAlreadyExists
		}

		seq, err := records.NextSequence()
		if err != nil {
			return err
		}
		saved.ID = int64(seq)

		dto, err := r.recordToDTO(saved)
		if err != nil {
			return err
		}
		data, err := json.Marshal(dto)
		if err != nil {
			return err
		}

		if err := records.Put(key, data); err != nil {
			return err
		}
		return byID.Put(internalIDKey(saved.ID), key)
	})
	if err != nil {
		return audit.Record{}, err
	}

	return saved, nil
}

// FindByExternalID retrieves the record cached under the given external id.
func (r *AuditBoltDBRepository) FindByExternalID(ctx context.Context, externalID int64) (audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return audit.Record{}, err
	}

	var rec audit.Record

	err := r.db.View(func(tx *bbolt.Tx) error {
		records := tx.Bucket([]byte(auditRecordsBucket))
		if records == nil {
			return errors.New("audit buckets not found")
		}

		data := records.Get(externalIDKey(externalID))
		if data == nil {
			return audit.ErrRecordNotFound
		}

		var dto auditRecordDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}

		decoded, err := r.dtoToRecord(dto)
		if err != nil {
			return err
		}

		rec = decoded
		return nil
	})

	return rec, err
}

// FindByID retrieves a record by its internal identifier.
func (r *AuditBoltDBRepository) FindByID(ctx context.Context, id int64) (audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return audit.Record{}, err
	}

	var rec audit.Record

	err := r.db.View(func(tx *bbolt.Tx) error {
		records := tx.Bucket([]byte(auditRecordsBucket))
		byID := tx.Bucket([]byte(auditByIDBucket))
		if records == nil || byID == nil {
			return errors.New("audit buckets not found")
		}

		key := byID.Get(internalIDKey(id))
		if key == nil {
			return audit.ErrRecordNotFound
		}

		data := records.Get(key)
		if data == nil {
			return audit.ErrRecordNotFound
		}

		var dto auditRecordDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}

		decoded, err := r.dtoToRecord(dto)
		if err != nil {
			return err
		}

		rec = decoded
		return nil
	})

	return rec, err
}

// FindAll retrieves all audit records.
func (r *AuditBoltDBRepository) FindAll(ctx context.Context) ([]audit.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []audit.Record

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(auditRecordsBucket))
		if bucket == nil {
			return errors.New("audit buckets not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var dto auditRecordDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}

			rec, err := r.dtoToRecord(dto)
			if err != nil {
				return err
			}

			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []audit.Record{}
	}

	return records, nil
}

// Ping checks if the BoltDB database is accessible and operational.
func (r *AuditBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(auditRecordsBucket)) == nil {
			return errors.New("audit buckets not found")
		}
		return nil
	})
}
