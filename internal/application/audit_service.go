package application

import (
	"context"

	"github.com/alorle/profile-cache/internal/audit"
	"github.com/alorle/profile-cache/internal/port/driven"
)

// AuditService provides the administrative read paths over the audit store.
// It bypasses the read-through protocol entirely: listing and detail reads
// never trigger an upstream fetch.
type AuditService struct {
	auditRepo driven.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo driven.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// ListRecords retrieves all audit records.
func (s *AuditService) ListRecords(ctx context.Context) ([]audit.Record, error) {
	return s.auditRepo.FindAll(ctx)
}

// GetRecord retrieves one audit record by its internal identifier.
// Returns audit.ErrRecordNotFound if the record does not exist.
func (s *AuditService) GetRecord(ctx context.Context, id int64) (audit.Record, error) {
	return s.auditRepo.FindByID(ctx, id)
}
