package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alorle/profile-cache/internal/audit"
	"github.com/alorle/profile-cache/internal/port/driven"
	"github.com/alorle/profile-cache/internal/profile"
	"github.com/alorle/profile-cache/metrics"
)

// LookupService implements the read-through cache protocol: serve a profile
// from the audit store when cached, otherwise fetch it from the upstream
// directory, persist it, and return it. Entries live forever once written;
// there is no TTL, eviction or update path.
type LookupService struct {
	auditRepo driven.AuditRepository
	fetcher   driven.ProfileFetcher
	logger    *slog.Logger

	// group deduplicates concurrent misses for the same key so at most one
	// fetch+write is in flight per external id.
	group singleflight.Group
}

// NewLookupService creates a new LookupService.
func NewLookupService(auditRepo driven.AuditRepository, fetcher driven.ProfileFetcher, logger *slog.Logger) *LookupService {
	return &LookupService{
		auditRepo: auditRepo,
		fetcher:   fetcher,
		logger:    logger,
	}
}

// Lookup returns the profile for the given external identifier.
//
// The hit path performs a single storage read and no network I/O. On a miss
// the upstream fetch and the subsequent write happen inside a per-key
// singleflight group, so concurrent lookups for the same uncached id join
// one in-flight fetch instead of issuing duplicates. A failed upstream
// fetch is translated into *profile.NotFoundError carrying the upstream
// message; storage failures propagate untranslated.
func (s *LookupService) Lookup(ctx context.Context, id string) (profile.Profile, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveLookup(time.Since(start))
	}()

	externalID, err := audit.ParseExternalID(id)
	if err != nil {
		return profile.Profile{}, err
	}

	rec, err := s.auditRepo.FindByExternalID(ctx, externalID)
	if err == nil {
		metrics.RecordCacheHit()
		s.logger.Debug("lookup served from audit store", "external_id", externalID, "record_id", rec.ID)
		return rec.Profile, nil
	}
	if !errors.Is(err, audit.ErrRecordNotFound) {
		return profile.Profile{}, err
	}

	metrics.RecordCacheMiss()

	// Joined callers share the leader's fetch and its result.
	v, err, _ := s.group.Do(id, func() (any, error) {
		return s.fetchAndStore(ctx, id, externalID)
	})
	if err != nil {
		return profile.Profile{}, err
	}

	return v.(profile.Profile), nil
}

func (s *LookupService) fetchAndStore(ctx context.Context, id string, externalID int64) (profile.Profile, error) {
	p, err := s.fetcher.Fetch(ctx, id)
	if err != nil {
		metrics.RecordUpstreamError()
		s.logger.Warn("upstream fetch failed", "external_id", externalID, "error", err)
		return profile.Profile{}, &profile.NotFoundError{Message: upstreamMessage(err)}
	}

	rec, err := audit.NewRecord(externalID, p)
	if err != nil {
		return profile.Profile{}, err
	}

	saved, err := s.auditRepo.Save(ctx, rec)
	if err != nil {
		if errors.Is(err, audit.ErrRecordAlreadyExists) {
			// A concurrent lookup won the insert; its record is the truth.
			existing, findErr := s.auditRepo.FindByExternalID(ctx, externalID)
			if findErr != nil {
				return profile.Profile{}, findErr
			}
			s.logger.Debug("lost insert race, serving existing record", "external_id", externalID, "record_id", existing.ID)
			return existing.Profile, nil
		}
		return profile.Profile{}, err
	}

	metrics.RecordWrite()
	s.logger.Info("cached profile from upstream", "external_id", externalID, "record_id", saved.ID, "username", saved.Profile.Username)

	return saved.Profile, nil
}

// upstreamMessage extracts the message to surface for a failed fetch.
func upstreamMessage(err error) string {
	var upstreamErr *driven.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Message
	}
	return err.Error()
}
