package driven

import (
	port "github.com/alorle/profile-cache/internal/port/driven"
)

// Compile-time check that both stores implement the AuditRepository interface
var _ port.AuditRepository = (*AuditBoltDBRepository)(nil)
var _ port.AuditRepository = (*AuditSQLiteRepository)(nil)

// Compile-time check that both fetchers implement the ProfileFetcher interface
var _ port.ProfileFetcher = (*ProfileHTTPFetcher)(nil)
var _ port.ProfileFetcher = (*BreakerFetcher)(nil)
