package driven

import (
	"context"

	"github.com/alorle/profile-cache/internal/profile"
)

// UpstreamError reports a failure retrieving a profile from the remote user
// directory: connection failure, non-2xx response or a malformed body. The
// message is preserved so the orchestrator can carry it across the boundary.
type UpstreamError struct {
	Message string
}

// Error returns the upstream failure message.
func (e *UpstreamError) Error() string {
	return e.Message
}

// ProfileFetcher defines the interface for retrieving profiles from the
// upstream user directory. This is a driven port implemented by concrete
// adapters (e.g. the HTTP client).
type ProfileFetcher interface {
	// Fetch retrieves the profile identified by id from the upstream source.
	// It performs no retries; failures are returned as *UpstreamError.
	Fetch(ctx context.Context, id string) (profile.Profile, error)
}
