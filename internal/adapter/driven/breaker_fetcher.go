package driven

import (
	"context"

	"github.com/alorle/profile-cache/circuitbreaker"
	"github.com/alorle/profile-cache/internal/port/driven"
	"github.com/alorle/profile-cache/internal/profile"
)

// BreakerFetcher decorates a ProfileFetcher with a circuit breaker so a
// persistently failing upstream is short-circuited instead of hammered.
// It performs no retries; an open circuit surfaces as an UpstreamError like
// any other fetch failure.
type BreakerFetcher struct {
	next    driven.ProfileFetcher
	breaker circuitbreaker.CircuitBreaker
}

// NewBreakerFetcher wraps next with the given circuit breaker.
func NewBreakerFetcher(next driven.ProfileFetcher, cb circuitbreaker.CircuitBreaker) *BreakerFetcher {
	return &BreakerFetcher{
		next:    next,
		breaker: cb,
	}
}

// Fetch retrieves the profile through the circuit breaker.
func (f *BreakerFetcher) Fetch(ctx context.Context, id string) (profile.Profile, error) {
	var p profile.Profile

	err := f.breaker.Execute(func() error {
		var fetchErr error
		p, fetchErr = f.next.Fetch(ctx, id)
		return fetchErr
	})
	if err != nil {
		if _, ok := err.(*driven.UpstreamError); ok {
			return profile.Profile{}, err
		}
		// Breaker rejections still cross the port as upstream failures.
		return profile.Profile{}, &driven.UpstreamError{Message: err.Error()}
	}

	return p, nil
}
