package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errTestFailure = errors.New("test failure")

// TestNew verifies circuit breaker creation with valid and default configs
func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		config         Config
		expectedConfig Config
	}{
		{
			name: "valid config",
			config: Config{
				FailureThreshold: 3,
				Timeout:          10 * time.Second,
				HalfOpenRequests: 2,
			},
			expectedConfig: Config{
				FailureThreshold: 3,
				Timeout:          10 * time.Second,
				HalfOpenRequests: 2,
			},
		},
		{
			name:   "zero values use defaults",
			config: Config{},
			expectedConfig: Config{
				FailureThreshold: 5,
				Timeout:          30 * time.Second,
				HalfOpenRequests: 1,
			},
		},
		{
			name: "partial defaults",
			config: Config{
				FailureThreshold: 10,
			},
			expectedConfig: Config{
				FailureThreshold: 10,
				Timeout:          30 * time.Second,
				HalfOpenRequests: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := New(tt.config)
			if cb.State() != StateClosed {
				t.Errorf("expected state CLOSED, got %s", cb.State())
			}

			// Verify internal config (cast to concrete type)
			br := cb.(*breaker)
			if br.config.FailureThreshold != tt.expectedConfig.FailureThreshold {
				t.Errorf("expected FailureThreshold %d, got %d",
					tt.expectedConfig.FailureThreshold, br.config.FailureThreshold)
			}
			if br.config.Timeout != tt.expectedConfig.Timeout {
				t.Errorf("expected Timeout %v, got %v",
					tt.expectedConfig.Timeout, br.config.Timeout)
			}
			if br.config.HalfOpenRequests != tt.expectedConfig.HalfOpenRequests {
				t.Errorf("expected HalfOpenRequests %d, got %d",
					tt.expectedConfig.HalfOpenRequests, br.config.HalfOpenRequests)
			}
		})
	}
}

// TestStateString verifies string representation of states
func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF-OPEN"},
		{State(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

// TestClosedToOpen verifies transition from CLOSED to OPEN after threshold failures
func TestClosedToOpen(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 3,
		Timeout:          100 * time.Millisecond,
		HalfOpenRequests: 1,
	})

	for i := 1; i <= 2; i++ {
		err := cb.Execute(func() error { return errTestFailure })
		if err != errTestFailure {
			t.Errorf("expected test failure error, got %v", err)
		}
		if cb.State() != StateClosed {
			t.Errorf("expected state CLOSED after %d failures, got %s", i, cb.State())
		}
	}

	// Third failure - should transition to OPEN
	err := cb.Execute(func() error { return errTestFailure })
	if err != errTestFailure {
		t.Errorf("expected test failure error, got %v", err)
	}
	if cb.State() != StateOpen {
		t.Errorf("expected state OPEN after 3 failures, got %s", cb.State())
	}
}

// TestOpenBlocksRequests verifies that OPEN state blocks all requests
func TestOpenBlocksRequests(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          1 * time.Second,
		HalfOpenRequests: 1,
	})

	_ = cb.Execute(func() error { return errTestFailure })

	if cb.State() != StateOpen {
		t.Fatalf("expected state OPEN, got %s", cb.State())
	}

	err := cb.Execute(func() error {
		t.Error("function should not be called when circuit is OPEN")
		return nil
	})

	if err != ErrCircuitOpen {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

// TestOpenToHalfOpenToClosed verifies recovery through HALF-OPEN after timeout
func TestOpenToHalfOpenToClosed(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          50 * time.Millisecond,
		HalfOpenRequests: 2,
	})

	// Transition to OPEN
	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateOpen {
		t.Fatalf("expected state OPEN, got %s", cb.State())
	}

	// Wait for timeout
	time.Sleep(100 * time.Millisecond)

	// First half-open request - success
	err := cb.Execute(func() error { return nil })
	if err != nil {
		t.Errorf("expected no error on first half-open request, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Errorf("expected state HALF-OPEN after first success, got %s", cb.State())
	}

	// Second half-open request - success -> should transition to CLOSED
	err = cb.Execute(func() error { return nil })
	if err != nil {
		t.Errorf("expected no error on second half-open request, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("expected state CLOSED after all half-open successes, got %s", cb.State())
	}
}

// TestHalfOpenFailureToOpen verifies failed HALF-OPEN transitions back to OPEN
func TestHalfOpenFailureToOpen(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          50 * time.Millisecond,
		HalfOpenRequests: 2,
	})

	_ = cb.Execute(func() error { return errTestFailure })

	time.Sleep(100 * time.Millisecond)

	err := cb.Execute(func() error { return errTestFailure })
	if err != errTestFailure {
		t.Errorf("expected test failure error, got %v", err)
	}
	if cb.State() != StateOpen {
		t.Errorf("expected state OPEN after half-open failure, got %s", cb.State())
	}
}

// TestClosedSuccessResetsFailureCount verifies failure count reset on success
func TestClosedSuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 3,
		Timeout:          100 * time.Millisecond,
		HalfOpenRequests: 1,
	})

	_ = cb.Execute(func() error { return errTestFailure })
	_ = cb.Execute(func() error { return errTestFailure })

	// Success should reset failure count
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("expected no error on success, got %v", err)
	}

	// Two more failures should not open the circuit
	_ = cb.Execute(func() error { return errTestFailure })
	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateClosed {
		t.Errorf("expected state still CLOSED after 2 more failures, got %s", cb.State())
	}

	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateOpen {
		t.Errorf("expected state OPEN after 3 failures, got %s", cb.State())
	}
}

// TestReset verifies Reset() returns circuit to CLOSED state
func TestReset(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          1 * time.Second,
		HalfOpenRequests: 1,
	})

	_ = cb.Execute(func() error { return errTestFailure })
	if cb.State() != StateOpen {
		t.Fatalf("expected state OPEN, got %s", cb.State())
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("expected state CLOSED after reset, got %s", cb.State())
	}

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("expected no error after reset, got %v", err)
	}
}

// TestOnStateChange verifies the transition callback fires for every change
func TestOnStateChange(t *testing.T) {
	type transition struct {
		from State
		to   State
	}

	var transitions []transition

	cb := New(Config{
		FailureThreshold: 1,
		Timeout:          50 * time.Millisecond,
		HalfOpenRequests: 1,
		OnStateChange: func(oldState, newState State) {
			transitions = append(transitions, transition{from: oldState, to: newState})
		},
	})

	// CLOSED -> OPEN
	_ = cb.Execute(func() error { return errTestFailure })

	// OPEN -> HALF-OPEN -> CLOSED
	time.Sleep(100 * time.Millisecond)
	_ = cb.Execute(func() error { return nil })

	expected := []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}

	if len(transitions) != len(expected) {
		t.Fatalf("expected %d transitions, got %d: %v", len(expected), len(transitions), transitions)
	}
	for i, want := range expected {
		if transitions[i] != want {
			t.Errorf("transition %d: expected %s->%s, got %s->%s",
				i, want.from, want.to, transitions[i].from, transitions[i].to)
		}
	}
}

// TestConcurrentAccess verifies thread-safety of circuit breaker
func TestConcurrentAccess(t *testing.T) {
	cb := New(Config{
		FailureThreshold: 5,
		Timeout:          50 * time.Millisecond,
		HalfOpenRequests: 2,
	})

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_ = cb.Execute(func() error {
					if j%3 == 0 {
						return errTestFailure
					}
					return nil
				})
				time.Sleep(1 * time.Millisecond)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	_ = cb.State()
}
