package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(fastConfig())

	errFlaky := errors.New("flaky")
	attempts := 0
	err := exec.Execute(context.Background(), "inference.extract", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errFlaky
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errFlaky), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteStopsOnPermanentError(t *testing.T) {
	exec := NewExecutor(fastConfig())

	errBadRequest := errors.New("bad request")
	attempts := 0
	err := exec.Execute(context.Background(), "inference.extract", func(context.Context) error {
		attempts++
		return errBadRequest
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errBadRequest) {
		t.Fatalf("Execute() error = %v, want %v", err, errBadRequest)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestExecuteReturnsLastErrorWhenContextCancelledDuringBackoff(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryInitialBackoff = 200 * time.Millisecond
	cfg.RetryMaxBackoff = 200 * time.Millisecond
	exec := NewExecutor(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errFlaky := errors.New("flaky")
	attempts := 0
	err := exec.Execute(ctx, "inference.extract", func(context.Context) error {
		attempts++
		cancel()
		return errFlaky
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: true, RecordFailure: true}
	})
	if !errors.Is(err, errFlaky) {
		t.Fatalf("Execute() error = %v, want last call error", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestExecuteOpensCircuitAfterRecordedFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("service down")
	recordAll := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "inference.extract", func(context.Context) error {
			return errDown
		}, recordAll)
		if !errors.Is(err, errDown) {
			t.Fatalf("iteration %d: error = %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "inference.extract", func(context.Context) error {
		t.Fatalf("open circuit must not invoke the operation")
		return nil
	}, recordAll)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected gobreaker open state, got %v", err)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      time.Minute,
		BreakerHalfOpenMaxCalls: 1,
	})

	errDown := errors.New("service down")
	recordAll := func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		_ = exec.Execute(context.Background(), "inference.extract", func(context.Context) error {
			return errDown
		}, recordAll)
	}

	// A different operation keeps its own breaker and stays closed.
	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		return nil
	}, recordAll)
	if err != nil {
		t.Fatalf("Execute() on healthy operation error = %v", err)
	}
}
