package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
	}
}

func retryableClassifier(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func permanentClassifier(error) ErrorClassification {
	return ErrorClassification{Retryable: false, RecordFailure: true}
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryableClassifier)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteStopsAtMaxAttempts(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	boom := errors.New("still broken")
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return boom
	}, retryableClassifier)

	if !errors.Is(err, boom) {
		t.Fatalf("expected final error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecuteDoesNotRetryPermanentErrors(t *testing.T) {
	executor := NewExecutor(fastConfig())

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errors.New("bad request")
	}, permanentClassifier)

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestExecuteRespectsCanceledContext(t *testing.T) {
	executor := NewExecutor(fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := executor.Execute(ctx, "op", func(context.Context) error {
		calls++
		return nil
	}, retryableClassifier)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no attempts, got %d", calls)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	executor := NewExecutor(cfg)

	boom := errors.New("backend down")
	for i := 0; i < 3; i++ {
		_ = executor.Execute(context.Background(), "op", func(context.Context) error {
			return boom
		}, retryableClassifier)
	}

	calls := 0
	err := executor.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	}, retryableClassifier)

	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected call to be rejected, got %d attempts", calls)
	}
}

func TestBreakersAreIsolatedPerOperation(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryMaxAttempts = 1
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 3
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	executor := NewExecutor(cfg)

	for i := 0; i < 3; i++ {
		_ = executor.Execute(context.Background(), "broken_op", func(context.Context) error {
			return errors.New("down")
		}, retryableClassifier)
	}

	err := executor.Execute(context.Background(), "healthy_op", func(context.Context) error {
		return nil
	}, retryableClassifier)
	if err != nil {
		t.Fatalf("healthy operation must not share the open circuit: %v", err)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := Config{}.normalize()
	def := DefaultConfig()

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("expected default attempts, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != def.RetryInitialBackoff {
		t.Fatalf("expected default backoff, got %v", cfg.RetryInitialBackoff)
	}
	if cfg.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("expected default failure ratio, got %f", cfg.BreakerFailureRatio)
	}
}
