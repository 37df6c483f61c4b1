package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "tuniscraper/pkg/errors"
)

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 2 * time.Second}
	if cb.NextDelay(0) != 0 || cb.NextDelay(1) != 2*time.Second || cb.NextDelay(7) != 2*time.Second {
		t.Error("unexpected constant backoff delays")
	}
}

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, Backoff: &ConstantBackoff{Delay: time.Millisecond}}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errs.Network("http://x", errors.New("connection reset"))
		}
		return nil
	}, fastConfig(3))

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhausted(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return errs.FromStatus("http://x", 503)
	}, fastConfig(3))

	if !errs.IsType(err, errs.ErrorTypeServerError) {
		t.Fatalf("expected last server error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrySkipsNonRetryable(t *testing.T) {
	tests := []error{
		errs.FromStatus("http://x/img.png", 404),
		errs.Parse("http://x", "no grid"),
		errors.New("unclassified"),
	}

	for _, testErr := range tests {
		attempts := 0
		err := Do(context.Background(), func() error {
			attempts++
			return testErr
		}, fastConfig(3))

		if err != testErr {
			t.Errorf("expected %v to be returned unchanged, got %v", testErr, err)
		}
		if attempts != 1 {
			t.Errorf("expected 1 attempt for %v, got %d", testErr, attempts)
		}
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		cancel()
		return errs.Network("http://x", errors.New("timeout"))
	}, Config{MaxAttempts: 5, Backoff: &ConstantBackoff{Delay: time.Hour}})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}
