package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDelay(t *testing.T) {
	d := NewDelay(200 * time.Millisecond)

	start := time.Now()
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Expected first request to pass immediately, took %v", elapsed)
	}

	start = time.Now()
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Expected Wait to block, returned after %v", elapsed)
	}
}

func TestDelayZeroNeverBlocks(t *testing.T) {
	d := NewDelay(0)
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := d.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Expected zero delay not to block, took %v", elapsed)
	}
}

func TestDelayWaitCancelled(t *testing.T) {
	d := NewDelay(time.Hour)
	if err := d.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Wait(ctx); err == nil {
		t.Error("Expected Wait to fail on cancelled context")
	}
}
