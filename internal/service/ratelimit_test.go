package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	start := time.Date(2015, time.April, 1, 6, 0, 0, 0, time.UTC)
	clock := start
	rl := NewRateLimiter(2, time.Second)
	rl.lastRefill = start
	rl.now = func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow(); !ok {
			t.Fatalf("send %d should be allowed", i+1)
		}
	}

	clock = start.Add(300 * time.Millisecond)
	ok, wait := rl.Allow()
	if ok {
		t.Fatal("third send in the window should be refused")
	}
	if wait != 700*time.Millisecond {
		t.Errorf("wait = %v, want 700ms", wait)
	}

	clock = start.Add(time.Second)
	if ok, _ := rl.Allow(); !ok {
		t.Error("send after the window should be allowed")
	}
}

func TestRateLimiterWaitCancelled(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}
