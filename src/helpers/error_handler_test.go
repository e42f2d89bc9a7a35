package helpers

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{60, time.Second},
		{-2, 100 * time.Millisecond},
	}
	for _, c := range cases {
		if got := BackoffDelay(base, max, c.attempt); got != c.want {
			t.Errorf("attempt %d: got %v, want %v", c.attempt, got, c.want)
		}
	}

	if got := BackoffDelay(0, max, 3); got != 0 {
		t.Errorf("zero base should disable backoff, got %v", got)
	}
}

func TestBackoffDelay_NoCapNeverSpins(t *testing.T) {
	base := 10 * time.Second

	for attempt := 0; attempt <= 40; attempt++ {
		if got := BackoffDelay(base, 0, attempt); got != base {
			t.Fatalf("attempt %d without a cap: got %v, want %v", attempt, got, base)
		}
	}
	if got := BackoffDelay(base, time.Second, 5); got != base {
		t.Errorf("cap below base: got %v, want %v", got, base)
	}
}

func TestPayloadErrorUnwrap(t *testing.T) {
	cause := errors.New("unexpected token")
	err := fmt.Errorf("quote push: %w", NewPayloadError("cannot decode", cause))

	if !IsPayloadError(err) {
		t.Fatal("expected wrapped payload error to be detected")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if IsPayloadError(NewTransportError("dial", cause)) {
		t.Error("transport error must not match payload error")
	}
}
