package util

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), nil, 5, 0, func(context.Context) error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3
	var buf bytes.Buffer
	log := NewLogger("info", "text", &buf)

	err := Retry(context.Background(), log, maxAttempts, 0, func(context.Context) error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil || err.Error() != "persistent error" {
		t.Fatalf("Retry error = %v, want persistent error", err)
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
	if got := strings.Count(buf.String(), "attempt failed"); got != maxAttempts {
		t.Errorf("logged %d failures, want %d", got, maxAttempts)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, nil, 5, time.Hour, func(context.Context) error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("warn", "json", &buf)
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line logged at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("JSON output missing message: %s", out)
	}

	if ParseLevel("bogus") != slog.LevelInfo {
		t.Error("unknown level should map to info")
	}
}

func TestTradingCalendar(t *testing.T) {
	tc := NewTradingCalendar()
	utc := func(y int, m time.Month, d, h, min int) time.Time {
		return time.Date(y, m, d, h, min, 0, 0, time.UTC)
	}

	tests := []struct {
		at   time.Time
		open bool
	}{
		{utc(2024, 3, 15, 10, 0), true},   // Friday morning
		{utc(2024, 3, 15, 8, 59), false},  // before open
		{utc(2024, 3, 15, 15, 30), false}, // at close
		{utc(2024, 3, 16, 11, 0), false},  // Saturday
	}
	for _, tt := range tests {
		if got := tc.IsMarketOpen(tt.at); got != tt.open {
			t.Errorf("IsMarketOpen(%v) = %v, want %v", tt.at, got, tt.open)
		}
	}

	next := tc.NextOpen(utc(2024, 3, 15, 16, 0))
	if !next.Equal(utc(2024, 3, 18, 9, 0)) {
		t.Errorf("NextOpen(Friday evening) = %v, want Monday 09:00", next)
	}
	next = tc.NextOpen(utc(2024, 3, 14, 7, 0))
	if !next.Equal(utc(2024, 3, 14, 9, 0)) {
		t.Errorf("NextOpen(Thursday early) = %v, want same day 09:00", next)
	}

	// Abidjan is UTC+0 all year, or UTC itself when tzdata is missing.
	if _, off := next.In(tc.Location()).Zone(); off != 0 {
		t.Errorf("Location() offset = %d, want 0", off)
	}
}
