package jobs

import (
	"context"
	"testing"
	"time"

	"depuente/internal/domain/absence"
	"depuente/internal/platform/config"
)

func TestMarkSentClaimsOncePerDay(t *testing.T) {
	s := New(nil, config.Config{}, nil)
	today := absence.DateOf(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	if !s.markSent(today) {
		t.Fatal("first claim for the day should succeed")
	}
	if s.markSent(today) {
		t.Fatal("second claim for the same day should be rejected")
	}
}

func TestClearSentReleasesFailedDay(t *testing.T) {
	s := New(nil, config.Config{}, nil)
	today := absence.DateOf(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	if !s.markSent(today) {
		t.Fatal("first claim for the day should succeed")
	}
	s.clearSent(today)
	if !s.markSent(today) {
		t.Fatal("claim after release should succeed, so a failed digest retries")
	}

	// Releasing a different day must not give back today's slot.
	yesterday := today.Shift(-1)
	s.clearSent(yesterday)
	if s.markSent(today) {
		t.Fatal("claim should still be held after releasing another day")
	}
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	s := New(nil, config.Config{}, nil)
	noop := func(context.Context) (any, error) { return nil, nil }

	for i := 0; i < cap(s.queue); i++ {
		if !s.Enqueue(JobDailySummary, noop) {
			t.Fatalf("enqueue %d should fit within the buffer", i)
		}
	}
	if s.Enqueue(JobDailySummary, noop) {
		t.Fatal("enqueue into a full queue should be dropped and reported")
	}
}
