package moderation

import (
	"testing"
	"time"
)

var testPolicy = Policy{StrikeLimit: 3, SuspensionDurationDays: 7}

func TestReevaluateSuspensionEscalatesAtLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := ReevaluateSuspension(SuspensionInput{
		ActiveStrikes:   3,
		Policy:          testPolicy,
		Now:             now,
		AllowEscalation: true,
	})
	if got.Action != SuspensionExtended {
		t.Fatalf("Action = %v, want extended", got.Action)
	}
	want := now.Add(7 * 24 * time.Hour)
	if got.SuspendedUntil == nil || !got.SuspendedUntil.Equal(want) {
		t.Fatalf("SuspendedUntil = %v, want %v", got.SuspendedUntil, want)
	}
}

func TestReevaluateSuspensionKeepsLaterWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(30 * 24 * time.Hour)

	got := ReevaluateSuspension(SuspensionInput{
		ActiveStrikes:   4,
		Policy:          testPolicy,
		Current:         &later,
		Now:             now,
		AllowEscalation: true,
	})
	if got.Action != SuspensionUnchanged {
		t.Fatalf("Action = %v, want unchanged", got.Action)
	}
	if got.SuspendedUntil == nil || !got.SuspendedUntil.Equal(later) {
		t.Fatalf("SuspendedUntil = %v, want %v", got.SuspendedUntil, later)
	}
}

func TestReevaluateSuspensionTakesMaxNotSum(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(2 * 24 * time.Hour)

	got := ReevaluateSuspension(SuspensionInput{
		ActiveStrikes:   3,
		Policy:          testPolicy,
		Current:         &earlier,
		Now:             now,
		AllowEscalation: true,
	})
	want := now.Add(7 * 24 * time.Hour)
	if got.Action != SuspensionExtended || !got.SuspendedUntil.Equal(want) {
		t.Fatalf("decision = %+v, want extended to %v", got, want)
	}
	if got.SuspendedUntil.Before(earlier) {
		t.Fatalf("window shrank")
	}
}

func TestReevaluateSuspensionClearsBelowLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := now.Add(24 * time.Hour)

	for _, allow := range []bool{true, false} {
		got := ReevaluateSuspension(SuspensionInput{
			ActiveStrikes:   2,
			Policy:          testPolicy,
			Current:         &current,
			Now:             now,
			AllowEscalation: allow,
		})
		if got.Action != SuspensionCleared || got.SuspendedUntil != nil {
			t.Fatalf("allow=%v decision = %+v, want cleared", allow, got)
		}
	}
}

func TestReevaluateSuspensionNoEscalationWhenDisallowed(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := ReevaluateSuspension(SuspensionInput{
		ActiveStrikes: 5,
		Policy:        testPolicy,
		Now:           now,
	})
	if got.Action != SuspensionUnchanged || got.SuspendedUntil != nil {
		t.Fatalf("decision = %+v, want unchanged with nil window", got)
	}
}

func TestReevaluateSuspensionBelowLimitWithoutWindow(t *testing.T) {
	got := ReevaluateSuspension(SuspensionInput{
		ActiveStrikes:   1,
		Policy:          testPolicy,
		Now:             time.Now(),
		AllowEscalation: true,
	})
	if got.Action != SuspensionUnchanged {
		t.Fatalf("Action = %v, want unchanged", got.Action)
	}
}

func TestIsSuspended(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if IsSuspended(nil, now) || IsSuspended(&past, now) || !IsSuspended(&future, now) {
		t.Fatalf("IsSuspended() mismatch")
	}
}
