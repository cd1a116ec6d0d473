package moderation

import "time"

type SuspensionAction int

const (
	SuspensionUnchanged SuspensionAction = iota
	SuspensionExtended
	SuspensionCleared
)

func (a SuspensionAction) String() string {
	switch a {
	case SuspensionExtended:
		return "extended"
	case SuspensionCleared:
		return "cleared"
	default:
		return "unchanged"
	}
}

// Policy is the moderation threshold in force for one call.
type Policy struct {
	StrikeLimit            int
	SuspensionDurationDays int
}

func (p Policy) SuspensionDuration() time.Duration {
	return time.Duration(p.SuspensionDurationDays) * 24 * time.Hour
}

type SuspensionInput struct {
	ActiveStrikes int64
	Policy        Policy
	Current       *time.Time
	Now           time.Time
	// AllowEscalation is false on unhide, where re-evaluation may only clear.
	AllowEscalation bool
}

type SuspensionDecision struct {
	Action         SuspensionAction
	SuspendedUntil *time.Time
}

// ReevaluateSuspension decides the author's suspension window from the active
// strike count. Escalation takes the later of the current window and
// now+duration; it never sums durations and never shortens a window.
func ReevaluateSuspension(in SuspensionInput) SuspensionDecision {
	limit := int64(in.Policy.StrikeLimit)

	if in.ActiveStrikes >= limit {
		if !in.AllowEscalation {
			return SuspensionDecision{Action: SuspensionUnchanged, SuspendedUntil: in.Current}
		}
		candidate := in.Now.Add(in.Policy.SuspensionDuration())
		if in.Current != nil && !in.Current.Before(candidate) {
			return SuspensionDecision{Action: SuspensionUnchanged, SuspendedUntil: in.Current}
		}
		return SuspensionDecision{Action: SuspensionExtended, SuspendedUntil: &candidate}
	}

	if in.Current != nil {
		return SuspensionDecision{Action: SuspensionCleared}
	}
	return SuspensionDecision{Action: SuspensionUnchanged}
}

// IsSuspended reports whether until is set and still in the future.
func IsSuspended(until *time.Time, now time.Time) bool {
	return until != nil && until.After(now)
}
