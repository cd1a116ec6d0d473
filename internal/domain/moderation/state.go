package moderation

import (
	"strings"

	"catalogo/internal/errs"
)

type VisibilityStatus string

const (
	VisibilityActive VisibilityStatus = "ACTIVE"
	VisibilityHidden VisibilityStatus = "HIDDEN"
)

type ReportStatus string

const (
	ReportOpen      ReportStatus = "OPEN"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

type AppealStatus string

const (
	AppealOpen     AppealStatus = "OPEN"
	AppealResolved AppealStatus = "RESOLVED"
	AppealRejected AppealStatus = "REJECTED"
)

type ReportReason string

const (
	ReasonSpam          ReportReason = "SPAM"
	ReasonHarassment    ReportReason = "HARASSMENT"
	ReasonHateSpeech    ReportReason = "HATE_SPEECH"
	ReasonInappropriate ReportReason = "INAPPROPRIATE"
	ReasonSpoilers      ReportReason = "SPOILERS"
	ReasonOther         ReportReason = "OTHER"
)

// DefaultHiddenReason is stored when a moderator hides a review without a reason.
const DefaultHiddenReason = "moderator_action"

var reportReasons = map[ReportReason]struct{}{
	ReasonSpam:          {},
	ReasonHarassment:    {},
	ReasonHateSpeech:    {},
	ReasonInappropriate: {},
	ReasonSpoilers:      {},
	ReasonOther:         {},
}

func ParseReportReason(raw string) (ReportReason, error) {
	reason := ReportReason(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := reportReasons[reason]; !ok {
		return "", errs.Invalid("unknown report reason %q", raw)
	}
	return reason, nil
}

// ParseReportStatus accepts any report status; empty means OPEN.
func ParseReportStatus(raw string) (ReportStatus, error) {
	switch status := ReportStatus(strings.ToUpper(strings.TrimSpace(raw))); status {
	case "":
		return ReportOpen, nil
	case ReportOpen, ReportResolved, ReportDismissed:
		return status, nil
	default:
		return "", errs.Invalid("unknown report status %q", raw)
	}
}

// ParseAppealStatus accepts any appeal status; empty means OPEN.
func ParseAppealStatus(raw string) (AppealStatus, error) {
	switch status := AppealStatus(strings.ToUpper(strings.TrimSpace(raw))); status {
	case "":
		return AppealOpen, nil
	case AppealOpen, AppealResolved, AppealRejected:
		return status, nil
	default:
		return "", errs.Invalid("unknown appeal status %q", raw)
	}
}

// CheckReportTransition allows only OPEN -> RESOLVED and OPEN -> DISMISSED.
func CheckReportTransition(current ReportStatus, target ReportStatus) error {
	if target != ReportResolved && target != ReportDismissed {
		return errs.Invalid("report cannot transition to %s", target)
	}
	if current != ReportOpen {
		return errs.Invalid("report is already %s", current)
	}
	return nil
}

// CheckAppealTransition allows only OPEN -> RESOLVED and OPEN -> REJECTED.
func CheckAppealTransition(current AppealStatus, target AppealStatus) error {
	if target != AppealResolved && target != AppealRejected {
		return errs.Invalid("appeal cannot transition to %s", target)
	}
	if current != AppealOpen {
		return errs.Invalid("appeal is already %s", current)
	}
	return nil
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ClampListLimit maps non-positive limits to the default and caps at MaxListLimit.
func ClampListLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
