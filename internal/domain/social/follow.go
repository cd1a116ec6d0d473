package social

import (
	"strings"

	"catalogo/internal/errs"
)

type FollowStatus string

const (
	FollowPending  FollowStatus = "PENDING"
	FollowAccepted FollowStatus = "ACCEPTED"
)

// Relationship is the viewer-to-target state derived from the stored Follow row.
type Relationship string

const (
	RelationshipNone      Relationship = "NONE"
	RelationshipSelf      Relationship = "SELF"
	RelationshipRequested Relationship = "REQUESTED"
	RelationshipFollowing Relationship = "FOLLOWING"
)

// DeriveRelationship maps the optional row status to the relationship.
// A nil status means no Follow row exists.
func DeriveRelationship(status *FollowStatus, isSelf bool) Relationship {
	if status == nil {
		if isSelf {
			return RelationshipSelf
		}
		return RelationshipNone
	}
	switch *status {
	case FollowPending:
		return RelationshipRequested
	case FollowAccepted:
		return RelationshipFollowing
	default:
		return RelationshipNone
	}
}

type RequestAction string

const (
	ActionAccept RequestAction = "accept"
	ActionReject RequestAction = "reject"
)

func ParseRequestAction(raw string) (RequestAction, error) {
	switch action := RequestAction(strings.ToLower(strings.TrimSpace(raw))); action {
	case ActionAccept, ActionReject:
		return action, nil
	default:
		return "", errs.Invalid("unknown follow request action %q", raw)
	}
}

// InitialStatus is the status of a brand new Follow row for a target.
func InitialStatus(targetIsPrivate bool) FollowStatus {
	if targetIsPrivate {
		return FollowPending
	}
	return FollowAccepted
}
