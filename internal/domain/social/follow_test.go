package social

import (
	"errors"
	"testing"

	"catalogo/internal/errs"
)

func TestDeriveRelationshipTable(t *testing.T) {
	pending := FollowPending
	accepted := FollowAccepted

	cases := []struct {
		status *FollowStatus
		isSelf bool
		want   Relationship
	}{
		{status: nil, isSelf: false, want: RelationshipNone},
		{status: nil, isSelf: true, want: RelationshipSelf},
		{status: &pending, isSelf: false, want: RelationshipRequested},
		{status: &accepted, isSelf: false, want: RelationshipFollowing},
	}
	for _, tc := range cases {
		if got := DeriveRelationship(tc.status, tc.isSelf); got != tc.want {
			t.Fatalf("DeriveRelationship(%v, %v) = %q, want %q", tc.status, tc.isSelf, got, tc.want)
		}
	}
}

func TestInitialStatus(t *testing.T) {
	if InitialStatus(true) != FollowPending || InitialStatus(false) != FollowAccepted {
		t.Fatalf("InitialStatus() mismatch")
	}
}

func TestParseRequestAction(t *testing.T) {
	if got, err := ParseRequestAction(" Accept "); err != nil || got != ActionAccept {
		t.Fatalf("ParseRequestAction(Accept) = %q, %v", got, err)
	}
	if _, err := ParseRequestAction("ignore"); !errors.Is(err, errs.ErrInvalidOperation) {
		t.Fatalf("ParseRequestAction(ignore) error = %v", err)
	}
}
