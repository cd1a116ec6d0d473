package ports

import (
	"context"
	"errors"
	"time"

	"catalogo/internal/domain/social"
)

var ErrFollowNotFound = errors.New("follow not found")

type Follow struct {
	ID          string
	FollowerID  string
	FollowingID string
	Status      social.FollowStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type FollowCreate struct {
	FollowerID  string
	FollowingID string
	Status      social.FollowStatus
	CreatedAt   time.Time
}

type FollowRepository interface {
	GetFollow(ctx context.Context, followID string) (Follow, error)
	GetFollowByPair(ctx context.Context, followerID string, followingID string) (Follow, error)
	// The ForUpdate variants lock the row until the caller's transaction ends.
	GetFollowForUpdate(ctx context.Context, followID string) (Follow, error)
	GetFollowByPairForUpdate(ctx context.Context, followerID string, followingID string) (Follow, error)
	// CreateFollow inserts unless the (follower, following) pair already
	// exists; created is false when another writer won the race.
	CreateFollow(ctx context.Context, input FollowCreate) (follow Follow, created bool, err error)
	// SetFollowStatus is conditional on from; changed is false when another
	// writer moved the row first.
	SetFollowStatus(ctx context.Context, followID string, from social.FollowStatus, to social.FollowStatus, at time.Time) (changed bool, err error)
	DeleteFollow(ctx context.Context, followID string, statuses ...social.FollowStatus) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	ListPendingRequests(ctx context.Context, userID string, limit int) ([]Follow, error)
}
