package ports

import (
	"context"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID             string
	Email          string
	IsPrivate      bool
	SuspendedUntil *time.Time
	CreatedAt      time.Time
}

type UserCreate struct {
	ID        string
	Email     string
	IsPrivate bool
}

type UserRepository interface {
	GetUser(ctx context.Context, userID string) (User, error)
	// GetUserForUpdate locks the row until the caller's transaction ends.
	GetUserForUpdate(ctx context.Context, userID string) (User, error)
	CreateUser(ctx context.Context, input UserCreate) (User, error)
	SetPrivate(ctx context.Context, userID string, isPrivate bool) error
	SetSuspendedUntil(ctx context.Context, userID string, until *time.Time) error
}
