package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalogo/internal/errs"
	"catalogo/internal/infrastructure/persistence/gormstore/model"
	"catalogo/internal/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}
	return takeUser(db.Where("id = ?", userID))
}

// GetUserForUpdate loads userID and holds its row lock for the rest of the
// caller's transaction.
func (r *UserRepository) GetUserForUpdate(ctx context.Context, userID string) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}
	return takeUser(forUpdate(db).Where("id = ?", userID))
}

func takeUser(query *gorm.DB) (ports.User, error) {
	var row model.User
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Storage(err, "query user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) CreateUser(ctx context.Context, input ports.UserCreate) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}

	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()
	row := model.User{
		ID:        id,
		Email:     strings.TrimSpace(input.Email),
		IsPrivate: input.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.User{}, errs.Storage(err, "insert user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) SetPrivate(ctx context.Context, userID string, isPrivate bool) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"is_private": isPrivate,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return errs.Storage(result.Error, "update user privacy")
	}
	if result.RowsAffected == 0 {
		return ports.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetSuspendedUntil(ctx context.Context, userID string, until *time.Time) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	var value any
	if until != nil {
		value = until.UTC()
	}
	if err := db.Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"suspended_until": value,
			"updated_at":      time.Now().UTC(),
		}).Error; err != nil {
		return errs.Storage(err, "update user suspended_until")
	}
	return nil
}

func mapUser(row model.User) ports.User {
	return ports.User{
		ID:             row.ID,
		Email:          row.Email,
		IsPrivate:      row.IsPrivate,
		SuspendedUntil: row.SuspendedUntil,
		CreatedAt:      row.CreatedAt,
	}
}
