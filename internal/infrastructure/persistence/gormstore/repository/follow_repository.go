package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"catalogo/internal/domain/social"
	"catalogo/internal/errs"
	"catalogo/internal/infrastructure/persistence/gormstore/model"
	"catalogo/internal/ports"
)

var _ ports.FollowRepository = (*FollowRepository)(nil)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) GetFollow(ctx context.Context, followID string) (ports.Follow, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Follow{}, err
	}
	return takeFollow(db.Where("id = ?", followID))
}

// GetFollowForUpdate loads followID and holds its row lock for the rest of
// the caller's transaction.
func (r *FollowRepository) GetFollowForUpdate(ctx context.Context, followID string) (ports.Follow, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Follow{}, err
	}
	return takeFollow(forUpdate(db).Where("id = ?", followID))
}

func (r *FollowRepository) GetFollowByPairForUpdate(ctx context.Context, followerID string, followingID string) (ports.Follow, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Follow{}, err
	}
	return takeFollow(forUpdate(db).Where("follower_id = ? AND following_id = ?", followerID, followingID))
}

func (r *FollowRepository) GetFollowByPair(ctx context.Context, followerID string, followingID string) (ports.Follow, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Follow{}, err
	}
	return takeFollow(db.Where("follower_id = ? AND following_id = ?", followerID, followingID))
}

// CreateFollow relies on idx_follows_pair: a conflicting insert affects no
// rows and the already-stored edge is returned locked with created=false.
func (r *FollowRepository) CreateFollow(ctx context.Context, input ports.FollowCreate) (ports.Follow, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Follow{}, false, err
	}

	row := model.Follow{
		ID:          uuid.NewString(),
		FollowerID:  input.FollowerID,
		FollowingID: input.FollowingID,
		Status:      string(input.Status),
		CreatedAt:   input.CreatedAt,
		UpdatedAt:   input.CreatedAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return ports.Follow{}, false, errs.Storage(result.Error, "insert follow")
	}
	if result.RowsAffected > 0 {
		return mapFollow(row), true, nil
	}

	existing, err := takeFollow(forUpdate(db).Where("follower_id = ? AND following_id = ?", input.FollowerID, input.FollowingID))
	if err != nil {
		return ports.Follow{}, false, errs.Wrap(err, "reload conflicting follow")
	}
	return existing, false, nil
}

// SetFollowStatus moves followID from one status to another. It reports
// false when the row is gone or no longer in the from status.
func (r *FollowRepository) SetFollowStatus(ctx context.Context, followID string, from social.FollowStatus, to social.FollowStatus, at time.Time) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Follow{}).
		Where("id = ? AND status = ?", followID, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": at,
		})
	if result.Error != nil {
		return false, errs.Storage(result.Error, "update follow status")
	}
	return result.RowsAffected > 0, nil
}

// DeleteFollow removes followID. When statuses are given the row is only
// removed while it is still in one of them.
func (r *FollowRepository) DeleteFollow(ctx context.Context, followID string, statuses ...social.FollowStatus) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	query := db.Where("id = ?", followID)
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, status := range statuses {
			values = append(values, string(status))
		}
		query = query.Where("status IN ?", values)
	}
	result := query.Delete(&model.Follow{})
	if result.Error != nil {
		return false, errs.Storage(result.Error, "delete follow")
	}
	return result.RowsAffected > 0, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	return r.countAccepted(ctx, "following_id", userID)
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	return r.countAccepted(ctx, "follower_id", userID)
}

func (r *FollowRepository) countAccepted(ctx context.Context, column string, userID string) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Follow{}).
		Where(column+" = ? AND status = ?", userID, string(social.FollowAccepted)).
		Count(&count).Error; err != nil {
		return 0, errs.Storage(err, "count follows")
	}
	return count, nil
}

func (r *FollowRepository) ListPendingRequests(ctx context.Context, userID string, limit int) ([]ports.Follow, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Follow
	if err := db.Where("following_id = ? AND status = ?", userID, string(social.FollowPending)).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query pending follows")
	}

	items := make([]ports.Follow, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapFollow(row))
	}
	return items, nil
}

func takeFollow(query *gorm.DB) (ports.Follow, error) {
	var row model.Follow
	if err := query.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Follow{}, ports.ErrFollowNotFound
		}
		return ports.Follow{}, errs.Storage(err, "query follow")
	}
	return mapFollow(row), nil
}

func mapFollow(row model.Follow) ports.Follow {
	return ports.Follow{
		ID:          row.ID,
		FollowerID:  row.FollowerID,
		FollowingID: row.FollowingID,
		Status:      social.FollowStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
