package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"catalogo/internal/domain/notification"
	"catalogo/internal/errs"
	"catalogo/internal/infrastructure/persistence/gormstore/model"
	"catalogo/internal/ports"
)

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) FindUnread(ctx context.Context, key notification.Key) (ports.Notification, bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Notification{}, false, err
	}

	var row model.Notification
	if err := whereUnreadKey(db, key).Order("created_at asc").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Notification{}, false, nil
		}
		return ports.Notification{}, false, errs.Storage(err, "query unread notification")
	}
	return mapNotification(row), true, nil
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, key notification.Key, at time.Time) (ports.Notification, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Notification{}, err
	}

	row := model.Notification{
		ID:          uuid.NewString(),
		RecipientID: key.RecipientID,
		ActorID:     key.ActorID,
		Type:        string(key.Type),
		ReviewID:    key.ReviewID,
		FollowID:    key.FollowID,
		CreatedAt:   at,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Notification{}, errs.Storage(err, "insert notification")
	}
	return mapNotification(row), nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, key notification.Key, at time.Time) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	result := whereUnreadKey(db.Model(&model.Notification{}), key).Update("read_at", at)
	if result.Error != nil {
		return 0, errs.Storage(result.Error, "mark notification read")
	}
	return result.RowsAffected, nil
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, filter ports.NotificationFilter) ([]ports.Notification, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Where("recipient_id = ?", filter.RecipientID)
	if filter.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.Notification
	if err := query.Order("created_at desc").Order("id desc").Find(&rows).Error; err != nil {
		return nil, errs.Storage(err, "query notifications")
	}

	items := make([]ports.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string, at time.Time) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	result := db.Model(&model.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Update("read_at", at)
	if result.Error != nil {
		return 0, errs.Storage(result.Error, "mark notifications read")
	}
	return result.RowsAffected, nil
}

// whereUnreadKey matches the dedup tuple; nil correlation ids match NULL.
func whereUnreadKey(db *gorm.DB, key notification.Key) *gorm.DB {
	query := db.Where(
		"recipient_id = ? AND actor_id = ? AND type = ? AND read_at IS NULL",
		key.RecipientID, key.ActorID, string(key.Type),
	)
	if key.ReviewID == nil {
		query = query.Where("review_id IS NULL")
	} else {
		query = query.Where("review_id = ?", *key.ReviewID)
	}
	if key.FollowID == nil {
		query = query.Where("follow_id IS NULL")
	} else {
		query = query.Where("follow_id = ?", *key.FollowID)
	}
	return query
}

func mapNotification(row model.Notification) ports.Notification {
	return ports.Notification{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		ActorID:     row.ActorID,
		ReviewID:    row.ReviewID,
		FollowID:    row.FollowID,
		Type:        notification.Type(row.Type),
		CreatedAt:   row.CreatedAt,
		ReadAt:      row.ReadAt,
	}
}
