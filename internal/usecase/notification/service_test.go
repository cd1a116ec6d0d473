package notification

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainnotification "catalogo/internal/domain/notification"
	"catalogo/internal/errs"
	"catalogo/internal/infrastructure/persistence/gormstore/model"
	"catalogo/internal/infrastructure/persistence/gormstore/repository"
	"catalogo/internal/infrastructure/persistence/gormstore/uow"
	"catalogo/internal/ports"
)

func setupService(t *testing.T) (*Service, *uow.UnitOfWork) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "notification.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	svc := NewService(repository.NewNotificationRepository(db))
	return svc, uow.NewUnitOfWork(db)
}

func TestEnsureUnreadDedupsUntilRead(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	key := domainnotification.ForFollow("u2", "u1", "f1", domainnotification.FollowRequest)

	created, err := svc.EnsureUnread(ctx, key)
	if err != nil {
		t.Fatalf("EnsureUnread() error = %v", err)
	}
	if !created {
		t.Fatalf("EnsureUnread() created = false, want true")
	}

	created, err = svc.EnsureUnread(ctx, key)
	if err != nil {
		t.Fatalf("EnsureUnread() second error = %v", err)
	}
	if created {
		t.Fatalf("EnsureUnread() second created = true, want false")
	}

	updated, err := svc.MarkRead(ctx, key)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("MarkRead() updated = %d, want 1", updated)
	}

	created, err = svc.EnsureUnread(ctx, key)
	if err != nil {
		t.Fatalf("EnsureUnread() after read error = %v", err)
	}
	if !created {
		t.Fatalf("EnsureUnread() after read created = false, want true")
	}

	items, err := svc.List(ctx, ListInput{RecipientID: "u2"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() len = %d, want 2", len(items))
	}
	unread, err := svc.List(ctx, ListInput{RecipientID: "u2", UnreadOnly: true})
	if err != nil {
		t.Fatalf("List(unread) error = %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("List(unread) len = %d, want 1", len(unread))
	}
}

func TestEnsureUnreadDistinguishesCorrelationKeys(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	keys := []domainnotification.Key{
		domainnotification.ForReview("author", "mod", "r1", domainnotification.ContentModerated),
		domainnotification.ForReview("author", "mod", "r2", domainnotification.ContentModerated),
		domainnotification.ForReview("author", "mod2", "r1", domainnotification.ContentModerated),
		domainnotification.ForReview("author", "mod", "r1", domainnotification.ReportResolved),
		{RecipientID: "author", ActorID: "mod", Type: domainnotification.ContentModerated},
	}
	for i, key := range keys {
		created, err := svc.EnsureUnread(ctx, key)
		if err != nil {
			t.Fatalf("EnsureUnread(#%d) error = %v", i, err)
		}
		if !created {
			t.Fatalf("EnsureUnread(#%d) created = false, want true", i)
		}
	}

	updated, err := svc.MarkAllRead(ctx, "author")
	if err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	if updated != int64(len(keys)) {
		t.Fatalf("MarkAllRead() updated = %d, want %d", updated, len(keys))
	}
}

func TestEnsureUnreadRollsBackWithTransaction(t *testing.T) {
	svc, unit := setupService(t)
	ctx := context.Background()
	key := domainnotification.ForFollow("u2", "u1", "f1", domainnotification.FollowCreated)
	boom := errors.New("boom")

	err := unit.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := svc.EnsureUnread(txCtx, key); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	items, err := svc.List(ctx, ListInput{RecipientID: "u2"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("List() len = %d, want 0 after rollback", len(items))
	}
}

func TestEnsureUnreadValidatesKey(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.EnsureUnread(context.Background(), domainnotification.Key{ActorID: "a", Type: domainnotification.FollowCreated})
	if errs.KindOf(err) != errs.KindInvalidOperation {
		t.Fatalf("EnsureUnread() kind = %v, want invalid_operation", errs.KindOf(err))
	}
}

type failingRepo struct {
	ports.NotificationRepository
}

func (failingRepo) FindUnread(context.Context, domainnotification.Key) (ports.Notification, bool, error) {
	return ports.Notification{}, false, errs.Storage(errors.New("disk full"), "query unread notification")
}

func TestEnsureUnreadPropagatesStorageFailure(t *testing.T) {
	svc := &Service{repo: failingRepo{}, now: func() time.Time { return time.Unix(0, 0).UTC() }}

	_, err := svc.EnsureUnread(context.Background(), domainnotification.ForFollow("b", "a", "f", domainnotification.FollowCreated))
	if errs.KindOf(err) != errs.KindStorageFailure {
		t.Fatalf("EnsureUnread() kind = %v, want storage_failure", errs.KindOf(err))
	}
}
