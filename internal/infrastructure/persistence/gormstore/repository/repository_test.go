package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"catalogo/internal/domain/moderation"
	"catalogo/internal/domain/notification"
	"catalogo/internal/domain/social"
	"catalogo/internal/infrastructure/persistence/gormstore/model"
	"catalogo/internal/ports"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "catalogo.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
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
	return db
}

func mustCreateUser(t *testing.T, repo *UserRepository, id string, private bool) ports.User {
	t.Helper()

	user, err := repo.CreateUser(context.Background(), ports.UserCreate{
		ID:        id,
		Email:     id + "@example.com",
		IsPrivate: private,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", id, err)
	}
	return user
}

func TestUserRepositoryLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mustCreateUser(t, repo, "u1", false)

	if _, err := repo.GetUser(ctx, "missing"); !errors.Is(err, ports.ErrUserNotFound) {
		t.Fatalf("GetUser(missing) error = %v, want ErrUserNotFound", err)
	}
	if err := repo.SetPrivate(ctx, "missing", true); !errors.Is(err, ports.ErrUserNotFound) {
		t.Fatalf("SetPrivate(missing) error = %v, want ErrUserNotFound", err)
	}

	until := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Microsecond)
	if err := repo.SetSuspendedUntil(ctx, "u1", &until); err != nil {
		t.Fatalf("SetSuspendedUntil() error = %v", err)
	}
	user, err := repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.SuspendedUntil == nil || !user.SuspendedUntil.Equal(until) {
		t.Fatalf("suspended_until = %v, want %v", user.SuspendedUntil, until)
	}

	if err := repo.SetSuspendedUntil(ctx, "u1", nil); err != nil {
		t.Fatalf("SetSuspendedUntil(nil) error = %v", err)
	}
	user, err = repo.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.SuspendedUntil != nil {
		t.Fatalf("suspended_until = %v, want nil", user.SuspendedUntil)
	}
}

func TestStrikeUpsertIsOnePerReview(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewModerationRepository(db)
	ctx := context.Background()

	mustCreateUser(t, users, "author", false)
	review, err := repo.CreateReview(ctx, ports.ReviewCreate{AuthorID: "author", ItemID: "item-1", Body: "meh"})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if err := repo.UpsertActiveStrike(ctx, ports.StrikeUpsert{
			ReviewID: review.ID,
			AuthorID: "author",
			IssuedBy: "mod",
			At:       now.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("UpsertActiveStrike() #%d error = %v", i, err)
		}
	}

	strikes, err := repo.ListStrikes(ctx, "author")
	if err != nil {
		t.Fatalf("ListStrikes() error = %v", err)
	}
	if len(strikes) != 1 {
		t.Fatalf("ListStrikes() len = %d, want 1", len(strikes))
	}

	revoked, err := repo.RevokeStrike(ctx, review.ID, now)
	if err != nil {
		t.Fatalf("RevokeStrike() error = %v", err)
	}
	if !revoked {
		t.Fatalf("RevokeStrike() revoked = false, want true")
	}
	revoked, err = repo.RevokeStrike(ctx, review.ID, now)
	if err != nil {
		t.Fatalf("RevokeStrike() second error = %v", err)
	}
	if revoked {
		t.Fatalf("RevokeStrike() second revoked = true, want false")
	}

	count, err := repo.CountActiveStrikes(ctx, "author")
	if err != nil {
		t.Fatalf("CountActiveStrikes() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("CountActiveStrikes() = %d, want 0", count)
	}

	if err := repo.UpsertActiveStrike(ctx, ports.StrikeUpsert{ReviewID: review.ID, AuthorID: "author", IssuedBy: "mod2", At: now}); err != nil {
		t.Fatalf("UpsertActiveStrike() reactivate error = %v", err)
	}
	strikes, err = repo.ListStrikes(ctx, "author")
	if err != nil {
		t.Fatalf("ListStrikes() error = %v", err)
	}
	if len(strikes) != 1 || strikes[0].RevokedAt != nil || strikes[0].IssuedBy != "mod2" {
		t.Fatalf("reactivated strike = %+v", strikes)
	}
}

func TestReportTransitionIsConditional(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewModerationRepository(db)
	ctx := context.Background()

	mustCreateUser(t, users, "author", false)
	review, err := repo.CreateReview(ctx, ports.ReviewCreate{AuthorID: "author", ItemID: "item-1", Body: "spam"})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}
	report, err := repo.CreateReport(ctx, ports.ReportCreate{
		ReviewID:   review.ID,
		ReporterID: "reporter",
		Reason:     moderation.ReasonSpam,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateReport() error = %v", err)
	}

	change := ports.StatusChange[moderation.ReportStatus]{
		ID:         report.ID,
		From:       moderation.ReportOpen,
		To:         moderation.ReportResolved,
		ResolvedAt: time.Now().UTC(),
		ResolvedBy: "mod",
	}
	applied, err := repo.TransitionReport(ctx, change)
	if err != nil {
		t.Fatalf("TransitionReport() error = %v", err)
	}
	if !applied {
		t.Fatalf("TransitionReport() applied = false, want true")
	}

	change.To = moderation.ReportDismissed
	applied, err = repo.TransitionReport(ctx, change)
	if err != nil {
		t.Fatalf("TransitionReport() second error = %v", err)
	}
	if applied {
		t.Fatalf("TransitionReport() second applied = true, want false")
	}

	got, err := repo.GetReport(ctx, report.ID)
	if err != nil {
		t.Fatalf("GetReport() error = %v", err)
	}
	if got.Status != moderation.ReportResolved || got.ResolvedBy == nil || *got.ResolvedBy != "mod" {
		t.Fatalf("GetReport() = %+v", got)
	}
}

func TestListReportsIncludesAuthorStrikeCount(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewModerationRepository(db)
	ctx := context.Background()

	mustCreateUser(t, users, "author", false)
	now := time.Now().UTC()
	for i := 0; i < 2; i++ {
		review, err := repo.CreateReview(ctx, ports.ReviewCreate{AuthorID: "author", ItemID: "item", Body: "b"})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		if _, err := repo.CreateReport(ctx, ports.ReportCreate{
			ReviewID:   review.ID,
			ReporterID: "reporter",
			Reason:     moderation.ReasonOther,
			CreatedAt:  now.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("CreateReport() error = %v", err)
		}
		if i == 0 {
			if err := repo.UpsertActiveStrike(ctx, ports.StrikeUpsert{ReviewID: review.ID, AuthorID: "author", IssuedBy: "mod", At: now}); err != nil {
				t.Fatalf("UpsertActiveStrike() error = %v", err)
			}
		}
	}

	items, err := repo.ListReports(ctx, ports.ReportListFilter{
		Status:              moderation.ReportOpen,
		Limit:               10,
		IncludeStrikeCounts: true,
	})
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("ListReports() len = %d, want 2", len(items))
	}
	if !items[0].CreatedAt.After(items[1].CreatedAt) {
		t.Fatalf("ListReports() not ordered newest first")
	}
	for _, item := range items {
		if item.AuthorID != "author" {
			t.Fatalf("author_id = %q", item.AuthorID)
		}
		if item.AuthorActiveStrikes == nil || *item.AuthorActiveStrikes != 1 {
			t.Fatalf("author_active_strikes = %v, want 1", item.AuthorActiveStrikes)
		}
	}

	items, err = repo.ListReports(ctx, ports.ReportListFilter{Status: moderation.ReportOpen, Limit: 1})
	if err != nil {
		t.Fatalf("ListReports() error = %v", err)
	}
	if len(items) != 1 || items[0].AuthorActiveStrikes != nil {
		t.Fatalf("ListReports() without counts = %+v", items)
	}
}

func TestCreateFollowReportsExistingPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	first, created, err := repo.CreateFollow(ctx, ports.FollowCreate{
		FollowerID:  "a",
		FollowingID: "b",
		Status:      social.FollowPending,
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateFollow() error = %v", err)
	}
	if !created {
		t.Fatalf("CreateFollow() created = false, want true")
	}

	second, created, err := repo.CreateFollow(ctx, ports.FollowCreate{
		FollowerID:  "a",
		FollowingID: "b",
		Status:      social.FollowAccepted,
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateFollow() second error = %v", err)
	}
	if created {
		t.Fatalf("CreateFollow() second created = true, want false")
	}
	if second.ID != first.ID || second.Status != social.FollowPending {
		t.Fatalf("CreateFollow() second = %+v, want existing %+v", second, first)
	}

	followers, err := repo.CountFollowers(ctx, "b")
	if err != nil {
		t.Fatalf("CountFollowers() error = %v", err)
	}
	if followers != 0 {
		t.Fatalf("CountFollowers() = %d, want 0 for pending edge", followers)
	}
	pending, err := repo.ListPendingRequests(ctx, "b", 10)
	if err != nil {
		t.Fatalf("ListPendingRequests() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("ListPendingRequests() len = %d, want 1", len(pending))
	}

	changed, err := repo.SetFollowStatus(ctx, first.ID, social.FollowPending, social.FollowAccepted, now)
	if err != nil {
		t.Fatalf("SetFollowStatus() error = %v", err)
	}
	if !changed {
		t.Fatalf("SetFollowStatus() changed = false, want true")
	}
	changed, err = repo.SetFollowStatus(ctx, first.ID, social.FollowPending, social.FollowAccepted, now)
	if err != nil {
		t.Fatalf("SetFollowStatus() second error = %v", err)
	}
	if changed {
		t.Fatalf("SetFollowStatus() second changed = true, want false once the row left PENDING")
	}
	following, err := repo.CountFollowing(ctx, "a")
	if err != nil {
		t.Fatalf("CountFollowing() error = %v", err)
	}
	if following != 1 {
		t.Fatalf("CountFollowing() = %d, want 1", following)
	}

	deleted, err := repo.DeleteFollow(ctx, first.ID)
	if err != nil {
		t.Fatalf("DeleteFollow() error = %v", err)
	}
	if !deleted {
		t.Fatalf("DeleteFollow() deleted = false, want true")
	}
	if _, err := repo.GetFollowByPair(ctx, "a", "b"); !errors.Is(err, ports.ErrFollowNotFound) {
		t.Fatalf("GetFollowByPair() error = %v, want ErrFollowNotFound", err)
	}
}

func TestNotificationUnreadLookupMatchesNullKeys(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	followID := "follow-1"
	withFollow := notification.ForFollow("b", "a", followID, notification.FollowRequest)
	withoutFollow := notification.Key{RecipientID: "b", ActorID: "a", Type: notification.FollowRequest}

	if _, err := repo.CreateNotification(ctx, withFollow, now); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	if _, found, err := repo.FindUnread(ctx, withoutFollow); err != nil || found {
		t.Fatalf("FindUnread(nil follow) found = %v, err = %v, want not found", found, err)
	}
	if _, found, err := repo.FindUnread(ctx, withFollow); err != nil || !found {
		t.Fatalf("FindUnread(follow) found = %v, err = %v, want found", found, err)
	}

	updated, err := repo.MarkRead(ctx, withFollow, now)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("MarkRead() updated = %d, want 1", updated)
	}
	if _, found, err := repo.FindUnread(ctx, withFollow); err != nil || found {
		t.Fatalf("FindUnread() after read found = %v, err = %v", found, err)
	}

	items, err := repo.ListNotifications(ctx, ports.NotificationFilter{RecipientID: "b"})
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if len(items) != 1 || items[0].ReadAt == nil {
		t.Fatalf("ListNotifications() = %+v", items)
	}
}
