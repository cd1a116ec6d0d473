package follow

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainnotification "catalogo/internal/domain/notification"
	"catalogo/internal/domain/social"
	"catalogo/internal/errs"
	"catalogo/internal/infrastructure/persistence/gormstore/model"
	"catalogo/internal/infrastructure/persistence/gormstore/repository"
	"catalogo/internal/infrastructure/persistence/gormstore/uow"
	"catalogo/internal/ports"
	usenotification "catalogo/internal/usecase/notification"
)

type testCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fixture struct {
	svc     *Service
	db      *gorm.DB
	users   *repository.UserRepository
	follows *repository.FollowRepository
	notes   *repository.NotificationRepository
	cache   *testCache
}

// sqliteTestDSN opens a WAL database shared by several connections so
// concurrent calls overlap instead of queueing on a single connection.
func sqliteTestDSN(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(sqliteTestDSN(t, "follow.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(4)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	f := &fixture{
		db:      db,
		users:   repository.NewUserRepository(db),
		follows: repository.NewFollowRepository(db),
		notes:   repository.NewNotificationRepository(db),
		cache:   newTestCache(),
	}
	f.svc = NewService(f.users, f.follows, uow.NewUnitOfWork(db), usenotification.NewService(f.notes), f.cache, time.Minute, nil)
	return f
}

func (f *fixture) createUser(t *testing.T, id string, private bool) {
	t.Helper()
	if _, err := f.users.CreateUser(context.Background(), ports.UserCreate{ID: id, Email: id + "@example.com", IsPrivate: private}); err != nil {
		t.Fatalf("CreateUser(%s) error = %v", id, err)
	}
}

func (f *fixture) notifications(t *testing.T, recipientID string, unreadOnly bool) []ports.Notification {
	t.Helper()
	items, err := f.notes.ListNotifications(context.Background(), ports.NotificationFilter{RecipientID: recipientID, UnreadOnly: unreadOnly})
	if err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	return items
}

func (f *fixture) followRows(t *testing.T, followerID string, followingID string) int64 {
	t.Helper()
	var count int64
	if err := f.db.Model(&model.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error; err != nil {
		t.Fatalf("count follows: %v", err)
	}
	return count
}

func TestFollowPublicTarget(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", false)

	result, err := f.svc.Follow(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if result.Relationship != social.RelationshipFollowing || result.RequiresApproval {
		t.Fatalf("Follow() = %+v, want FOLLOWING without approval", result)
	}
	if n := f.followRows(t, "u1", "u2"); n != 1 {
		t.Fatalf("follow rows = %d, want 1", n)
	}
	notes := f.notifications(t, "u2", true)
	if len(notes) != 1 || notes[0].Type != domainnotification.FollowCreated {
		t.Fatalf("u2 notifications = %+v, want one FOLLOW_CREATED", notes)
	}

	again, err := f.svc.Follow(context.Background(), "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() again error = %v", err)
	}
	if again.Relationship != social.RelationshipFollowing || again.FollowID != result.FollowID {
		t.Fatalf("Follow() again = %+v", again)
	}
	if n := len(f.notifications(t, "u2", false)); n != 1 {
		t.Fatalf("u2 notifications = %d after repeat, want 1", n)
	}
}

func TestFollowPrivateTargetThenAccept(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	ctx := context.Background()

	result, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if result.Relationship != social.RelationshipRequested || !result.RequiresApproval {
		t.Fatalf("Follow() = %+v, want REQUESTED with approval", result)
	}

	requests, err := f.svc.ListFollowRequests(ctx, "u2", 0)
	if err != nil {
		t.Fatalf("ListFollowRequests() error = %v", err)
	}
	if len(requests) != 1 || requests[0].ID != result.FollowID {
		t.Fatalf("ListFollowRequests() = %+v", requests)
	}

	accepted, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: result.FollowID, Action: "accept"})
	if err != nil {
		t.Fatalf("RespondToFollowRequest() error = %v", err)
	}
	if accepted.Relationship != social.RelationshipFollowing {
		t.Fatalf("RespondToFollowRequest() = %+v, want FOLLOWING", accepted)
	}

	requesterNotes := f.notifications(t, "u1", false)
	if len(requesterNotes) != 1 || requesterNotes[0].Type != domainnotification.FollowAccepted {
		t.Fatalf("u1 notifications = %+v, want one FOLLOW_ACCEPTED", requesterNotes)
	}
	if unread := f.notifications(t, "u2", true); len(unread) != 0 {
		t.Fatalf("u2 unread notifications = %+v, want request marked read", unread)
	}

	counters, err := f.svc.FollowCounters(ctx, "u2")
	if err != nil {
		t.Fatalf("FollowCounters() error = %v", err)
	}
	if counters.Followers != 1 || counters.Following != 0 {
		t.Fatalf("FollowCounters() = %+v", counters)
	}
}

func TestFollowPendingRenotifiesOnlyWhenRead(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Follow(ctx, "u1", "u2"); err != nil {
			t.Fatalf("Follow() #%d error = %v", i, err)
		}
	}
	if n := len(f.notifications(t, "u2", false)); n != 1 {
		t.Fatalf("u2 notifications = %d, want 1", n)
	}

	if _, err := f.notes.MarkAllRead(ctx, "u2", time.Now().UTC()); err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	result, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if result.Relationship != social.RelationshipRequested {
		t.Fatalf("Follow() = %+v, want REQUESTED", result)
	}
	if n := len(f.notifications(t, "u2", true)); n != 1 {
		t.Fatalf("u2 unread notifications = %d, want 1 fresh request", n)
	}
}

func TestFollowAutoPromotesWhenTargetTurnsPublic(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	ctx := context.Background()

	first, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if err := f.users.SetPrivate(ctx, "u2", false); err != nil {
		t.Fatalf("SetPrivate() error = %v", err)
	}

	result, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() after public error = %v", err)
	}
	if result.Relationship != social.RelationshipFollowing || result.FollowID != first.FollowID {
		t.Fatalf("Follow() = %+v, want FOLLOWING on the same edge", result)
	}

	unread := f.notifications(t, "u2", true)
	if len(unread) != 1 || unread[0].Type != domainnotification.FollowCreated {
		t.Fatalf("u2 unread = %+v, want only FOLLOW_CREATED", unread)
	}
	if all := f.notifications(t, "u2", false); len(all) != 2 {
		t.Fatalf("u2 notifications = %d, want request and created", len(all))
	}
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "a", false)
	f.createUser(t, "b", false)
	ctx := context.Background()

	if _, err := f.svc.Follow(ctx, "a", "b"); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if counters, err := f.svc.FollowCounters(ctx, "b"); err != nil || counters.Followers != 1 {
		t.Fatalf("FollowCounters() = %+v, %v, want 1 follower", counters, err)
	}

	result, err := f.svc.Unfollow(ctx, "a", "b")
	if err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
	if result.Relationship != social.RelationshipNone {
		t.Fatalf("Unfollow() = %+v, want NONE", result)
	}
	if n := f.followRows(t, "a", "b"); n != 0 {
		t.Fatalf("follow rows = %d, want 0", n)
	}
	counters, err := f.svc.FollowCounters(ctx, "b")
	if err != nil {
		t.Fatalf("FollowCounters() error = %v", err)
	}
	if counters.Followers != 0 {
		t.Fatalf("FollowCounters() followers = %d, want 0 after unfollow", counters.Followers)
	}

	if _, err := f.svc.Unfollow(ctx, "a", "b"); err != nil {
		t.Fatalf("Unfollow() repeat error = %v", err)
	}
}

func TestUnfollowCancelsPendingRequest(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "a", false)
	f.createUser(t, "b", true)
	ctx := context.Background()

	if _, err := f.svc.Follow(ctx, "a", "b"); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if _, err := f.svc.Unfollow(ctx, "a", "b"); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
	if n := f.followRows(t, "a", "b"); n != 0 {
		t.Fatalf("follow rows = %d, want 0", n)
	}
	if unread := f.notifications(t, "b", true); len(unread) != 0 {
		t.Fatalf("b unread = %+v, want cancelled request read", unread)
	}
}

func TestConcurrentPrivateFollowsCreateOneRequest(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "a", false)
	f.createUser(t, "b", true)

	const callers = 8
	var wg sync.WaitGroup
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Follow(context.Background(), "a", "b")
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("Follow() error = %v", err)
		}
	}

	if n := f.followRows(t, "a", "b"); n != 1 {
		t.Fatalf("follow rows = %d, want 1", n)
	}
	unread := f.notifications(t, "b", true)
	if len(unread) > 1 {
		t.Fatalf("unread FOLLOW_REQUEST notifications = %d, want at most 1", len(unread))
	}
}

func TestFollowErrors(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	f.createUser(t, "u3", false)
	ctx := context.Background()

	if _, err := f.svc.Follow(ctx, "u1", "u1"); errs.KindOf(err) != errs.KindInvalidOperation {
		t.Fatalf("Follow(self) error = %v, want invalid operation", err)
	}
	if _, err := f.svc.Unfollow(ctx, "u1", "u1"); errs.KindOf(err) != errs.KindInvalidOperation {
		t.Fatalf("Unfollow(self) error = %v, want invalid operation", err)
	}
	if _, err := f.svc.Follow(ctx, "u1", "ghost"); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("Follow(ghost) error = %v, want not found", err)
	}
	if _, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: "missing", Action: "accept"}); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("RespondToFollowRequest(missing) error = %v, want not found", err)
	}

	request, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if _, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u3", FollowID: request.FollowID, Action: "accept"}); errs.KindOf(err) != errs.KindForbidden {
		t.Fatalf("RespondToFollowRequest(other user) error = %v, want forbidden", err)
	}
	if _, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: "ignore"}); errs.KindOf(err) != errs.KindInvalidOperation {
		t.Fatalf("RespondToFollowRequest(ignore) error = %v, want invalid operation", err)
	}
	if _, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: "accept"}); err != nil {
		t.Fatalf("RespondToFollowRequest() error = %v", err)
	}
	if _, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: "reject"}); errs.KindOf(err) != errs.KindInvalidOperation {
		t.Fatalf("RespondToFollowRequest(decided) error = %v, want invalid operation", err)
	}
}

func TestRejectFollowRequestDeletesRow(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	ctx := context.Background()

	request, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	result, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: "reject"})
	if err != nil {
		t.Fatalf("RespondToFollowRequest() error = %v", err)
	}
	if result.Relationship != social.RelationshipNone {
		t.Fatalf("RespondToFollowRequest() = %+v, want NONE", result)
	}
	if n := f.followRows(t, "u1", "u2"); n != 0 {
		t.Fatalf("follow rows = %d, want 0", n)
	}
	if n := len(f.notifications(t, "u1", false)); n != 0 {
		t.Fatalf("u1 notifications = %d, want none on reject", n)
	}
}

func TestRelationship(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	f.createUser(t, "u3", false)
	ctx := context.Background()

	if _, err := f.svc.Follow(ctx, "u1", "u2"); err != nil {
		t.Fatalf("Follow(u2) error = %v", err)
	}
	if _, err := f.svc.Follow(ctx, "u1", "u3"); err != nil {
		t.Fatalf("Follow(u3) error = %v", err)
	}

	tests := []struct {
		viewer string
		target string
		want   social.Relationship
	}{
		{viewer: "u1", target: "u1", want: social.RelationshipSelf},
		{viewer: "u1", target: "u2", want: social.RelationshipRequested},
		{viewer: "u1", target: "u3", want: social.RelationshipFollowing},
		{viewer: "u2", target: "u1", want: social.RelationshipNone},
	}
	for _, tt := range tests {
		got, err := f.svc.Relationship(ctx, tt.viewer, tt.target)
		if err != nil {
			t.Fatalf("Relationship(%s, %s) error = %v", tt.viewer, tt.target, err)
		}
		if got != tt.want {
			t.Fatalf("Relationship(%s, %s) = %s, want %s", tt.viewer, tt.target, got, tt.want)
		}
	}
}

func TestConcurrentAcceptsAnswerRequestOnce(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	ctx := context.Background()

	request, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	const callers = 2
	var wg sync.WaitGroup
	errCh := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RespondToFollowRequest(context.Background(), RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: "accept"})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var succeeded, rejected int
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case errs.KindOf(err) == errs.KindInvalidOperation:
			rejected++
		default:
			t.Fatalf("RespondToFollowRequest() error = %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("accepts succeeded=%d rejected=%d, want 1 and 1", succeeded, rejected)
	}
	if unread := f.notifications(t, "u1", true); len(unread) != 1 || unread[0].Type != domainnotification.FollowAccepted {
		t.Fatalf("u1 unread = %+v, want exactly one FOLLOW_ACCEPTED", unread)
	}
}

// staleFollows returns a snapshot of the follow taken before another writer
// answered it, as a reader without a row lock would.
type staleFollows struct {
	*repository.FollowRepository
	snapshot ports.Follow
}

func (s staleFollows) GetFollowForUpdate(context.Context, string) (ports.Follow, error) {
	return s.snapshot, nil
}

func TestRespondOnStaleReadChangesNothing(t *testing.T) {
	for _, action := range []string{"accept", "reject"} {
		t.Run(action, func(t *testing.T) {
			f := setupFixture(t)
			f.createUser(t, "u1", false)
			f.createUser(t, "u2", true)
			ctx := context.Background()

			request, err := f.svc.Follow(ctx, "u1", "u2")
			if err != nil {
				t.Fatalf("Follow() error = %v", err)
			}
			pending, err := f.follows.GetFollow(ctx, request.FollowID)
			if err != nil {
				t.Fatalf("GetFollow() error = %v", err)
			}
			if _, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: "accept"}); err != nil {
				t.Fatalf("RespondToFollowRequest() error = %v", err)
			}

			stale := NewService(f.users, staleFollows{FollowRepository: f.follows, snapshot: pending}, uow.NewUnitOfWork(f.db), usenotification.NewService(f.notes), nil, time.Minute, nil)
			_, err = stale.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: action})
			if errs.KindOf(err) != errs.KindInvalidOperation {
				t.Fatalf("RespondToFollowRequest(stale %s) error = %v, want invalid operation", action, err)
			}

			if n := f.followRows(t, "u1", "u2"); n != 1 {
				t.Fatalf("follow rows = %d, want accepted edge kept", n)
			}
			if unread := f.notifications(t, "u1", true); len(unread) != 1 {
				t.Fatalf("u1 unread = %+v, want one FOLLOW_ACCEPTED", unread)
			}
		})
	}
}

func TestFollowCountersIgnoreSnapshotReadBeforeAccept(t *testing.T) {
	f := setupFixture(t)
	f.createUser(t, "u1", false)
	f.createUser(t, "u2", true)
	ctx := context.Background()

	request, err := f.svc.Follow(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}

	// A reader counts before the accept commits but stores its result after
	// the accept has invalidated the counters.
	var stale Counters
	lookup, err := f.svc.counters.Get(ctx, countersCacheKey("u2"), &stale)
	if err != nil {
		t.Fatalf("counters.Get() error = %v", err)
	}
	if _, err := f.svc.RespondToFollowRequest(ctx, RespondInput{CurrentUserID: "u2", FollowID: request.FollowID, Action: "accept"}); err != nil {
		t.Fatalf("RespondToFollowRequest() error = %v", err)
	}
	if err := f.svc.counters.Put(ctx, countersCacheKey("u2"), lookup.Generation, Counters{UserID: "u2"}); err != nil {
		t.Fatalf("counters.Put() error = %v", err)
	}

	counters, err := f.svc.FollowCounters(ctx, "u2")
	if err != nil {
		t.Fatalf("FollowCounters() error = %v", err)
	}
	if counters.Followers != 1 {
		t.Fatalf("FollowCounters() = %+v, want the accepted follower", counters)
	}
}
