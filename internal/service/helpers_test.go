package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"FindIt/internal/core/claim"
	"FindIt/internal/core/thread"
	"FindIt/internal/events"
	"FindIt/internal/model"
	"FindIt/internal/repo"
)

// мок для events.Publisher
type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev events.ClaimEvent) error {
	return m.Called(ctx, ev).Error(0)
}

var _ events.Publisher = (*mockPublisher)(nil)

// testClock: управляемые часы сервиса
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type env struct {
	store  repo.Store
	svc    *ClaimService
	items  *ItemService
	pub    *mockPublisher
	clock  *testClock
	finder *model.User
	alice  *model.User // основной заявитель
	bob    *model.User // второй заявитель
	eve    *model.User // посторонний
	item   *model.Item
}

const goodProof = "Black leather wallet with a library card inside"

func newEnv(t *testing.T, cfg ClaimConfig) *env {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))

	e := &env{
		store: repo.NewStore(db),
		pub:   new(mockPublisher),
		clock: &testClock{t: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)},
	}
	e.pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	log := zap.NewNop().Sugar()
	e.svc = NewClaimService(e.store, e.pub, log, cfg)
	e.svc.now = e.clock.Now
	e.items = NewItemService(e.store.Items(), log)

	ctx := context.Background()
	mk := func(login, name string) *model.User {
		u, err := e.store.Users().CreateUser(ctx, &model.User{Login: login, Password: "x", FullName: name})
		require.NoError(t, err)
		return u
	}
	e.finder = mk("finder", "Fiona Finder")
	e.alice = mk("alice", "Alice Owner")
	e.bob = mk("bob", "Bob Hopeful")
	e.eve = mk("eve", "")

	e.item, err = e.items.Report(ctx, e.finder.ID, ReportInput{Title: "Black wallet", Location: "Library"})
	require.NoError(t, err)
	return e
}

func (e *env) thread(t *testing.T, claimID string) []thread.Entry {
	t.Helper()
	msgs, err := e.store.Messages().List(context.Background(), claimID, 0)
	require.NoError(t, err)
	entries, err := model.Entries(msgs)
	require.NoError(t, err)
	return entries
}

func (e *env) status(t *testing.T, claimID string) claim.Status {
	t.Helper()
	c, err := e.store.Claims().GetByID(context.Background(), claimID)
	require.NoError(t, err)
	return c.Status
}

// assertReplays проверяет, что лента воспроизводит статус заявки
func (e *env) assertReplays(t *testing.T, claimID string) {
	t.Helper()
	st, err := thread.Replay(e.thread(t, claimID), e.clock.Now())
	require.NoError(t, err)
	require.Equal(t, e.status(t, claimID), st.Status)
}

func details() thread.IdentityResponsePayload {
	return thread.IdentityResponsePayload{Schema: thread.SchemaDetails, Details: &thread.IdentityDetails{
		FullName:          "Jane Doe",
		PlaceFound:        "Library",
		DateOfLoss:        "2026-03-30",
		LocationOfLoss:    "Reading room, near the windows",
		UnlockDescription: "No lock, it is a wallet",
	}}
}

// toHandover проводит заявку до handover_initiated
func (e *env) toHandover(t *testing.T, claimantID int64) *model.Claim {
	t.Helper()
	ctx := context.Background()
	c, err := e.svc.CreateClaim(ctx, e.item.ID, claimantID, goodProof)
	require.NoError(t, err)
	_, err = e.svc.RequestIdentity(ctx, c.ID, e.finder.ID, thread.SchemaDetails)
	require.NoError(t, err)
	_, err = e.svc.SubmitIdentity(ctx, c.ID, claimantID, details())
	require.NoError(t, err)
	c, err = e.svc.InitiateHandover(ctx, c.ID, e.finder.ID)
	require.NoError(t, err)
	return c
}

func wrongCode(code string) string {
	if code == "1234" {
		return "4321"
	}
	return "1234"
}
