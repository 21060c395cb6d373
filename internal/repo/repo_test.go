package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"FindIt/internal/core/claim"
	"FindIt/internal/model"
)

// newTestDB инициализирует отдельную in-memory SQLite (modernc.org/sqlite) для каждого теста
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	return db
}

type fixture struct {
	finder, claimant, other *model.User
	item                    *model.Item
}

// seed создаёт трёх пользователей и одну вещь нашедшего
func seed(t *testing.T, s Store) fixture {
	t.Helper()
	ctx := context.Background()
	mk := func(login, name string) *model.User {
		u, err := s.Users().CreateUser(ctx, &model.User{Login: login, Password: "hash", FullName: name})
		if err != nil {
			t.Fatalf("create user: %v", err)
		}
		return u
	}
	f := fixture{
		finder:   mk("finder", "Fiona Finder"),
		claimant: mk("claimant", "Carl Claimant"),
		other:    mk("other", ""),
	}
	f.item = &model.Item{ID: uuid.NewString(), FinderID: f.finder.ID, Title: "Blue umbrella", Status: model.ItemFound}
	if err := s.Items().Create(ctx, f.item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return f
}

func mkClaim(t *testing.T, s Store, f fixture, claimantID int64, st claim.Status) *model.Claim {
	t.Helper()
	c := &model.Claim{ID: uuid.NewString(), ItemID: f.item.ID, FinderID: f.finder.ID, ClaimantID: claimantID, Status: st}
	if err := s.Claims().Create(context.Background(), c); err != nil {
		t.Fatalf("create claim: %v", err)
	}
	return c
}
