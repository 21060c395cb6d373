package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"FindIt/internal/config"
	"FindIt/internal/handlers"
	"FindIt/internal/middleware"
	"FindIt/internal/repo"
	"FindIt/internal/service"
)

// withTempConfig: конфиг клиента, у которого токен и база лежат в temp.
func withTempConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ServerURL:    serverURL,
		ClientDBPath: filepath.Join(dir, "db"),
		TokenFile:    filepath.Join(dir, "auth_token"),
	}
}

// перехват stdout на время теста
func withStdoutCapture(t *testing.T, fn func()) string {
	t.Helper()
	old := Out
	var buf bytes.Buffer
	Out = &buf
	defer func() { Out = old }()
	fn()
	return buf.String()
}

// run выполняет команду через Dispatch и возвращает вывод и код выхода.
func run(t *testing.T, cfg *config.Config, args ...string) (string, int) {
	t.Helper()
	var code int
	out := withStdoutCapture(t, func() { code = Dispatch(context.Background(), cfg, args) })
	return out, code
}

// newServer поднимает настоящий FindIt API поверх sqlite в памяти.
func newServer(t *testing.T) string {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := zap.NewNop().Sugar()
	middleware.SetLogger(log)
	st := repo.NewStore(db)
	cfg := &config.Config{AuthSecret: "cli-test"}
	h := handlers.NewHandler(
		service.NewUserService(st.Users()),
		service.NewItemService(st.Items(), log),
		service.NewClaimService(st, nil, log, service.ClaimConfig{}),
		log, cfg, nil,
	)
	ts := httptest.NewServer(h.Router)
	t.Cleanup(func() {
		ts.Close()
		_ = sqlDB.Close()
	})
	return ts.URL
}

func capture(t *testing.T, re, out string) string {
	t.Helper()
	m := regexp.MustCompile(re).FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("%q not found in output:\n%s", re, out)
	}
	return m[1]
}
