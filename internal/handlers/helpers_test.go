package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"FindIt/internal/config"
	"FindIt/internal/handlers"
	"FindIt/internal/middleware"
	"FindIt/internal/model"
	"FindIt/internal/repo"
	"FindIt/internal/service"
)

const testSecret = "test-secret"

// Minimal mocks
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

func testConfig() *config.Config {
	return &config.Config{AuthSecret: testSecret, VerifyRateCapacity: 10}
}

func openStore(t *testing.T) repo.Store {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))
	return repo.NewStore(db)
}

// newTestRouter: роутер с мок-репозиторием пользователей, для user-тестов.
func newTestRouter(t *testing.T, ur repo.UserRepository) http.Handler {
	t.Helper()
	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)
	st := openStore(t)

	userSvc := service.NewUserService(ur)
	itemSvc := service.NewItemService(st.Items(), logger)
	claimSvc := service.NewClaimService(st, nil, logger, service.ClaimConfig{})

	return handlers.NewHandler(userSvc, itemSvc, claimSvc, logger, testConfig(), nil).Router
}

// api: роутер поверх настоящей sqlite-базы.
type api struct {
	t      *testing.T
	router http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)
	st := openStore(t)

	userSvc := service.NewUserService(st.Users())
	itemSvc := service.NewItemService(st.Items(), logger)
	claimSvc := service.NewClaimService(st, nil, logger, service.ClaimConfig{MaxAttempts: 3})

	h := handlers.NewHandler(userSvc, itemSvc, claimSvc, logger, testConfig(), nil)
	return &api{t: t, router: h.Router}
}

// client: зарегистрированный пользователь со своей cookie.
type client struct {
	api    *api
	id     int64
	cookie *http.Cookie
}

func (a *api) register(login, fullName string) *client {
	a.t.Helper()
	rr := a.do(nil, http.MethodPost, "/api/user/register", map[string]string{"login": login, "password": "pw", "full_name": fullName})
	require.Equal(a.t, http.StatusOK, rr.Code, rr.Body.String())

	var u handlers.UserDTO
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &u))
	c := &client{api: a, id: u.ID}
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == middleware.CookieName {
			c.cookie = ck
		}
	}
	require.NotNil(a.t, c.cookie)
	return c
}

func (a *api) do(c *client, method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c != nil {
		req.AddCookie(c.cookie)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.api.t.Helper()
	return c.api.do(c, method, path, body)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorKind(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handlers.ErrorResponse](t, rr).Error
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}
