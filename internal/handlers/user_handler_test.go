package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"FindIt/internal/handlers"
	"FindIt/internal/model"
)

func hasAuthCookie(rr *httptest.ResponseRecorder) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "auth_token" {
			return true
		}
	}
	return false
}

func TestUser_Register(t *testing.T) {
	m := new(mockUserRepo)
	router := newTestRouter(t, m)

	t.Run("ok", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "john").Return(nil, gorm.ErrRecordNotFound).Once()
		created := &model.User{ID: 42, Login: "john", FullName: "John Smith"}
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Login == "john" && u.Password != "" && u.Password != "p" && u.FullName == "John Smith"
		})).Return(created, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(`{"login":"john","password":"p","full_name":"John Smith"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, hasAuthCookie(rr), "Set-Cookie auth_token expected")
		assert.NotEmpty(t, rr.Header().Get("Authorization"))
		assert.Equal(t, int64(42), decode[handlers.UserDTO](t, rr).ID)
		m.AssertExpectations(t)
	})

	t.Run("conflict", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "john").Return(&model.User{ID: 1, Login: "john"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(`{"login":"john","password":"p"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "login_taken", errorKind(t, rr))
		m.AssertExpectations(t)
	})

	t.Run("bad body", func(t *testing.T) {
		m.ExpectedCalls = nil
		req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(`{`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty password", func(t *testing.T) {
		m.ExpectedCalls = nil
		req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader(`{"login":"john"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "validation_failed", errorKind(t, rr))
	})
}

func TestUser_Login(t *testing.T) {
	m := new(mockUserRepo)
	router := newTestRouter(t, m)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)

	t.Run("ok", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "alice").Return(&model.User{ID: 2, Login: "alice", Password: string(hash)}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"alice","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, hasAuthCookie(rr))
		m.AssertExpectations(t)
	})

	t.Run("unauthorized", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "alice").Return(&model.User{ID: 2, Login: "alice", Password: string(hash)}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"alice","password":"bad"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, hasAuthCookie(rr))
		m.AssertExpectations(t)
	})

	t.Run("unknown login", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "nobody").Return(nil, gorm.ErrRecordNotFound).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(`{"login":"nobody","password":"x"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		m.AssertExpectations(t)
	})
}

func TestUser_Me(t *testing.T) {
	m := new(mockUserRepo)
	router := newTestRouter(t, m)

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "unauthorized", errorKind(t, rr))
	})

	t.Run("authorized", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByID", mock.Anything, int64(77)).Return(&model.User{ID: 77, Login: "neo", FullName: "Thomas A."}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
		addAuthCookie(t, req, 77, testSecret)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		u := decode[handlers.UserDTO](t, rr)
		assert.Equal(t, "neo", u.Login)
		assert.Equal(t, "Thomas A.", u.FullName)
		m.AssertExpectations(t)
	})

	t.Run("foreign secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
		addAuthCookie(t, req, 77, "other-secret")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
