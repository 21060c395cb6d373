package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"FindIt/internal/config"
	"FindIt/internal/middleware"
	"FindIt/internal/model"
	"FindIt/internal/service"
)

// UserHandler: регистрация, вход, текущий пользователь.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// UserDTO: пользователь в ответах API.
type UserDTO struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name,omitempty"`
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{ID: u.ID, Login: u.Login, FullName: u.FullName}
}

// Register создаёт пользователя и сразу логинит его.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorKind(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}
	u, err := h.UserService.Register(r.Context(), req.Login, req.Password, req.FullName)
	if err != nil {
		writeError(w, h.Logger, "Register", err)
		return
	}
	h.loggedIn(w, u)
}

// Login проверяет логин и пароль.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorKind(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}
	u, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	h.loggedIn(w, u)
}

func (h *UserHandler) loggedIn(w http.ResponseWriter, u *model.User) {
	if err := middleware.SetLoginCookie(w, u.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("failed to issue token", "user_id", u.ID, "error", err)
		writeErrorKind(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

// Me возвращает текущего пользователя.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, err := h.UserService.Get(r.Context(), uid)
	if err != nil {
		writeError(w, h.Logger, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}
