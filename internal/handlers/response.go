package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"FindIt/internal/core/claim"
	"FindIt/internal/middleware"
	"FindIt/internal/service"
)

// ErrorResponse: тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[string]int{
	"not_found":          http.StatusNotFound,
	"forbidden":          http.StatusForbidden,
	"invalid_transition": http.StatusConflict,
	"claim_closed":       http.StatusConflict,
	"code_expired":       http.StatusGone,
	"code_mismatch":      http.StatusUnprocessableEntity,
	"validation_failed":  http.StatusBadRequest,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorKind(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, ErrorResponse{Error: kind, Message: msg})
}

// writeError переводит доменную ошибку в HTTP-ответ. Неизвестные ошибки
// логируются и отдаются как internal без подробностей.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrLoginTaken):
		writeErrorKind(w, http.StatusConflict, "login_taken", err.Error())
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		writeErrorKind(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}
	if kind := claim.Kind(err); kind != "" {
		logger.Debugw(op+": rejected", "kind", kind, "error", err)
		writeErrorKind(w, kindStatus[kind], kind, err.Error())
		return
	}
	logger.Errorw(op+": internal error", "error", err)
	writeErrorKind(w, http.StatusInternalServerError, "internal", "internal error")
}

// currentUser достаёт ID пользователя или отвечает 401.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	uid, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeErrorKind(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return uid, ok
}

// decodeBody читает JSON; пустое тело допустимо.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorKind(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return false
	}
	return true
}
