package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName: cookie с JWT пользователя.
const CookieName = "auth_token"

// TokenTTL: срок действия токена.
const TokenTTL = 24 * time.Hour

type ctxKey struct{}

// Claims: содержимое JWT.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// BuildToken подписывает JWT для пользователя.
func BuildToken(userID int64, secret string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия, возвращает ID пользователя.
func ParseToken(tokenStr, secret string) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, errors.New("invalid token")
	}
	return claims.UserID, nil
}

// SetLoginCookie выписывает токен и кладёт его в cookie ответа.
// Токен также возвращается в заголовке Authorization для CLI-клиента.
func SetLoginCookie(w http.ResponseWriter, userID int64, secret string) error {
	token, err := BuildToken(userID, secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(TokenTTL),
	})
	w.Header().Set("Authorization", "Bearer "+token)
	return nil
}

// WithAuth кладёт user_id в контекст, если запрос несёт валидный токен
// (cookie или Authorization: Bearer). Без токена запрос проходит анонимно.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CookieName); err == nil {
				token = c.Value
			}
			if h := r.Header.Get("Authorization"); token == "" && strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
			if token != "" {
				if uid, err := ParseToken(token, secret); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, uid))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext возвращает ID аутентифицированного пользователя.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(ctxKey{}).(int64)
	return uid, ok
}

// WithUserID кладёт ID пользователя в контекст (для тестов обработчиков).
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}
