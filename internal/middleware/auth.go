// internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
)

type contextKey string

const UserIDContextKey contextKey = "userID"
const UsernameContextKey contextKey = "username"
const RoleContextKey contextKey = "role"

// RequireAuthentication пропускает запрос дальше только при наличии активной
// сессии. Фильтр композируется на каждый мутирующий маршрут без исключений —
// выключаемого варианта не существует.
func RequireAuthentication(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessionManager.GetString(r.Context(), string(UserIDContextKey))
			if userID == "" {
				slog.Warn("Доступ запрещен: пользователь не аутентифицирован", "path", r.URL.Path, "method", r.Method)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
			ctx = context.WithValue(ctx, UsernameContextKey, sessionManager.GetString(ctx, string(UsernameContextKey)))
			ctx = context.WithValue(ctx, RoleContextKey, sessionManager.GetString(ctx, string(RoleContextKey)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
