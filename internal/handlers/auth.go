// internal/handlers/auth.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fillermed.kz/internal/auth"
	"fillermed.kz/internal/db"
	"fillermed.kz/internal/middleware"
	"fillermed.kz/internal/models"
	"fillermed.kz/internal/validation"

	"github.com/alexedwards/scs/v2"
)

type AuthHandlers struct {
	SessionManager *scs.SessionManager
	Users          db.UserStore
}

func NewAuthHandlers(sm *scs.SessionManager, users db.UserStore) *AuthHandlers {
	return &AuthHandlers{
		SessionManager: sm,
		Users:          users,
	}
}

// dummyPasswordHash сравнивается с паролем, когда логин не найден в БД.
var dummyPasswordHash, _ = auth.HashPassword("not-a-real-password")

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// LoginHandler сверяет креды с единственной учетной записью в БД.
// Пароль хранится как bcrypt-хеш, сравнение постоянное по времени.
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validation.ValidateStruct(form); errs != nil {
		writeError(w, http.StatusBadRequest, validation.FirstError(errs))
		return
	}

	user, err := h.Users.GetUserByUsername(r.Context(), form.Username)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		slog.Error("Ошибка поиска пользователя при входе", "username", form.Username, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	passwordMatch := false
	if user != nil {
		passwordMatch = auth.CheckPasswordHash(form.Password, user.PasswordHash)
	} else {
		// Сравнение выполняется и для несуществующего логина, чтобы по
		// времени ответа нельзя было узнать, существует ли пользователь.
		auth.CheckPasswordHash(form.Password, dummyPasswordHash)
	}
	if !passwordMatch {
		slog.Warn("Неудачная попытка входа", "username", form.Username)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// Новый токен сессии после логина, чтобы исключить фиксацию сессии.
	if err := h.SessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("Ошибка обновления токена сессии", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.SessionManager.Put(r.Context(), string(middleware.UserIDContextKey), user.ID)
	h.SessionManager.Put(r.Context(), string(middleware.UsernameContextKey), user.Username)
	h.SessionManager.Put(r.Context(), string(middleware.RoleContextKey), user.Role)

	slog.Info("Пользователь успешно вошел", "user_id", user.ID, "username", user.Username, "role", user.Role)
	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		User:    user,
	})
}

func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionManager.Destroy(r.Context()); err != nil {
		slog.Error("Ошибка уничтожения сессии при выходе", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not log out")
		return
	}
	writeMessage(w, "Logged out successfully")
}

func (h *AuthHandlers) AuthStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID := h.SessionManager.GetString(r.Context(), string(middleware.UserIDContextKey))
	if userID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user": map[string]string{
			"id":       userID,
			"username": h.SessionManager.GetString(r.Context(), string(middleware.UsernameContextKey)),
			"role":     h.SessionManager.GetString(r.Context(), string(middleware.RoleContextKey)),
		},
	})
}
