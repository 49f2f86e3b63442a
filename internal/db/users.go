// internal/db/users.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fillermed.kz/internal/auth"
	"fillermed.kz/internal/models"

	"github.com/google/uuid"
)

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`
	var u models.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска пользователя по имени: %w", err)
	}
	return &u, nil
}

// SeedDefaultUser создает учетную запись регистратора, если таблица users
// пуста. Пароль хранится только как bcrypt-хеш.
func (s *Store) SeedDefaultUser(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(s.admin.Password)
	if err != nil {
		return fmt.Errorf("ошибка хеширования пароля пользователя по умолчанию: %w", err)
	}

	query := `INSERT INTO users (id, username, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query, uuid.NewString(), s.admin.Username, hash, s.admin.Role, time.Now())
	if err != nil {
		return fmt.Errorf("не удалось создать пользователя по умолчанию: %w", err)
	}
	slog.Info("Пользователь по умолчанию создан", "username", s.admin.Username, "role", s.admin.Role)
	return nil
}
