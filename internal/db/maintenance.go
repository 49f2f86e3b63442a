// internal/db/maintenance.go
package db

import (
	"context"
	"fmt"
	"log/slog"
)

// ClearClinicalData удаляет всех пациентов и все записи на прием.
func (s *Store) ClearClinicalData(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM appointments`); err != nil {
		return fmt.Errorf("не удалось очистить таблицу appointments: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM patients`); err != nil {
		return fmt.Errorf("не удалось очистить таблицу patients: %w", err)
	}
	slog.Info("Клинические данные удалены (patients, appointments)")
	return nil
}

// Reset очищает все данные, включая пользователей, и заново создает
// учетную запись по умолчанию.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.ClearClinicalData(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("не удалось очистить таблицу users: %w", err)
	}
	if err := s.SeedDefaultUser(ctx); err != nil {
		return err
	}
	slog.Info("База данных сброшена и заполнена начальными данными")
	return nil
}
