// internal/db/appointments.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fillermed.kz/internal/models"

	"github.com/go-sql-driver/mysql"
)

const appointmentColumns = `id, patient_id, patient_name, date, start_time, end_time,
	type, notes, status, reschedule_reason, notify_patient, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (*models.Appointment, error) {
	var a models.Appointment
	var reason sql.NullString
	err := row.Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.Date, &a.StartTime, &a.EndTime,
		&a.Type, &a.Notes, &a.Status, &reason, &a.NotifyPatient,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reason.Valid {
		a.RescheduleReason = reason.String
	}
	return &a, nil
}

// isDuplicateSlot распознает нарушение UNIQUE KEY uniq_slot (date, start_time).
func isDuplicateSlot(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (s *Store) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY date, start_time`
	return s.queryAppointments(ctx, query)
}

func (s *Store) ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE date = ? ORDER BY start_time`
	return s.queryAppointments(ctx, query, date)
}

func (s *Store) queryAppointments(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка записей на прием: %w", err)
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			slog.Error("Ошибка сканирования записи на прием", "error", err)
			continue
		}
		appointments = append(appointments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации при получении записей на прием: %w", err)
	}
	return appointments, nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ?`
	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения записи на прием %s: %w", id, err)
	}
	return a, nil
}

// CreateAppointment вставляет запись; занятость слота гарантирует сама БД,
// поэтому конкурентные запросы на один слот не могут пройти оба.
func (s *Store) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	query := `INSERT INTO appointments (` + appointmentColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var reason sql.NullString
	if a.RescheduleReason != "" {
		reason = sql.NullString{String: a.RescheduleReason, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.PatientID, a.PatientName, a.Date, a.StartTime, a.EndTime,
		a.Type, a.Notes, a.Status, reason, a.NotifyPatient,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isDuplicateSlot(err) {
			return ErrDuplicateSlot
		}
		slog.Error("Ошибка создания записи на прием", "id", a.ID, "error", err)
		return fmt.Errorf("не удалось создать запись на прием: %w", err)
	}
	return nil
}

func (s *Store) UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) error {
	set := []string{}
	args := []any{}

	appendSet := func(column string, value *string) {
		if value != nil {
			set = append(set, column+" = ?")
			args = append(args, *value)
		}
	}
	appendSet("patient_id", upd.PatientID)
	appendSet("patient_name", upd.PatientName)
	appendSet("date", upd.Date)
	appendSet("start_time", upd.StartTime)
	appendSet("end_time", upd.EndTime)
	appendSet("type", upd.Type)
	appendSet("notes", upd.Notes)
	appendSet("status", upd.Status)

	set = append(set, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, id)

	query := "UPDATE appointments SET " + strings.Join(set, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateSlot(err) {
			return ErrDuplicateSlot
		}
		slog.Error("Ошибка обновления записи на прием", "id", id, "error", err)
		return fmt.Errorf("не удалось обновить запись на прием: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		if exists, errEx := s.appointmentExists(ctx, id); errEx != nil {
			return errEx
		} else if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		slog.Error("Ошибка удаления записи на прием", "id", id, "error", err)
		return fmt.Errorf("не удалось удалить запись на прием: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAppointmentStatus устанавливает статус без проверки переходов:
// любой статус может быть установлен из любого предыдущего.
func (s *Store) SetAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	query := `UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		slog.Error("Ошибка смены статуса записи на прием", "id", id, "status", status, "error", err)
		return fmt.Errorf("не удалось сменить статус записи: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		if exists, errEx := s.appointmentExists(ctx, id); errEx != nil {
			return errEx
		} else if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// RescheduleAppointment переносит запись и принудительно ставит confirmed —
// в том числе для отмененных записей (поведение исходной версии сохранено).
func (s *Store) RescheduleAppointment(ctx context.Context, id, date, startTime, reason string, notifyPatient bool) error {
	query := `UPDATE appointments SET
	            date = ?,
	            start_time = ?,
	            reschedule_reason = ?,
	            notify_patient = ?,
	            status = ?,
	            updated_at = ?
	          WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, date, startTime, reason, notifyPatient,
		models.AppointmentStatusConfirmed, time.Now(), id)
	if err != nil {
		if isDuplicateSlot(err) {
			return ErrDuplicateSlot
		}
		slog.Error("Ошибка переноса записи на прием", "id", id, "error", err)
		return fmt.Errorf("не удалось перенести запись: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		if exists, errEx := s.appointmentExists(ctx, id); errEx != nil {
			return errEx
		} else if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (s *Store) appointmentExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM appointments WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки существования записи на прием: %w", err)
	}
	return exists, nil
}
