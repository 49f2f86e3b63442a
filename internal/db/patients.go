// internal/db/patients.go
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
)

const patientColumns = `id, first_name, last_name, email, phone, date_of_birth,
	address, medical_history, allergies, emergency_contact, created_at, updated_at`

func scanPatient(row interface{ Scan(...any) error }) (*models.Patient, error) {
	var p models.Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth,
		&p.Address, &p.MedicalHistory, &p.Allergies, &p.EmergencyContact,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPatients(ctx context.Context) ([]models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пациентов: %w", err)
	}
	defer rows.Close()

	patients := []models.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			slog.Error("Ошибка сканирования пациента", "error", err)
			continue
		}
		patients = append(patients, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации при получении пациентов: %w", err)
	}
	return patients, nil
}

func (s *Store) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = ?`
	p, err := scanPatient(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пациента %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) CreatePatient(ctx context.Context, p *models.Patient) error {
	query := `INSERT INTO patients (` + patientColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth,
		p.Address, p.MedicalHistory, p.Allergies, p.EmergencyContact,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		slog.Error("Ошибка создания пациента", "id", p.ID, "error", err)
		return fmt.Errorf("не удалось создать пациента: %w", err)
	}
	return nil
}

// UpdatePatient обновляет только переданные поля и re-stamp'ит updated_at.
// Непереданные поля остаются без изменений.
func (s *Store) UpdatePatient(ctx context.Context, id string, upd models.PatientUpdate) error {
	set := []string{}
	args := []any{}

	appendSet := func(column string, value *string) {
		if value != nil {
			set = append(set, column+" = ?")
			args = append(args, *value)
		}
	}
	appendSet("first_name", upd.FirstName)
	appendSet("last_name", upd.LastName)
	appendSet("email", upd.Email)
	appendSet("phone", upd.Phone)
	appendSet("date_of_birth", upd.DateOfBirth)
	appendSet("address", upd.Address)
	appendSet("medical_history", upd.MedicalHistory)
	appendSet("allergies", upd.Allergies)
	appendSet("emergency_contact", upd.EmergencyContact)

	set = append(set, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, id)

	query := "UPDATE patients SET " + strings.Join(set, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Error("Ошибка обновления пациента", "id", id, "error", err)
		return fmt.Errorf("не удалось обновить пациента: %w", err)
	}
	// affected == 0 означает либо отсутствие записи, либо отсутствие изменений —
	// различаем отдельным запросом.
	if affected, _ := res.RowsAffected(); affected == 0 {
		if exists, errEx := s.patientExists(ctx, id); errEx != nil {
			return errEx
		} else if !exists {
			return ErrNotFound
		}
	}
	return nil
}

func (s *Store) DeletePatient(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		slog.Error("Ошибка удаления пациента", "id", id, "error", err)
		return fmt.Errorf("не удалось удалить пациента: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	// Каскадного удаления нет: записи на прием с этим patient_id остаются.
	return nil
}

func (s *Store) patientExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM patients WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки существования пациента: %w", err)
	}
	return exists, nil
}
