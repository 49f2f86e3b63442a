// internal/db/store_test.go
package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"fillermed.kz/internal/config"
	"fillermed.kz/internal/models"

	"github.com/google/uuid"

	_ "github.com/go-sql-driver/mysql"
)

// openTestStore подключается к реальной MariaDB, если задан TEST_DATABASE_DSN.
// Без него тесты пропускаются: семантику хранилища покрывает MemoryStore,
// здесь проверяется именно слой поверх базы (включая unique-индекс слота).
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN не задан, интеграционные тесты БД пропущены")
	}
	cfg := &config.Config{
		Database: config.DatabaseConfig{DSN: dsn},
		Admin: config.AdminConfig{
			Username: "receptionist",
			Password: "welcome123",
			Role:     "receptionist",
		},
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("подключение к тестовой БД: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	ClearTestTables(t, s, "appointments", "patients")
	return s
}

func testAppointment(patientID, date, startTime string) *models.Appointment {
	now := time.Now()
	return &models.Appointment{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Date:      date,
		StartTime: startTime,
		Status:    models.AppointmentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestStoreSlotConstraint(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testAppointment(uuid.NewString(), "2026-10-01", "10:00")
	if err := s.CreateAppointment(ctx, first); err != nil {
		t.Fatalf("первая бронь: %v", err)
	}

	dup := testAppointment(uuid.NewString(), "2026-10-01", "10:00")
	if err := s.CreateAppointment(ctx, dup); !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("повторная бронь слота: ожидался ErrDuplicateSlot, получено %v", err)
	}

	// Перенос в занятый слот упирается в тот же индекс.
	other := testAppointment(uuid.NewString(), "2026-10-01", "11:00")
	if err := s.CreateAppointment(ctx, other); err != nil {
		t.Fatalf("бронь соседнего слота: %v", err)
	}
	err := s.RescheduleAppointment(ctx, other.ID, "2026-10-01", "10:00", "", false)
	if !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("перенос в занятый слот: ожидался ErrDuplicateSlot, получено %v", err)
	}

	// После удаления держателя слот снова свободен.
	if err := s.DeleteAppointment(ctx, first.ID); err != nil {
		t.Fatalf("удаление: %v", err)
	}
	if err := s.RescheduleAppointment(ctx, other.ID, "2026-10-01", "10:00", "перенос", true); err != nil {
		t.Fatalf("перенос в освободившийся слот: %v", err)
	}
	moved, err := s.GetAppointment(ctx, other.ID)
	if err != nil {
		t.Fatalf("чтение после переноса: %v", err)
	}
	if moved.Status != models.AppointmentStatusConfirmed || moved.StartTime != "10:00" {
		t.Fatalf("после переноса: %+v", moved)
	}
}

func TestStoreNoOpUpdateIsNotNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &models.Patient{
		ID:        uuid.NewString(),
		FirstName: "Асел",
		LastName:  "Тестовая",
		Phone:     "+7 700 000 00 00",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.CreatePatient(ctx, p); err != nil {
		t.Fatalf("создание пациента: %v", err)
	}

	// Обновление теми же значениями не меняет строк, но это не "не найдено".
	phone := p.Phone
	if err := s.UpdatePatient(ctx, p.ID, models.PatientUpdate{Phone: &phone}); err != nil {
		t.Fatalf("повторное обновление тем же значением: %v", err)
	}

	if err := s.UpdatePatient(ctx, uuid.NewString(), models.PatientUpdate{Phone: &phone}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("обновление несуществующего пациента: ожидался ErrNotFound, получено %v", err)
	}
}
