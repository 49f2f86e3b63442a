// internal/db/memory.go
package db

import (
	"context"
	"sync"
	"time"

	"fillermed.kz/internal/auth"
	"fillermed.kz/internal/config"
	"fillermed.kz/internal/models"

	"github.com/google/uuid"
)

// MemoryStore — реализация ClinicStore в памяти. Реализует те же интерфейсы и
// те же инварианты, что и MariaDB-хранилище (включая уникальность слота),
// и используется тестами обработчиков вместо реальной БД.
type MemoryStore struct {
	mu           sync.RWMutex
	patients     map[string]models.Patient
	appointments map[string]models.Appointment
	users        map[string]models.User
	slots        map[string]string // "date|start_time" -> appointment id
	admin        config.AdminConfig

	// PingErr позволяет тестам имитировать недоступную БД.
	PingErr error
}

var _ ClinicStore = (*MemoryStore)(nil)
var _ ClinicStore = (*Store)(nil)

func NewMemoryStore(admin config.AdminConfig) (*MemoryStore, error) {
	s := &MemoryStore{
		patients:     map[string]models.Patient{},
		appointments: map[string]models.Appointment{},
		users:        map[string]models.User{},
		slots:        map[string]string{},
		admin:        admin,
	}
	if err := s.seedDefaultUser(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MemoryStore) seedDefaultUser() error {
	hash, err := auth.HashPassword(s.admin.Password)
	if err != nil {
		return err
	}
	u := models.User{
		ID:           uuid.NewString(),
		Username:     s.admin.Username,
		PasswordHash: hash,
		Role:         s.admin.Role,
		CreatedAt:    time.Now(),
	}
	s.users[u.Username] = u
	return nil
}

func slotKey(date, startTime string) string {
	return date + "|" + startTime
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.PingErr
}

// --- Patients ---

func (s *MemoryStore) ListPatients(ctx context.Context) ([]models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryStore) GetPatient(ctx context.Context, id string) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) CreatePatient(ctx context.Context, p *models.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.ID] = *p
	return nil
}

func (s *MemoryStore) UpdatePatient(ctx context.Context, id string, upd models.PatientUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok {
		return ErrNotFound
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&p.FirstName, upd.FirstName)
	apply(&p.LastName, upd.LastName)
	apply(&p.Email, upd.Email)
	apply(&p.Phone, upd.Phone)
	apply(&p.DateOfBirth, upd.DateOfBirth)
	apply(&p.Address, upd.Address)
	apply(&p.MedicalHistory, upd.MedicalHistory)
	apply(&p.Allergies, upd.Allergies)
	apply(&p.EmergencyContact, upd.EmergencyContact)
	p.UpdatedAt = time.Now()
	s.patients[id] = p
	return nil
}

func (s *MemoryStore) DeletePatient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[id]; !ok {
		return ErrNotFound
	}
	delete(s.patients, id)
	return nil
}

// --- Appointments ---

func (s *MemoryStore) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, a)
	}
	return out, nil
}

func (s *MemoryStore) ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Appointment{}
	for _, a := range s.appointments {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := slotKey(a.Date, a.StartTime)
	if _, taken := s.slots[key]; taken {
		return ErrDuplicateSlot
	}
	s.slots[key] = a.ID
	s.appointments[a.ID] = *a
	return nil
}

func (s *MemoryStore) UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return ErrNotFound
	}
	newDate, newStart := a.Date, a.StartTime
	if upd.Date != nil {
		newDate = *upd.Date
	}
	if upd.StartTime != nil {
		newStart = *upd.StartTime
	}
	if err := s.moveSlot(id, a.Date, a.StartTime, newDate, newStart); err != nil {
		return err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	a.Date, a.StartTime = newDate, newStart
	apply(&a.PatientID, upd.PatientID)
	apply(&a.PatientName, upd.PatientName)
	apply(&a.EndTime, upd.EndTime)
	apply(&a.Type, upd.Type)
	apply(&a.Notes, upd.Notes)
	if upd.Status != nil {
		a.Status = models.AppointmentStatus(*upd.Status)
	}
	a.UpdatedAt = time.Now()
	s.appointments[id] = a
	return nil
}

func (s *MemoryStore) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.slots, slotKey(a.Date, a.StartTime))
	delete(s.appointments, id)
	return nil
}

func (s *MemoryStore) SetAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	s.appointments[id] = a
	return nil
}

func (s *MemoryStore) RescheduleAppointment(ctx context.Context, id, date, startTime, reason string, notifyPatient bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return ErrNotFound
	}
	if err := s.moveSlot(id, a.Date, a.StartTime, date, startTime); err != nil {
		return err
	}
	a.Date = date
	a.StartTime = startTime
	a.RescheduleReason = reason
	a.NotifyPatient = notifyPatient
	a.Status = models.AppointmentStatusConfirmed
	a.UpdatedAt = time.Now()
	s.appointments[id] = a
	return nil
}

// moveSlot переносит бронь слота; вызывается под мьютексом.
func (s *MemoryStore) moveSlot(id, oldDate, oldStart, newDate, newStart string) error {
	oldKey := slotKey(oldDate, oldStart)
	newKey := slotKey(newDate, newStart)
	if oldKey == newKey {
		return nil
	}
	if holder, taken := s.slots[newKey]; taken && holder != id {
		return ErrDuplicateSlot
	}
	delete(s.slots, oldKey)
	s.slots[newKey] = id
	return nil
}

// --- Users ---

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// --- Stats ---

func (s *MemoryStore) DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := now.Format("2006-01-02")
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	stats := &models.DashboardStats{TotalPatients: len(s.patients)}
	for _, a := range s.appointments {
		if a.Date == today {
			stats.TodaysAppointments++
		}
		if a.Status == models.AppointmentStatusPending {
			stats.PendingAppointments++
		}
	}
	for _, p := range s.patients {
		if !p.CreatedAt.Before(monthStart) && p.CreatedAt.Before(nextMonthStart) {
			stats.NewPatientsThisMonth++
		}
	}
	return stats, nil
}

// --- Maintenance ---

func (s *MemoryStore) ClearClinicalData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients = map[string]models.Patient{}
	s.appointments = map[string]models.Appointment{}
	s.slots = map[string]string{}
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	if err := s.ClearClinicalData(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = map[string]models.User{}
	return s.seedDefaultUser()
}
