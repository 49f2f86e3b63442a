// internal/handlers/appointments.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fillermed.kz/internal/db"
	"fillermed.kz/internal/models"
	"fillermed.kz/internal/validation"

	"github.com/google/uuid"
)

type AppointmentHandlers struct {
	Appointments db.AppointmentStore
	Patients     db.PatientStore
}

func NewAppointmentHandlers(appointments db.AppointmentStore, patients db.PatientStore) *AppointmentHandlers {
	return &AppointmentHandlers{
		Appointments: appointments,
		Patients:     patients,
	}
}

func (h *AppointmentHandlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.Appointments.ListAppointments(r.Context())
	if err != nil {
		slog.Error("Ошибка получения списка записей на прием", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandlers) ListByDateHandler(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	appointments, err := h.Appointments.ListAppointmentsByDate(r.Context(), date)
	if err != nil {
		slog.Error("Ошибка получения записей на дату", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, appointments)
}

func (h *AppointmentHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	appointment, err := h.Appointments.GetAppointment(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}
		slog.Error("Ошибка получения записи на прием", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, appointment)
}

// CreateHandler бронирует слот. Занятость (date, startTime) гарантирует
// уникальный индекс в БД, поэтому при конкурентной брони одного слота ровно
// один запрос получает 201, остальные — 409.
func (h *AppointmentHandlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var form models.AppointmentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validation.ValidateStruct(form); errs != nil {
		slog.Warn("Ошибки валидации при создании записи на прием", "errors", errs)
		writeError(w, http.StatusBadRequest, validation.FirstError(errs))
		return
	}

	status := models.AppointmentStatus(form.Status)
	if status == "" {
		status = models.AppointmentStatusPending
	}

	// Денормализуем имя пациента, как делает фронтенд-список записей.
	patientName := strings.TrimSpace(form.PatientName)
	if patientName == "" {
		if patient, err := h.Patients.GetPatient(r.Context(), form.PatientID); err == nil {
			patientName = strings.TrimSpace(patient.FirstName + " " + patient.LastName)
		}
	}

	now := time.Now()
	appointment := &models.Appointment{
		ID:          uuid.NewString(),
		PatientID:   form.PatientID,
		PatientName: patientName,
		Date:        form.Date,
		StartTime:   form.StartTime,
		EndTime:     form.EndTime,
		Type:        form.Type,
		Notes:       form.Notes,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Appointments.CreateAppointment(r.Context(), appointment); err != nil {
		if errors.Is(err, db.ErrDuplicateSlot) {
			writeError(w, http.StatusConflict, "This time slot is already booked")
			return
		}
		slog.Error("Ошибка создания записи на прием", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("Запись на прием создана", "id", appointment.ID, "date", appointment.Date, "start_time", appointment.StartTime)
	writeJSON(w, http.StatusCreated, appointment)
}

func (h *AppointmentHandlers) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var upd models.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.Appointments.UpdateAppointment(r.Context(), id, upd); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, "Appointment not found")
		case errors.Is(err, db.ErrDuplicateSlot):
			writeError(w, http.StatusConflict, "This time slot is already booked")
		default:
			slog.Error("Ошибка обновления записи на прием", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeMessage(w, "Appointment updated successfully")
}

func (h *AppointmentHandlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Appointments.DeleteAppointment(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}
		slog.Error("Ошибка удаления записи на прием", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeMessage(w, "Appointment deleted successfully")
}

func (h *AppointmentHandlers) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.AppointmentStatusConfirmed, "Appointment confirmed successfully")
}

func (h *AppointmentHandlers) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.AppointmentStatusCancelled, "Appointment cancelled successfully")
}

// setStatus не проверяет переходы между статусами: любой статус можно
// установить из любого предыдущего.
func (h *AppointmentHandlers) setStatus(w http.ResponseWriter, r *http.Request, status models.AppointmentStatus, message string) {
	id := r.PathValue("id")
	if err := h.Appointments.SetAppointmentStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}
		slog.Error("Ошибка смены статуса записи на прием", "id", id, "status", status, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeMessage(w, message)
}

// RescheduleHandler переносит запись и принудительно ставит confirmed.
// Отмененная запись при переносе молча оживает — поведение сохранено
// с исходной версии, модалка переноса на фронтенде не предлагает статус.
func (h *AppointmentHandlers) RescheduleHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var form models.RescheduleForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validation.ValidateStruct(form); errs != nil {
		writeError(w, http.StatusBadRequest, validation.FirstError(errs))
		return
	}

	err := h.Appointments.RescheduleAppointment(r.Context(), id, form.NewDate, form.NewTime, form.Reason, form.NotifyPatient)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, "Appointment not found")
		case errors.Is(err, db.ErrDuplicateSlot):
			writeError(w, http.StatusConflict, "This time slot is already booked")
		default:
			slog.Error("Ошибка переноса записи на прием", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeMessage(w, "Appointment rescheduled and confirmed successfully")
}
