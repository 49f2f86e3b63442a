// internal/handlers/patients.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fillermed.kz/internal/db"
	"fillermed.kz/internal/models"
	"fillermed.kz/internal/validation"

	"github.com/google/uuid"
)

type PatientHandlers struct {
	Store db.PatientStore
}

func NewPatientHandlers(store db.PatientStore) *PatientHandlers {
	return &PatientHandlers{Store: store}
}

func (h *PatientHandlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := h.Store.ListPatients(r.Context())
	if err != nil {
		slog.Error("Ошибка получения списка пациентов", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

func (h *PatientHandlers) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	patient, err := h.Store.GetPatient(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}
		slog.Error("Ошибка получения пациента", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// CreateHandler генерирует идентификатор на сервере и ставит обе временные
// метки; клиентские значения id/createdAt игнорируются.
func (h *PatientHandlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var form models.PatientForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := validation.ValidateStruct(form); errs != nil {
		slog.Warn("Ошибки валидации при создании пациента", "errors", errs)
		writeError(w, http.StatusBadRequest, validation.FirstError(errs))
		return
	}

	now := time.Now()
	patient := &models.Patient{
		ID:               uuid.NewString(),
		FirstName:        form.FirstName,
		LastName:         form.LastName,
		Email:            form.Email,
		Phone:            form.Phone,
		DateOfBirth:      form.DateOfBirth,
		Address:          form.Address,
		MedicalHistory:   form.MedicalHistory,
		Allergies:        form.Allergies,
		EmergencyContact: form.EmergencyContact,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := h.Store.CreatePatient(r.Context(), patient); err != nil {
		slog.Error("Ошибка создания пациента", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("Пациент создан", "id", patient.ID)
	writeJSON(w, http.StatusCreated, patient)
}

func (h *PatientHandlers) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var upd models.PatientUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.Store.UpdatePatient(r.Context(), id, upd); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}
		slog.Error("Ошибка обновления пациента", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeMessage(w, "Patient updated successfully")
}

func (h *PatientHandlers) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Store.DeletePatient(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}
		slog.Error("Ошибка удаления пациента", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Info("Пациент удален", "id", id)
	writeMessage(w, "Patient deleted successfully")
}
