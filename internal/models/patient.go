// internal/models/patient.go
package models

import "time"

type Patient struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	DateOfBirth      string    `json:"dateOfBirth"`
	Address          string    `json:"address"`
	MedicalHistory   string    `json:"medicalHistory"`
	Allergies        string    `json:"allergies"`
	EmergencyContact string    `json:"emergencyContact"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PatientForm — тело POST /api/patients. Имена JSON-полей совпадают с тем,
// что отправляют скрипты фронтенда.
type PatientForm struct {
	FirstName        string `json:"firstName" validate:"required"`
	LastName         string `json:"lastName" validate:"required"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone"`
	DateOfBirth      string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address          string `json:"address"`
	MedicalHistory   string `json:"medicalHistory"`
	Allergies        string `json:"allergies"`
	EmergencyContact string `json:"emergencyContact"`
}

// PatientUpdate — частичное обновление: nil означает "поле не передано".
type PatientUpdate struct {
	FirstName        *string `json:"firstName"`
	LastName         *string `json:"lastName"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"dateOfBirth"`
	Address          *string `json:"address"`
	MedicalHistory   *string `json:"medicalHistory"`
	Allergies        *string `json:"allergies"`
	EmergencyContact *string `json:"emergencyContact"`
}
