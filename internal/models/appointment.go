// internal/models/appointment.go
package models

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID               string            `json:"id"`
	PatientID        string            `json:"patientId"`
	PatientName      string            `json:"patientName"`
	Date             string            `json:"date"`
	StartTime        string            `json:"startTime"`
	EndTime          string            `json:"endTime"`
	Type             string            `json:"type"`
	Notes            string            `json:"notes"`
	Status           AppointmentStatus `json:"status"`
	RescheduleReason string            `json:"rescheduleReason,omitempty"`
	NotifyPatient    bool              `json:"notifyPatient"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// AppointmentForm — тело POST /api/appointments. Статус по умолчанию pending.
type AppointmentForm struct {
	PatientID   string `json:"patientId" validate:"required"`
	PatientName string `json:"patientName"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime"`
	Type        string `json:"type"`
	Notes       string `json:"notes"`
	Status      string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// AppointmentUpdate — частичное обновление записи.
type AppointmentUpdate struct {
	PatientID   *string `json:"patientId"`
	PatientName *string `json:"patientName"`
	Date        *string `json:"date"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Type        *string `json:"type"`
	Notes       *string `json:"notes"`
	Status      *string `json:"status"`
}

// RescheduleForm — тело PUT /api/appointments/{id}/reschedule.
type RescheduleForm struct {
	NewDate       string `json:"newDate" validate:"required,datetime=2006-01-02"`
	NewTime       string `json:"newTime" validate:"required"`
	Reason        string `json:"reason"`
	NotifyPatient bool   `json:"notifyPatient"`
}

// DashboardStats — ответ GET /api/dashboard/stats.
type DashboardStats struct {
	TotalPatients        int `json:"totalPatients"`
	TodaysAppointments   int `json:"todaysAppointments"`
	PendingAppointments  int `json:"pendingAppointments"`
	NewPatientsThisMonth int `json:"newPatientsThisMonth"`
}
