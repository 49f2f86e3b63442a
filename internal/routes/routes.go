// internal/routes/routes.go
package routes

import (
	"net/http"

	"fillermed.kz/internal/config"
	"fillermed.kz/internal/db"
	"fillermed.kz/internal/handlers"
	"fillermed.kz/internal/middleware"

	"github.com/alexedwards/scs/v2"
)

// New собирает полный маршрутизатор приложения. Все маршруты данных закрыты
// RequireAuthentication; диагностика и страницы доступны без сессии.
func New(cfg *config.Config, sessionManager *scs.SessionManager, store db.ClinicStore) http.Handler {
	authHandlers := handlers.NewAuthHandlers(sessionManager, store)
	patientHandlers := handlers.NewPatientHandlers(store)
	appointmentHandlers := handlers.NewAppointmentHandlers(store, store)
	dashboardHandlers := handlers.NewDashboardHandlers(store)
	systemHandlers := handlers.NewSystemHandlers(store, "MariaDB")
	maintenanceHandlers := handlers.NewMaintenanceHandlers(store)
	pageHandlers := handlers.NewPageHandlers(cfg.WebDir)

	requireAuth := middleware.RequireAuthentication(sessionManager)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst)

	mux := http.NewServeMux()

	// Аутентификация.
	mux.Handle("POST /api/login", loginLimiter.Middleware(http.HandlerFunc(authHandlers.LoginHandler)))
	mux.HandleFunc("POST /api/logout", authHandlers.LogoutHandler)
	mux.HandleFunc("GET /api/auth/status", authHandlers.AuthStatusHandler)

	// Пациенты.
	mux.Handle("GET /api/patients", requireAuth(http.HandlerFunc(patientHandlers.ListHandler)))
	mux.Handle("POST /api/patients", requireAuth(http.HandlerFunc(patientHandlers.CreateHandler)))
	mux.Handle("GET /api/patients/{id}", requireAuth(http.HandlerFunc(patientHandlers.GetHandler)))
	mux.Handle("PUT /api/patients/{id}", requireAuth(http.HandlerFunc(patientHandlers.UpdateHandler)))
	mux.Handle("DELETE /api/patients/{id}", requireAuth(http.HandlerFunc(patientHandlers.DeleteHandler)))

	// Записи на прием.
	mux.Handle("GET /api/appointments", requireAuth(http.HandlerFunc(appointmentHandlers.ListHandler)))
	mux.Handle("POST /api/appointments", requireAuth(http.HandlerFunc(appointmentHandlers.CreateHandler)))
	mux.Handle("GET /api/appointments/date/{date}", requireAuth(http.HandlerFunc(appointmentHandlers.ListByDateHandler)))
	mux.Handle("GET /api/appointments/{id}", requireAuth(http.HandlerFunc(appointmentHandlers.GetHandler)))
	mux.Handle("PUT /api/appointments/{id}", requireAuth(http.HandlerFunc(appointmentHandlers.UpdateHandler)))
	mux.Handle("DELETE /api/appointments/{id}", requireAuth(http.HandlerFunc(appointmentHandlers.DeleteHandler)))
	mux.Handle("PUT /api/appointments/{id}/confirm", requireAuth(http.HandlerFunc(appointmentHandlers.ConfirmHandler)))
	mux.Handle("PUT /api/appointments/{id}/cancel", requireAuth(http.HandlerFunc(appointmentHandlers.CancelHandler)))
	mux.Handle("PUT /api/appointments/{id}/reschedule", requireAuth(http.HandlerFunc(appointmentHandlers.RescheduleHandler)))

	// Дашборд.
	mux.Handle("GET /api/dashboard/stats", requireAuth(http.HandlerFunc(dashboardHandlers.StatsHandler)))

	// Диагностика — намеренно без аутентификации, ее опрашивает страница логина.
	mux.HandleFunc("GET /api/sync-status", systemHandlers.SyncStatusHandler)
	mux.HandleFunc("GET /api/health", systemHandlers.HealthHandler)
	mux.HandleFunc("GET /ping", systemHandlers.PingHandler)

	// Сервисные операции — разрушительные, поэтому закрыты сессией.
	mux.Handle("POST /api/clear-test-data", requireAuth(http.HandlerFunc(maintenanceHandlers.ClearTestDataHandler)))
	mux.Handle("POST /api/reset-db", requireAuth(http.HandlerFunc(maintenanceHandlers.ResetDBHandler)))

	// Статика и страницы.
	mux.Handle("GET /assets/", pageHandlers.AssetsHandler())
	mux.HandleFunc("GET /", pageHandlers.PageHandler)

	return sessionManager.LoadAndSave(mux)
}
