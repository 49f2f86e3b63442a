// internal/handlers/maintenance.go
package handlers

import (
	"log/slog"
	"net/http"

	"fillermed.kz/internal/db"
)

// MaintenanceHandlers выполняет разрушительные сервисные операции.
// Маршруты закрыты аутентификацией, как и остальной API.
type MaintenanceHandlers struct {
	Store db.MaintenanceStore
}

func NewMaintenanceHandlers(store db.MaintenanceStore) *MaintenanceHandlers {
	return &MaintenanceHandlers{Store: store}
}

func (h *MaintenanceHandlers) ClearTestDataHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.ClearClinicalData(r.Context()); err != nil {
		slog.Error("Ошибка очистки клинических данных", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Warn("Клинические данные стерты по запросу оператора")
	writeMessage(w, "All test data cleared successfully")
}

func (h *MaintenanceHandlers) ResetDBHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		slog.Error("Ошибка сброса базы данных", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Warn("База данных сброшена к начальному состоянию")
	writeMessage(w, "Database reset successfully")
}
