// internal/handlers/dashboard.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"fillermed.kz/internal/db"
)

type DashboardHandlers struct {
	Stats db.StatsStore
}

func NewDashboardHandlers(stats db.StatsStore) *DashboardHandlers {
	return &DashboardHandlers{Stats: stats}
}

// StatsHandler отдает счетчики для карточек дашборда. "Сегодня" и "этот
// месяц" считаются по локальному времени сервера.
func (h *DashboardHandlers) StatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.DashboardStats(r.Context(), time.Now())
	if err != nil {
		slog.Error("Ошибка подсчета статистики дашборда", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
