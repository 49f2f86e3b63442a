// internal/handlers/system.go
package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger — минимальный интерфейс для проверки доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandlers struct {
	Store        Pinger
	DatabaseName string
}

func NewSystemHandlers(store Pinger, databaseName string) *SystemHandlers {
	if databaseName == "" {
		databaseName = "MariaDB"
	}
	return &SystemHandlers{Store: store, DatabaseName: databaseName}
}

// ping выполняет живую проверку соединения на каждый запрос. Кэшированного
// флага "подключено" нет: статус отражает состояние именно сейчас.
func (h *SystemHandlers) ping(r *http.Request) bool {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	return h.Store.Ping(ctx) == nil
}

func (h *SystemHandlers) SyncStatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connected": h.ping(r),
		"database":  h.DatabaseName,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *SystemHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	database := "connected"
	if !h.ping(r) {
		status = "degraded"
		database = "disconnected"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *SystemHandlers) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}
