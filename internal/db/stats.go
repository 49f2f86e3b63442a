// internal/db/stats.go
package db

import (
	"context"
	"fmt"
	"time"

	"fillermed.kz/internal/models"

	"golang.org/x/sync/errgroup"
)

// DashboardStats считает четыре метрики панели. Кеша нет: каждая загрузка
// дашборда выполняет запросы заново. Четыре COUNT'а идут параллельно.
func (s *Store) DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error) {
	today := now.Format("2006-01-02")
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	stats := &models.DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM patients`).
			Scan(&stats.TotalPatients)
	})
	g.Go(func() error {
		return s.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM appointments WHERE date = ?`, today).
			Scan(&stats.TodaysAppointments)
	})
	g.Go(func() error {
		return s.db.QueryRowContext(gctx, `SELECT COUNT(*) FROM appointments WHERE status = ?`, models.AppointmentStatusPending).
			Scan(&stats.PendingAppointments)
	})
	g.Go(func() error {
		return s.db.QueryRowContext(gctx,
			`SELECT COUNT(*) FROM patients WHERE created_at >= ? AND created_at < ?`,
			monthStart, nextMonthStart).
			Scan(&stats.NewPatientsThisMonth)
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ошибка получения статистики дашборда: %w", err)
	}
	return stats, nil
}
