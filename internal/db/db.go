// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"fillermed.kz/internal/config"
	"fillermed.kz/internal/models"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var (
	// ErrNotFound — запись с таким идентификатором не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrDuplicateSlot — на эту дату и время уже есть запись (UNIQUE KEY uniq_slot).
	ErrDuplicateSlot = errors.New("слот на эту дату и время уже занят")
)

type PatientStore interface {
	ListPatients(ctx context.Context) ([]models.Patient, error)
	GetPatient(ctx context.Context, id string) (*models.Patient, error)
	CreatePatient(ctx context.Context, p *models.Patient) error
	UpdatePatient(ctx context.Context, id string, upd models.PatientUpdate) error
	DeletePatient(ctx context.Context, id string) error
}

type AppointmentStore interface {
	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	ListAppointmentsByDate(ctx context.Context, date string) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) error
	DeleteAppointment(ctx context.Context, id string) error
	SetAppointmentStatus(ctx context.Context, id string, status models.AppointmentStatus) error
	RescheduleAppointment(ctx context.Context, id, date, startTime, reason string, notifyPatient bool) error
}

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type StatsStore interface {
	DashboardStats(ctx context.Context, now time.Time) (*models.DashboardStats, error)
}

type MaintenanceStore interface {
	ClearClinicalData(ctx context.Context) error
	Reset(ctx context.Context) error
}

// ClinicStore объединяет все хранилища клиники плюс проверку доступности БД.
// Обработчики получают его явно — глобального соединения в пакете нет.
type ClinicStore interface {
	PatientStore
	AppointmentStore
	UserStore
	StatsStore
	MaintenanceStore
	Ping(ctx context.Context) error
}

// Store — реализация ClinicStore поверх MariaDB.
type Store struct {
	db    *sql.DB
	admin config.AdminConfig
}

func buildDSN(dbCfg config.DatabaseConfig) (string, error) {
	if dbCfg.DSN != "" && strings.Contains(dbCfg.DSN, "@") {
		dsn := dbCfg.DSN
		if !strings.Contains(dsn, "parseTime=true") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		if !strings.Contains(dsn, "multiStatements=true") {
			dsn += "&multiStatements=true"
		}
		return dsn, nil
	}
	if dbCfg.Host != "" && dbCfg.User != "" && dbCfg.DBName != "" {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&multiStatements=true",
			dbCfg.User,
			dbCfg.Password,
			dbCfg.Host,
			dbCfg.Port,
			dbCfg.DBName,
		), nil
	}
	return "", fmt.Errorf("недостаточно параметров для подключения к MariaDB: DSN или Host+User+DBName должны быть заданы")
}

// Open подключается к MariaDB, применяет миграции и создает начальные данные.
func Open(cfg *config.Config) (*Store, error) {
	dsn, err := buildDSN(cfg.Database)
	if err != nil {
		return nil, err
	}

	safeDSN := dsn
	if cfg.Database.Password != "" && strings.Contains(dsn, cfg.Database.Password) {
		safeDSN = strings.Replace(dsn, cfg.Database.Password, "****", 1)
	}
	slog.Info("Подключение к MariaDB", "dsn_for_connection", safeDSN)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия соединения с MariaDB: %w", err)
	}

	conn.SetConnMaxLifetime(time.Minute * 3)
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ошибка подключения к MariaDB (ping failed): %w", err)
	}

	s := &Store{db: conn, admin: cfg.Admin}

	if err = s.runMigrations(cfg.Database.DBName); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ошибка выполнения миграций MariaDB: %w", err)
	}

	// Таблица сессий для scs/mysqlstore. Не в миграциях, т.к. ее схему диктует
	// библиотека, а не приложение.
	createTableSQL := `CREATE TABLE IF NOT EXISTS sessions (
		token CHAR(43) PRIMARY KEY,
		data BLOB NOT NULL,
		expiry TIMESTAMP(6) NOT NULL
	);`
	if _, errTable := conn.Exec(createTableSQL); errTable != nil {
		slog.Error("Не удалось создать таблицу 'sessions' для MariaDB.", "error", errTable)
	} else {
		if _, errIndex := conn.Exec(`CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions (expiry);`); errIndex != nil {
			slog.Warn("Не удалось создать индекс 'sessions_expiry_idx' для таблицы 'sessions'.", "error", errIndex)
		}
	}

	if err = s.SeedDefaultUser(context.Background()); err != nil {
		slog.Warn("Не удалось создать пользователя по умолчанию", "username", cfg.Admin.Username, "error", err)
	}

	slog.Info("База данных MariaDB успешно инициализирована (включая миграции и начальные данные).")
	return s, nil
}

func (s *Store) runMigrations(dbName string) error {
	driverInstance, err := mysql.WithInstance(s.db, &mysql.Config{
		DatabaseName: dbName,
	})
	if err != nil {
		return fmt.Errorf("не удалось создать драйвер миграций mysql: %w", err)
	}

	// Путь к миграциям считаем от текущего файла, чтобы не зависеть от CWD.
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("не удалось получить путь к текущему файлу для определения пути миграций")
	}
	projectRoot := filepath.Join(filepath.Dir(currentFilePath), "..", "..")
	migrationsURL := "file://" + filepath.Join(projectRoot, "migrations")

	m, err := migrate.NewWithDatabaseInstance(migrationsURL, "mysql", driverInstance)
	if err != nil {
		slog.Error("Ошибка создания экземпляра migrate", "url", migrationsURL, "dbName", dbName, "error", err)
		return fmt.Errorf("ошибка создания экземпляра migrate (проверьте путь '%s'): %w", migrationsURL, err)
	}

	slog.Info("Применение миграций MariaDB...", "path", migrationsURL)
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, dirty, verr := m.Version()
		if verr != nil {
			slog.Error("Ошибка получения статуса миграции после неудачного Up", "migration_error", err, "status_error", verr)
		} else {
			slog.Error("Ошибка применения миграций.", "current_version", version, "dirty_state", dirty, "error_up", err)
		}
		return fmt.Errorf("ошибка применения миграций MariaDB: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("Миграции MariaDB: нет изменений.")
	} else {
		slog.Info("Миграции MariaDB успешно применены.")
	}
	return nil
}

// DB отдает нижележащее соединение. Нужен mysqlstore для хранения сессий
// в той же базе.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность БД в момент вызова. Состояние не кешируется.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
