// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// AdminConfig описывает учетную запись регистратора, создаваемую при старте,
// если таблица users пуста.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type SessionConfig struct {
	LifetimeHours int    `yaml:"lifetime_hours"`
	CookieName    string `yaml:"cookie_name"`
}

type RateLimitConfig struct {
	LoginRPS   float64 `yaml:"login_rps"`
	LoginBurst int     `yaml:"login_burst"`
}

type Config struct {
	SiteName  string          `yaml:"site_name"`
	BaseURL   string          `yaml:"base_url"`
	Port      int             `yaml:"port"`
	AppEnv    string          `yaml:"app_env"`
	WebDir    string          `yaml:"web_dir"`
	Database  DatabaseConfig  `yaml:"database"`
	Admin     AdminConfig     `yaml:"admin"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

func getStringEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
		slog.Warn("Не удалось преобразовать переменную окружения в число, используется значение по умолчанию", "key", key, "value", valueStr)
	}
	return defaultValue
}

func LoadConfig(filename string) (*Config, error) {
	appEnvFromSystem := os.Getenv("APP_ENV")
	if appEnvFromSystem != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			slog.Info("configs/.env не найден или ошибка загрузки, это ожидаемо для production или если переменные установлены системно.", "error", err)
		} else {
			slog.Info("Переменные окружения загружены из configs/.env")
		}
	}

	file, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("файл конфигурации не найден: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла конфигурации '%s': %w", filename, err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка декодирования YAML из файла '%s': %w", filename, err)
	}

	cfg.AppEnv = getStringEnvOrDefault("APP_ENV", cfg.AppEnv)
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	isProduction := cfg.AppEnv == "production"

	cfg.BaseURL = getStringEnvOrDefault("BASE_URL", cfg.BaseURL)
	cfg.Port = getIntEnvOrDefault("PORT", cfg.Port)
	cfg.WebDir = getStringEnvOrDefault("WEB_DIR", cfg.WebDir)

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
		cfg.Database.Host = ""
		cfg.Database.Port = 0
		cfg.Database.User = ""
		cfg.Database.DBName = ""
	} else {
		cfg.Database.Host = getStringEnvOrDefault("DB_HOST", cfg.Database.Host)
		cfg.Database.Port = getIntEnvOrDefault("DB_PORT", cfg.Database.Port)
		cfg.Database.User = getStringEnvOrDefault("DB_USER", cfg.Database.User)
		cfg.Database.DBName = getStringEnvOrDefault("DB_NAME", cfg.Database.DBName)
		cfg.Database.Password = getStringEnvOrDefault("DB_PASSWORD", cfg.Database.Password)
	}

	cfg.Admin.Username = getStringEnvOrDefault("ADMIN_USERNAME", cfg.Admin.Username)
	cfg.Admin.Password = getStringEnvOrDefault("ADMIN_PASSWORD", cfg.Admin.Password)

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.WebDir == "" {
		cfg.WebDir = "./web"
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "FillerMed"
	}
	if cfg.Session.LifetimeHours <= 0 {
		cfg.Session.LifetimeHours = 24
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "fillermed_session"
	}
	if cfg.RateLimit.LoginRPS <= 0 {
		cfg.RateLimit.LoginRPS = 1
	}
	if cfg.RateLimit.LoginBurst <= 0 {
		cfg.RateLimit.LoginBurst = 5
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "receptionist"
	}
	if cfg.Admin.Role == "" {
		cfg.Admin.Role = "receptionist"
	}
	if cfg.Admin.Password == "" {
		if isProduction {
			return nil, fmt.Errorf("ADMIN_PASSWORD должен быть установлен в переменных окружения для production")
		}
		slog.Warn("ADMIN_PASSWORD не установлен! Используется пароль по умолчанию (ТОЛЬКО ДЛЯ РАЗРАБОТКИ).")
		cfg.Admin.Password = "welcome123"
	}

	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("параметры подключения к БД (DATABASE_DSN или DB_HOST и др.) не заданы")
	}
	if cfg.Database.Host != "" {
		if cfg.Database.User == "" {
			return nil, fmt.Errorf("DB_USER не задан для подключения к БД")
		}
		if cfg.Database.DBName == "" {
			return nil, fmt.Errorf("DB_NAME не задан для подключения к БД")
		}
	}
	if isProduction && cfg.BaseURL != "" && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("в production окружении BASE_URL должен начинаться с https://")
	}

	slog.Info("Конфигурация загружена", "app_env", cfg.AppEnv, "port", cfg.Port, "web_dir", cfg.WebDir)
	return &cfg, nil
}

// SessionLifetime возвращает время жизни сессии как Duration.
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.Session.LifetimeHours) * time.Hour
}

func InitLogger(appEnv string) {
	var logger *slog.Logger
	logLevel := slog.LevelInfo

	if appEnv == "development" {
		logLevel = slog.LevelDebug
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: false,
		}))
	}
	slog.SetDefault(logger)
}
