// cmd/server/main.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fillermed.kz/internal/config"
	"fillermed.kz/internal/db"
	"fillermed.kz/internal/routes"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	configPath := "configs/config.yaml"
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Критическая ошибка: не удалось загрузить конфигурацию: %v\n", err)
		os.Exit(1)
	}

	config.InitLogger(cfg.AppEnv)
	slog.Info("Запуск сервера FillerMed...", "app_env", cfg.AppEnv)

	store, err := db.Open(cfg)
	if err != nil {
		slog.Error("Критическая ошибка: не удалось инициализировать базу данных", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("База данных успешно инициализирована и миграции применены.")

	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(store.DB())
	sessionManager.Lifetime = cfg.SessionLifetime()
	sessionManager.Cookie.Name = cfg.Session.CookieName
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.AppEnv == "production"
	sessionManager.Cookie.Path = "/"

	slog.Info("Менеджер сессий инициализирован", "store", "mysqlstore", "lifetime", sessionManager.Lifetime, "secure_cookie", sessionManager.Cookie.Secure)

	handler := routes.New(cfg, sessionManager, store)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Сервер FillerMed запущен и слушает", "address", fmt.Sprintf("http://localhost%s", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  240 * time.Second,
	}

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Критическая ошибка: не удалось запустить HTTP-сервер", "address", addr, "error", err)
		os.Exit(1)
	}
}
