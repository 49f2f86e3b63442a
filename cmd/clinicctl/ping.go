// cmd/clinicctl/ping.go
package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// pingCmd проверяет доступность сервера и соединение с БД. Логин не нужен:
// диагностика открыта намеренно, ее опрашивает и страница входа.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Проверить доступность сервера и базы данных",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}

		status, data, err := client.do(http.MethodGet, "/api/health", nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("неожиданный ответ /api/health (HTTP %d): %s", status, apiMessage(data))
		}

		var health struct {
			Status    string `json:"status"`
			Database  string `json:"database"`
			Timestamp string `json:"timestamp"`
		}
		if err := json.Unmarshal(data, &health); err != nil {
			return fmt.Errorf("ошибка разбора ответа /api/health: %w", err)
		}

		fmt.Printf("server:   %s\n", client.addr)
		fmt.Printf("status:   %s\n", health.Status)
		fmt.Printf("database: %s\n", health.Database)
		fmt.Printf("time:     %s\n", health.Timestamp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
