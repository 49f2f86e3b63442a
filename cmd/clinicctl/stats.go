// cmd/clinicctl/stats.go
package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Показать счетчики дашборда",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient(cmd)
		if err != nil {
			return err
		}
		if err := client.login(cmd); err != nil {
			return err
		}

		status, data, err := client.do(http.MethodGet, "/api/dashboard/stats", nil)
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("неожиданный ответ /api/dashboard/stats (HTTP %d): %s", status, apiMessage(data))
		}

		var stats struct {
			TotalPatients        int `json:"totalPatients"`
			TodaysAppointments   int `json:"todaysAppointments"`
			PendingAppointments  int `json:"pendingAppointments"`
			NewPatientsThisMonth int `json:"newPatientsThisMonth"`
		}
		if err := json.Unmarshal(data, &stats); err != nil {
			return fmt.Errorf("ошибка разбора статистики: %w", err)
		}

		fmt.Printf("patients total:          %d\n", stats.TotalPatients)
		fmt.Printf("appointments today:      %d\n", stats.TodaysAppointments)
		fmt.Printf("appointments pending:    %d\n", stats.PendingAppointments)
		fmt.Printf("new patients this month: %d\n", stats.NewPatientsThisMonth)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
