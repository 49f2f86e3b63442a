// cmd/clinicctl/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd без подкоманды просто показывает справку.
var rootCmd = &cobra.Command{
	Use:   "clinicctl",
	Short: "Сервисная утилита FillerMed",
	Long: `clinicctl — сервисная утилита для работающего сервера FillerMed.

Примеры:
  clinicctl ping --addr http://localhost:8080
  clinicctl stats --addr http://localhost:8080 -u receptionist -p welcome123
  clinicctl clear-test-data -u receptionist -p welcome123
  clinicctl reset-db -u receptionist -p welcome123`,
}

func init() {
	rootCmd.PersistentFlags().String("addr", "http://localhost:8080", "адрес сервера FillerMed")
	rootCmd.PersistentFlags().StringP("username", "u", "", "логин для защищенных команд")
	rootCmd.PersistentFlags().StringP("password", "p", "", "пароль для защищенных команд")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
