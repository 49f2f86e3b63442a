// cmd/clinicctl/maintenance.go
package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// confirmDestructive требует явного подтверждения с клавиатуры. Флаг --yes
// пропускает вопрос для скриптов.
func confirmDestructive(cmd *cobra.Command, what string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	fmt.Printf("Операция необратима: %s. Продолжить? [y/N]: ", what)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("ошибка чтения подтверждения: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func runMaintenance(cmd *cobra.Command, path, what string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	ok, err := confirmDestructive(cmd, what)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Отменено.")
		return nil
	}

	if err := client.login(cmd); err != nil {
		return err
	}

	status, data, err := client.do(http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("сервер отклонил операцию (HTTP %d): %s", status, apiMessage(data))
	}
	fmt.Println(apiMessage(data))
	return nil
}

var clearTestDataCmd = &cobra.Command{
	Use:   "clear-test-data",
	Short: "Удалить всех пациентов и все записи на прием",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMaintenance(cmd, "/api/clear-test-data", "удаление всех пациентов и записей")
	},
}

var resetDBCmd = &cobra.Command{
	Use:   "reset-db",
	Short: "Сбросить базу данных к начальному состоянию",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMaintenance(cmd, "/api/reset-db", "полный сброс базы данных")
	},
}

func init() {
	for _, c := range []*cobra.Command{clearTestDataCmd, resetDBCmd} {
		c.Flags().Bool("yes", false, "не спрашивать подтверждение")
		rootCmd.AddCommand(c)
	}
}
