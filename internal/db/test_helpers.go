// internal/db/test_helpers.go
package db

import (
	"fmt"
	"testing"
)

// ClearTestTables очищает таблицы между интеграционными тестами.
// DELETE вместо TRUNCATE, чтобы не спотыкаться о внешние ключи.
func ClearTestTables(t *testing.T, s *Store, tableNames ...string) {
	t.Helper()
	if s == nil || s.db == nil {
		t.Skip("store not initialized, skipping table clear")
		return
	}
	for _, table := range tableNames {
		_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Fatalf("Failed to clear table %s: %v", table, err)
		}
	}
}
