// Package sqlitemigrate applies and rolls back ordered SQL migrations
// against a SQLite database, recording each applied migration in a
// migrations table.
package sqlitemigrate

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const migrationTable = "migrations"

// Migration pairs a forward statement set with its reversal.
type Migration struct {
	Name string
	Up   string
	Down string
}

func ensureTable(sqlDB *sql.DB) error {
	createSQL := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    executed_at TEXT NOT NULL
);
`, migrationTable)
	if _, err := sqlDB.Exec(createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

// Apply executes every pending migration in order, at most once each.
func Apply(sqlDB *sql.DB, migrations []Migration) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}
	if err := ensureTable(sqlDB); err != nil {
		return err
	}

	for _, migration := range migrations {
		name := strings.TrimSpace(migration.Name)
		if name == "" {
			return fmt.Errorf("migration name is required")
		}

		applied, err := isApplied(sqlDB, name)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(migration.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		executedAt := time.Now().UTC().Format(time.RFC3339Nano)
		if _, err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s (name, executed_at) VALUES (?, ?)", migrationTable),
			name, executedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// Rollback reverses the most recently recorded migration. It returns the
// rolled back migration name, or an empty string when nothing is applied.
func Rollback(sqlDB *sql.DB, migrations []Migration) (string, error) {
	if sqlDB == nil {
		return "", fmt.Errorf("sql db is required")
	}
	if err := ensureTable(sqlDB); err != nil {
		return "", err
	}

	var name string
	row := sqlDB.QueryRow(fmt.Sprintf("SELECT name FROM %s ORDER BY id DESC LIMIT 1", migrationTable))
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("find latest migration: %w", err)
	}

	var target *Migration
	for i := range migrations {
		if migrations[i].Name == name {
			target = &migrations[i]
			break
		}
	}
	if target == nil {
		return "", fmt.Errorf("migration %s is recorded but not registered", name)
	}
	if strings.TrimSpace(target.Down) == "" {
		return "", fmt.Errorf("migration %s has no down statements", name)
	}

	tx, err := sqlDB.Begin()
	if err != nil {
		return "", fmt.Errorf("begin rollback %s: %w", name, err)
	}
	if _, err := tx.Exec(target.Down); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("roll back migration %s: %w", name, err)
	}
	if _, err := tx.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE name = ?", migrationTable), name,
	); err != nil {
		_ = tx.Rollback()
		return "", fmt.Errorf("unrecord migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit rollback %s: %w", name, err)
	}
	return name, nil
}

func isApplied(sqlDB *sql.DB, name string) (bool, error) {
	var count int
	row := sqlDB.QueryRow(
		fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE name = ?", migrationTable), name,
	)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
