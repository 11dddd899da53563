package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type TxFunc func(tx *sqlx.Tx) error

func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (db *DB) TableExists(ctx context.Context, tableName string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`
	if err := db.GetContext(ctx, &exists, query, tableName); err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return exists, nil
}

func (db *DB) GetVersion(ctx context.Context) (string, error) {
	var version string
	if err := db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

// SchemaTables are the tables created by the bundled migrations.
var SchemaTables = []string{"services", "metric_samples", "anomaly_events", "thread_infos", "thread_stacks"}

// MissingTables returns the entries of SchemaTables not present in the
// public schema.
func (db *DB) MissingTables(ctx context.Context) ([]string, error) {
	var missing []string
	for _, name := range SchemaTables {
		exists, err := db.TableExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
