package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// migrationDialect is set under gooseMu for the duration of goose.Up.
var migrationDialect goose.Dialect

func init() {
	goose.AddMigrationContext(upWidenStateValue, downWidenStateValue)
}

// stateValueColumnType is the column type able to hold a whole saved
// project. MySQL TEXT stops at 64KB; the other backends have no such cap.
func stateValueColumnType(dialect goose.Dialect) string {
	if dialect == goose.DialectMySQL {
		return "LONGTEXT"
	}
	return "TEXT"
}

func upWidenStateValue(ctx context.Context, tx *sql.Tx) error {
	if migrationDialect != goose.DialectMySQL {
		return nil
	}
	query := fmt.Sprintf("ALTER TABLE app_state MODIFY state_value %s NOT NULL", stateValueColumnType(migrationDialect))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("widen state_value: %w", err)
	}
	return nil
}

func downWidenStateValue(ctx context.Context, tx *sql.Tx) error {
	if migrationDialect != goose.DialectMySQL {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "ALTER TABLE app_state MODIFY state_value TEXT NOT NULL"); err != nil {
		return fmt.Errorf("narrow state_value: %w", err)
	}
	return nil
}
