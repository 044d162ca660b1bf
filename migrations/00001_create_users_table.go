package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsersTable, downCreateUsersTable)
}

// users_email_key is the backstop for concurrent registrations of the same
// email; the repository maps its violation to a duplicate-email error.
func upCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE users (
	  id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	  first_name TEXT NOT NULL,
	  password TEXT NOT NULL,
	  email TEXT NOT NULL CONSTRAINT users_email_key UNIQUE,
	  phone TEXT NOT NULL,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS users;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
