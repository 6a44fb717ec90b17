package database

import (
	"context"
	"database/sql"
)

// migrations are applied in order on startup. Statements are idempotent so
// restarting the server against an existing database is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email         VARCHAR(255)    NOT NULL,
		name          VARCHAR(255)    NOT NULL,
		password_hash VARCHAR(255)    NULL,
		auth_provider VARCHAR(32)     NOT NULL DEFAULT 'local',
		created_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		image_url  VARCHAR(1024)   NOT NULL DEFAULT '',
		image_key  VARCHAR(512)    NULL,
		total      DOUBLE          NOT NULL DEFAULT 0,
		date       DATE            NULL,
		place      VARCHAR(255)    NOT NULL DEFAULT '',
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_invoices_user (user_id),
		CONSTRAINT fk_invoices_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS products (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		invoice_id BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(255)    NOT NULL,
		quantity   DOUBLE          NOT NULL DEFAULT 0,
		price      DOUBLE          NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		KEY idx_products_invoice (invoice_id),
		CONSTRAINT fk_products_invoice FOREIGN KEY (invoice_id) REFERENCES invoices (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
