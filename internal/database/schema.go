package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by Migrate.  Every statement is idempotent.
// fitness_centers.name is compared byte-wise, matching the memory store, so
// uniqueness and ORDER BY name behave the same on both backends.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username      VARCHAR(150)    NOT NULL,
		email         VARCHAR(254)    NOT NULL,
		password_hash VARCHAR(255)    NOT NULL,
		is_staff      BOOLEAN         NOT NULL DEFAULT FALSE,
		is_active     BOOLEAN         NOT NULL DEFAULT TRUE,
		created_at    DATETIME(6)     NOT NULL,
		updated_at    DATETIME(6)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME(6)     NOT NULL,
		revoked_at DATETIME(6)     NULL,
		created_at DATETIME(6)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS fitness_centers (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name             VARCHAR(100)    COLLATE utf8mb4_bin NOT NULL,
		address          TEXT            NOT NULL,
		monthly_fee      BIGINT UNSIGNED NOT NULL,
		total_sessions   BIGINT UNSIGNED NOT NULL,
		category         VARCHAR(50)     NOT NULL DEFAULT 'GYM',
		facilities       TEXT            NOT NULL,
		owner_id         BIGINT UNSIGNED NOT NULL,
		is_verified      BOOLEAN         NOT NULL DEFAULT FALSE,
		established_date DATE            NOT NULL,
		created_at       DATETIME(6)     NOT NULL,
		updated_at       DATETIME(6)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_fitness_centers_name (name),
		KEY idx_fitness_centers_category (category),
		KEY idx_fitness_centers_fee (monthly_fee),
		CONSTRAINT fk_fitness_centers_owner FOREIGN KEY (owner_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables the service needs if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
