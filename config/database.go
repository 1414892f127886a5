package config

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

func InitDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS budgets (
			id UUID PRIMARY KEY,
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			essential JSONB NOT NULL,
			discretionary JSONB NOT NULL,
			total_essential DOUBLE PRECISION NOT NULL,
			total_discretionary DOUBLE PRECISION NOT NULL,
			total_expenses DOUBLE PRECISION NOT NULL,
			advice TEXT NOT NULL,
			visualization TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_budgets_user_id ON budgets(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_user_created ON budgets(user_id, created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}
