// internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		user := os.Getenv("DB_USER")
		pass := os.Getenv("DB_PASSWORD")
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		name := os.Getenv("DB_NAME")

		log.Println("DB_USER:", user)
		log.Println("DB_NAME:", name)
		log.Println("DB_HOST:", host)

		dsn = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			user, pass, host, port, name,
		)
	}

	var err error
	DB, err = sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	if err = DB.Ping(); err != nil {
		log.Fatalf("failed to ping DB: %v", err)
	}

	if err = EnsureSchema(DB); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	log.Println("✅ Connected to database")
}

// EnsureSchema creates the outreach tables if they don't exist yet and
// applies the one additive migration (recommended_services on companies).
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id SERIAL PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			website_url VARCHAR(500) NOT NULL UNIQUE,
			primary_email VARCHAR(255) NOT NULL,
			email_sender VARCHAR(255) NOT NULL DEFAULT '',
			email_sent_status BOOLEAN NOT NULL DEFAULT FALSE,
			recommended_services VARCHAR(1000),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS email_logs (
			id SERIAL PRIMARY KEY,
			company_id INTEGER NOT NULL REFERENCES companies(id),
			company_name VARCHAR(255) NOT NULL,
			website_url VARCHAR(500) NOT NULL,
			recipient_email VARCHAR(255) NOT NULL,
			sender_email VARCHAR(255) NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'sent',
			recommended_services VARCHAR(1000),
			sent_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`ALTER TABLE companies ADD COLUMN IF NOT EXISTS recommended_services VARCHAR(1000)`,
		`CREATE INDEX IF NOT EXISTS ix_email_logs_sender_sent_at ON email_logs (sender_email, sent_at)`,
		`CREATE INDEX IF NOT EXISTS ix_email_logs_company_recipient ON email_logs (company_name, LOWER(recipient_email))`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
