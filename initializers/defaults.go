package initializers

import (
	"database/sql"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaults is called once on application start to ensure a default
// company and its admin user exist, so a fresh deployment can be logged into
// immediately. Credentials come from the environment; the insert is skipped
// when the user already exists.
func InitDefaults(db *sql.DB) error {
	companyName := envOr("DEFAULT_COMPANY_NAME", "Cattus")
	companyID, err := ensureCompany(db, companyName)
	if err != nil {
		return err
	}

	email := envOr("DEFAULT_ADMIN_EMAIL", "admin@cattus.local")
	password := envOr("DEFAULT_ADMIN_PASSWORD", "admin")
	return ensureAdminUser(db, companyID, email, password)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func ensureCompany(db *sql.DB, name string) (int64, error) {
	var id int64
	err := db.QueryRow("SELECT id FROM companies WHERE name = $1", name).Scan(&id)
	if err == sql.ErrNoRows {
		err = db.QueryRow(`
			INSERT INTO companies (name, created_at, updated_at)
			VALUES ($1, NOW(), NOW())
			RETURNING id
		`, name).Scan(&id)
		if err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}
	return id, nil
}

func ensureAdminUser(db *sql.DB, companyID int64, email, password string) error {
	var id int64
	err := db.QueryRow("SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users (name, email, password_hash, access_level, company_id, is_deleted, created_at, updated_at)
		VALUES ('Administrator', $1, $2, 1, $3, FALSE, NOW(), NOW())
	`, email, string(hash), companyID)
	return err
}
