package repository

import (
	"database/sql"

	"github.com/cattus-org/cattus-api/models"
)

type UsersRepository struct {
	db *sql.DB
}

func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (r *UsersRepository) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		SELECT id, name, email, password_hash, access_level, company_id, is_deleted, created_at, updated_at
		FROM users
		WHERE email = $1 AND is_deleted = FALSE
	`, email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.AccessLevel,
		&u.CompanyID,
		&u.IsDeleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepository) GetUserByID(id int64) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(`
		SELECT id, name, email, password_hash, access_level, company_id, is_deleted, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.AccessLevel,
		&u.CompanyID,
		&u.IsDeleted,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepository) CreateUser(name, email, passwordHash string, accessLevel int, companyID int64) (*models.User, error) {
	var newID int64
	err := r.db.QueryRow(`
		INSERT INTO users (name, email, password_hash, access_level, company_id, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		RETURNING id
	`, name, email, passwordHash, accessLevel, companyID).Scan(&newID)
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(newID)
}

// ListUsers returns one page of a company's active users, ordered by name.
func (r *UsersRepository) ListUsers(companyID int64, offset, limit int) ([]models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, name, email, password_hash, access_level, company_id, is_deleted, created_at, updated_at
		FROM users
		WHERE company_id = $1 AND is_deleted = FALSE
		ORDER BY name ASC
		OFFSET $2 LIMIT $3
	`, companyID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []models.User{}
	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.AccessLevel,
			&u.CompanyID,
			&u.IsDeleted,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *UsersRepository) UpdateUser(u *models.User) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET name = $1,
		    email = $2,
		    access_level = $3,
		    updated_at = NOW()
		WHERE id = $4
	`, u.Name, u.Email, u.AccessLevel, u.ID)
	return err
}

func (r *UsersRepository) SetUserDeleted(id int64, isDeleted bool) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET is_deleted = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, isDeleted, id)
	return err
}

func (r *UsersRepository) UpdatePassword(id int64, passwordHash string) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET password_hash = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, passwordHash, id)
	return err
}
