package repository

import (
	"database/sql"

	"github.com/cattus-org/cattus-api/models"
)

type CompaniesRepository struct {
	db *sql.DB
}

func NewCompaniesRepository(db *sql.DB) *CompaniesRepository {
	return &CompaniesRepository{db: db}
}

func (r *CompaniesRepository) GetCompanyByID(id int64) (*models.Company, error) {
	var c models.Company
	err := r.db.QueryRow(`
		SELECT id, name, cnpj, logo, phone, created_at, updated_at
		FROM companies
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.CNPJ, &c.Logo, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompaniesRepository) CreateCompany(c *models.Company) (*models.Company, error) {
	err := r.db.QueryRow(`
		INSERT INTO companies (name, cnpj, logo, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, c.Name, c.CNPJ, c.Logo, c.Phone).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CompaniesRepository) UpdateCompany(c *models.Company) error {
	_, err := r.db.Exec(`
		UPDATE companies
		SET name = $1,
		    cnpj = $2,
		    logo = $3,
		    phone = $4,
		    updated_at = NOW()
		WHERE id = $5
	`, c.Name, c.CNPJ, c.Logo, c.Phone, c.ID)
	return err
}
