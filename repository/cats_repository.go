package repository

import (
	"database/sql"

	"github.com/cattus-org/cattus-api/models"
)

type CatsRepository struct {
	db *sql.DB
}

func NewCatsRepository(db *sql.DB) *CatsRepository {
	return &CatsRepository{db: db}
}

const catColumns = `
	id, name, birth_date, sex, picture, observations, weight, favorite,
	status, company_id, created_by, is_deleted, created_at, updated_at`

func scanCat(row interface{ Scan(...interface{}) error }) (*models.Cat, error) {
	var c models.Cat
	var birthDate sql.NullTime
	var weight sql.NullFloat64
	var createdBy sql.NullInt64
	err := row.Scan(
		&c.ID,
		&c.Name,
		&birthDate,
		&c.Sex,
		&c.Picture,
		&c.Observations,
		&weight,
		&c.Favorite,
		&c.Status,
		&c.CompanyID,
		&createdBy,
		&c.IsDeleted,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if birthDate.Valid {
		t := birthDate.Time
		c.BirthDate = &t
	}
	if weight.Valid {
		w := weight.Float64
		c.Weight = &w
	}
	if createdBy.Valid {
		id := createdBy.Int64
		c.CreatedBy = &id
	}
	return &c, nil
}

func (r *CatsRepository) CreateCat(c *models.Cat) (*models.Cat, error) {
	var newID int64
	err := r.db.QueryRow(`
		INSERT INTO cats (name, birth_date, sex, picture, observations, weight, favorite,
		                  status, company_id, created_by, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, NOW(), NOW())
		RETURNING id
	`, c.Name, c.BirthDate, c.Sex, c.Picture, c.Observations, c.Weight, c.Favorite,
		c.Status, c.CompanyID, c.CreatedBy).Scan(&newID)
	if err != nil {
		return nil, err
	}
	return r.GetCatByID(newID)
}

func (r *CatsRepository) GetCatByID(id int64) (*models.Cat, error) {
	row := r.db.QueryRow(`SELECT`+catColumns+` FROM cats WHERE id = $1`, id)
	cat, err := scanCat(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// ListCats returns one page of a company's cats, favorites first, then by
// name.
func (r *CatsRepository) ListCats(companyID int64, offset, limit int) ([]models.Cat, error) {
	rows, err := r.db.Query(`
		SELECT`+catColumns+`
		FROM cats
		WHERE company_id = $1 AND is_deleted = FALSE
		ORDER BY favorite DESC, name ASC
		OFFSET $2 LIMIT $3
	`, companyID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []models.Cat{}
	for rows.Next() {
		cat, err := scanCat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cat)
	}
	return result, rows.Err()
}

func (r *CatsRepository) UpdateCat(c *models.Cat) error {
	_, err := r.db.Exec(`
		UPDATE cats
		SET name = $1,
		    birth_date = $2,
		    sex = $3,
		    picture = $4,
		    observations = $5,
		    weight = $6,
		    status = $7,
		    updated_at = NOW()
		WHERE id = $8
	`, c.Name, c.BirthDate, c.Sex, c.Picture, c.Observations, c.Weight, c.Status, c.ID)
	return err
}

func (r *CatsRepository) SetCatDeleted(id int64, isDeleted bool) error {
	_, err := r.db.Exec(`
		UPDATE cats
		SET is_deleted = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, isDeleted, id)
	return err
}

func (r *CatsRepository) SetFavorite(id int64, favorite bool) error {
	_, err := r.db.Exec(`
		UPDATE cats
		SET favorite = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, favorite, id)
	return err
}

// SetStatus moves a cat's health status and returns the previous value so
// callers can decide whether a notification is warranted.
func (r *CatsRepository) SetStatus(id int64, status models.CatStatus) (models.CatStatus, error) {
	var previous models.CatStatus
	err := r.db.QueryRow(`
		UPDATE cats
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING (SELECT status FROM cats WHERE id = $2)
	`, status, id).Scan(&previous)
	if err != nil {
		return "", err
	}
	return previous, nil
}
