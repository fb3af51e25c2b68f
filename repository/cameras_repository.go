package repository

import (
	"database/sql"

	"github.com/cattus-org/cattus-api/models"
)

type CamerasRepository struct {
	db *sql.DB
}

func NewCamerasRepository(db *sql.DB) *CamerasRepository {
	return &CamerasRepository{db: db}
}

func scanCamera(row interface{ Scan(...interface{}) error }) (*models.Camera, error) {
	var cam models.Camera
	var createdBy sql.NullInt64
	err := row.Scan(
		&cam.ID,
		&cam.Name,
		&cam.URL,
		&cam.Thumbnail,
		&cam.CompanyID,
		&createdBy,
		&cam.IsDeleted,
		&cam.CreatedAt,
		&cam.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if createdBy.Valid {
		id := createdBy.Int64
		cam.CreatedBy = &id
	}
	return &cam, nil
}

func (r *CamerasRepository) CreateCamera(cam *models.Camera) (*models.Camera, error) {
	var newID int64
	err := r.db.QueryRow(`
		INSERT INTO cameras (name, url, thumbnail, company_id, created_by, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW())
		RETURNING id
	`, cam.Name, cam.URL, cam.Thumbnail, cam.CompanyID, cam.CreatedBy).Scan(&newID)
	if err != nil {
		return nil, err
	}
	return r.GetCameraByID(newID)
}

func (r *CamerasRepository) GetCameraByID(id int64) (*models.Camera, error) {
	row := r.db.QueryRow(`
		SELECT id, name, url, thumbnail, company_id, created_by, is_deleted, created_at, updated_at
		FROM cameras
		WHERE id = $1
	`, id)
	cam, err := scanCamera(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cam, nil
}

func (r *CamerasRepository) ListCameras(companyID int64, offset, limit int) ([]models.Camera, error) {
	rows, err := r.db.Query(`
		SELECT id, name, url, thumbnail, company_id, created_by, is_deleted, created_at, updated_at
		FROM cameras
		WHERE company_id = $1 AND is_deleted = FALSE
		ORDER BY name ASC
		OFFSET $2 LIMIT $3
	`, companyID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []models.Camera{}
	for rows.Next() {
		cam, err := scanCamera(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *cam)
	}
	return result, rows.Err()
}

func (r *CamerasRepository) UpdateCamera(cam *models.Camera) error {
	_, err := r.db.Exec(`
		UPDATE cameras
		SET name = $1,
		    url = $2,
		    thumbnail = $3,
		    updated_at = NOW()
		WHERE id = $4
	`, cam.Name, cam.URL, cam.Thumbnail, cam.ID)
	return err
}

func (r *CamerasRepository) SetCameraDeleted(id int64, isDeleted bool) error {
	_, err := r.db.Exec(`
		UPDATE cameras
		SET is_deleted = $1,
		    updated_at = NOW()
		WHERE id = $2
	`, isDeleted, id)
	return err
}
