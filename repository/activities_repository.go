package repository

import (
	"database/sql"
	"time"

	"github.com/cattus-org/cattus-api/models"
)

type ActivitiesRepository struct {
	db *sql.DB
}

func NewActivitiesRepository(db *sql.DB) *ActivitiesRepository {
	return &ActivitiesRepository{db: db}
}

// activitySelect joins the cat and camera so feed pages come back in a single
// round trip. Feed ordering is newest first with the id as a deterministic
// tiebreak for activities starting at the same instant.
const activitySelect = `
	SELECT a.id, a.title, a.cat_id, a.camera_id, a.started_at, a.ended_at, a.created_at, a.updated_at,
	       c.id, c.name, c.birth_date, c.sex, c.picture, c.observations, c.weight, c.favorite,
	       c.status, c.company_id, c.created_by, c.is_deleted, c.created_at, c.updated_at,
	       cam.id, cam.name, cam.url, cam.thumbnail, cam.company_id, cam.created_by, cam.is_deleted,
	       cam.created_at, cam.updated_at
	FROM activities a
	JOIN cats c ON c.id = a.cat_id
	JOIN cameras cam ON cam.id = a.camera_id`

func scanActivity(row interface{ Scan(...interface{}) error }) (*models.Activity, error) {
	var a models.Activity
	var cat models.Cat
	var cam models.Camera
	var endedAt, catBirth sql.NullTime
	var catWeight sql.NullFloat64
	var catCreatedBy, camCreatedBy sql.NullInt64
	err := row.Scan(
		&a.ID, &a.Title, &a.CatID, &a.CameraID, &a.StartedAt, &endedAt, &a.CreatedAt, &a.UpdatedAt,
		&cat.ID, &cat.Name, &catBirth, &cat.Sex, &cat.Picture, &cat.Observations, &catWeight,
		&cat.Favorite, &cat.Status, &cat.CompanyID, &catCreatedBy, &cat.IsDeleted,
		&cat.CreatedAt, &cat.UpdatedAt,
		&cam.ID, &cam.Name, &cam.URL, &cam.Thumbnail, &cam.CompanyID, &camCreatedBy,
		&cam.IsDeleted, &cam.CreatedAt, &cam.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		a.EndedAt = &t
	}
	if catBirth.Valid {
		t := catBirth.Time
		cat.BirthDate = &t
	}
	if catWeight.Valid {
		w := catWeight.Float64
		cat.Weight = &w
	}
	if catCreatedBy.Valid {
		id := catCreatedBy.Int64
		cat.CreatedBy = &id
	}
	if camCreatedBy.Valid {
		id := camCreatedBy.Int64
		cam.CreatedBy = &id
	}
	a.Cat = &cat
	a.Camera = &cam
	return &a, nil
}

func (r *ActivitiesRepository) CreateActivity(a *models.Activity) (*models.Activity, error) {
	var newID int64
	err := r.db.QueryRow(`
		INSERT INTO activities (title, cat_id, camera_id, started_at, ended_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`, a.Title, a.CatID, a.CameraID, a.StartedAt, a.EndedAt).Scan(&newID)
	if err != nil {
		return nil, err
	}
	return r.GetActivityByID(newID)
}

func (r *ActivitiesRepository) GetActivityByID(id int64) (*models.Activity, error) {
	row := r.db.QueryRow(activitySelect+` WHERE a.id = $1`, id)
	activity, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// UpdateActivity closes or corrects a record; only the end time and title are
// mutable after creation.
func (r *ActivitiesRepository) UpdateActivity(a *models.Activity) error {
	_, err := r.db.Exec(`
		UPDATE activities
		SET title = $1,
		    ended_at = $2,
		    updated_at = NOW()
		WHERE id = $3
	`, a.Title, a.EndedAt, a.ID)
	return err
}

func (r *ActivitiesRepository) ListByCat(catID int64, offset, limit int) ([]models.Activity, error) {
	return r.list(activitySelect+`
		WHERE a.cat_id = $1
		ORDER BY a.started_at DESC, a.id DESC
		OFFSET $2 LIMIT $3
	`, catID, offset, limit)
}

func (r *ActivitiesRepository) ListByCamera(cameraID int64, offset, limit int) ([]models.Activity, error) {
	return r.list(activitySelect+`
		WHERE a.camera_id = $1
		ORDER BY a.started_at DESC, a.id DESC
		OFFSET $2 LIMIT $3
	`, cameraID, offset, limit)
}

func (r *ActivitiesRepository) ListByCompany(companyID int64, offset, limit int) ([]models.Activity, error) {
	return r.list(activitySelect+`
		WHERE c.company_id = $1
		ORDER BY a.started_at DESC, a.id DESC
		OFFSET $2 LIMIT $3
	`, companyID, offset, limit)
}

// ListByCatSince returns every activity of one cat that started at or after
// the cutoff, oldest first. This feeds the status aggregation, which needs
// the whole window rather than a page.
func (r *ActivitiesRepository) ListByCatSince(catID int64, since time.Time) ([]models.Activity, error) {
	rows, err := r.db.Query(activitySelect+`
		WHERE a.cat_id = $1 AND a.started_at >= $2
		ORDER BY a.started_at ASC, a.id ASC
	`, catID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

func (r *ActivitiesRepository) list(query string, args ...interface{}) ([]models.Activity, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectActivities(rows)
}

func collectActivities(rows *sql.Rows) ([]models.Activity, error) {
	result := []models.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}
