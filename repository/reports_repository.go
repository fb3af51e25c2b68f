package repository

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/cattus-org/cattus-api/models"
)

type ReportsRepository struct {
	db *sql.DB
}

func NewReportsRepository(db *sql.DB) *ReportsRepository {
	return &ReportsRepository{db: db}
}

func (r *ReportsRepository) CreateReport(rep *models.Report) (*models.Report, error) {
	err := r.db.QueryRow(`
		INSERT INTO reports (cat_id, requested_by, sections, object_key, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`, rep.CatID, rep.RequestedBy, pq.Array(rep.Sections), rep.ObjectKey, rep.SizeBytes).
		Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *ReportsRepository) GetReportByID(id int64) (*models.Report, error) {
	var rep models.Report
	err := r.db.QueryRow(`
		SELECT id, cat_id, requested_by, sections, object_key, size_bytes, created_at
		FROM reports
		WHERE id = $1
	`, id).Scan(&rep.ID, &rep.CatID, &rep.RequestedBy, pq.Array(&rep.Sections),
		&rep.ObjectKey, &rep.SizeBytes, &rep.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportsRepository) ListByCat(catID int64, offset, limit int) ([]models.Report, error) {
	rows, err := r.db.Query(`
		SELECT id, cat_id, requested_by, sections, object_key, size_bytes, created_at
		FROM reports
		WHERE cat_id = $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`, catID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []models.Report{}
	for rows.Next() {
		var rep models.Report
		err := rows.Scan(&rep.ID, &rep.CatID, &rep.RequestedBy, pq.Array(&rep.Sections),
			&rep.ObjectKey, &rep.SizeBytes, &rep.CreatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}
