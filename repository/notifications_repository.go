package repository

import (
	"database/sql"

	"github.com/cattus-org/cattus-api/models"
)

type NotificationsRepository struct {
	db *sql.DB
}

func NewNotificationsRepository(db *sql.DB) *NotificationsRepository {
	return &NotificationsRepository{db: db}
}

func (r *NotificationsRepository) CreateNotification(n *models.Notification) (*models.Notification, error) {
	err := r.db.QueryRow(`
		INSERT INTO notifications (company_id, cat_id, description, direction, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING id, created_at
	`, n.CompanyID, n.CatID, n.Description, n.Direction).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListUnread returns a company's unread notifications, newest first, with the
// cat embedded for the dashboard badge list.
func (r *NotificationsRepository) ListUnread(companyID int64, offset, limit int) ([]models.Notification, error) {
	rows, err := r.db.Query(`
		SELECT n.id, n.company_id, n.cat_id, n.description, n.direction, n.is_read, n.created_at,
		       c.id, c.name, c.picture, c.status
		FROM notifications n
		JOIN cats c ON c.id = n.cat_id
		WHERE n.company_id = $1 AND n.is_read = FALSE
		ORDER BY n.created_at DESC, n.id DESC
		OFFSET $2 LIMIT $3
	`, companyID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var cat models.Cat
		err := rows.Scan(
			&n.ID, &n.CompanyID, &n.CatID, &n.Description, &n.Direction, &n.IsRead, &n.CreatedAt,
			&cat.ID, &cat.Name, &cat.Picture, &cat.Status,
		)
		if err != nil {
			return nil, err
		}
		n.Cat = &cat
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *NotificationsRepository) MarkRead(id, companyID int64) error {
	_, err := r.db.Exec(`
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND company_id = $2
	`, id, companyID)
	return err
}

func (r *NotificationsRepository) MarkAllRead(companyID int64) error {
	_, err := r.db.Exec(`
		UPDATE notifications
		SET is_read = TRUE
		WHERE company_id = $1 AND is_read = FALSE
	`, companyID)
	return err
}
