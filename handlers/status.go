package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/pkg/events"
	"github.com/cattus-org/cattus-api/pkg/metrics"
	"github.com/cattus-org/cattus-api/pkg/notify"
	"github.com/cattus-org/cattus-api/repository"
	"github.com/cattus-org/cattus-api/types"
	"github.com/cattus-org/cattus-api/websocket"
)

type StatusHandler struct {
	catsRepo          *repository.CatsRepository
	activitiesRepo    *repository.ActivitiesRepository
	notificationsRepo *repository.NotificationsRepository
	notifier          notify.Notifier
}

func NewStatusHandler(
	catsRepo *repository.CatsRepository,
	activitiesRepo *repository.ActivitiesRepository,
	notificationsRepo *repository.NotificationsRepository,
	notifier notify.Notifier,
) *StatusHandler {
	return &StatusHandler{
		catsRepo:          catsRepo,
		activitiesRepo:    activitiesRepo,
		notificationsRepo: notificationsRepo,
		notifier:          notifier,
	}
}

// titleMetrics is the per-behavior block of the status panel payload.
type titleMetrics struct {
	Count                 int     `json:"count"`
	TotalDuration         string  `json:"totalDuration"`
	AvgPerDay             float64 `json:"avgPerDay"`
	AvgDurationPerDay     string  `json:"avgDurationPerDay"`
	TotalDurationSecs     int64   `json:"totalDurationSeconds"`
	AvgDurationPerDaySecs int64   `json:"avgDurationPerDaySeconds"`
}

// GetCatStatus aggregates one cat's activities over a trailing window and
// returns the per-behavior metrics the status panel renders. The default
// window is 7 days; ?days= selects any of the supported windows.
//
// The assessment derived from the eating metrics is persisted on the cat,
// and a transition produces a notification plus a status-changed push.
func (h *StatusHandler) GetCatStatus(c *gin.Context) {
	catID, err := strconv.ParseInt(c.Param("catId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid cat ID"))
		return
	}
	cat, err := h.catsRepo.GetCatByID(catID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if cat == nil || cat.IsDeleted {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Cat not found"))
		return
	}
	if cat.CompanyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this cat"))
		return
	}

	windowDays := 7
	if raw := c.Query("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || !supportedWindow(d) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Unsupported window"))
			return
		}
		windowDays = d
	}

	now := time.Now()
	activities, err := h.activitiesRepo.ListByCatSince(catID, now.AddDate(0, 0, -windowDays))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}

	byTitle := make(map[models.ActivityTitle]titleMetrics, len(models.ActivityTitles))
	var eat metrics.Result
	for _, title := range models.ActivityTitles {
		res := metrics.Aggregate(activities, title, windowDays, now)
		if title == models.ActivityEat {
			eat = res
		}
		byTitle[title] = titleMetrics{
			Count:                 res.Count,
			TotalDuration:         metrics.FormatDuration(res.TotalDuration),
			AvgPerDay:             res.AvgPerDay,
			AvgDurationPerDay:     metrics.FormatDuration(res.AvgDurationPerDay),
			TotalDurationSecs:     int64(res.TotalDuration.Seconds()),
			AvgDurationPerDaySecs: int64(res.AvgDurationPerDay.Seconds()),
		}
	}

	status := assessStatus(eat)
	if status != cat.Status {
		h.recordStatusChange(cat, status)
	}

	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"catId":      cat.ID,
		"status":     status,
		"windowDays": windowDays,
		"metrics":    byTitle,
	}))
}

func supportedWindow(days int) bool {
	for _, w := range metrics.WindowDays {
		if days == w {
			return true
		}
	}
	return false
}

// assessStatus maps the eating metrics onto the coarse health scale: a cat
// that stopped eating is in danger, one eating less than once a day is on
// alert.
func assessStatus(eat metrics.Result) models.CatStatus {
	switch {
	case eat.Count == 0:
		return models.CatStatusDanger
	case eat.AvgPerDay < 1:
		return models.CatStatusAlert
	default:
		return models.CatStatusOK
	}
}

func (h *StatusHandler) recordStatusChange(cat *models.Cat, status models.CatStatus) {
	previous, err := h.catsRepo.SetStatus(cat.ID, status)
	if err != nil {
		return
	}
	direction := statusDirection(previous, status)
	notification := &models.Notification{
		CompanyID:   cat.CompanyID,
		CatID:       cat.ID,
		Description: fmt.Sprintf("%s moved from %s to %s", cat.Name, previous, status),
		Direction:   direction,
	}
	if _, err := h.notificationsRepo.CreateNotification(notification); err != nil {
		return
	}
	if h.notifier != nil {
		h.notifier.NotifyScope(websocket.CompanyScope(cat.CompanyID), events.StatusChanged{
			Type:      "status_changed",
			CatID:     cat.ID,
			Previous:  string(previous),
			Current:   string(status),
			Direction: string(direction),
		})
	}
}

var statusRank = map[models.CatStatus]int{
	models.CatStatusOK:     0,
	models.CatStatusAlert:  1,
	models.CatStatusDanger: 2,
}

func statusDirection(previous, current models.CatStatus) models.NotificationDirection {
	switch {
	case statusRank[current] > statusRank[previous]:
		return models.DirectionUp
	case statusRank[current] < statusRank[previous]:
		return models.DirectionDown
	default:
		return models.DirectionNone
	}
}
