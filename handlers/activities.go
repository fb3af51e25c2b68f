package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/pkg/events"
	"github.com/cattus-org/cattus-api/pkg/notify"
	"github.com/cattus-org/cattus-api/types"
	"github.com/cattus-org/cattus-api/websocket"
)

// The handler depends on the narrow slices of the repositories it actually
// calls, so ownership rules can be tested without a database.
type activitiesStore interface {
	CreateActivity(a *models.Activity) (*models.Activity, error)
	GetActivityByID(id int64) (*models.Activity, error)
	UpdateActivity(a *models.Activity) error
	ListByCat(catID int64, offset, limit int) ([]models.Activity, error)
	ListByCamera(cameraID int64, offset, limit int) ([]models.Activity, error)
	ListByCompany(companyID int64, offset, limit int) ([]models.Activity, error)
}

type catStore interface {
	GetCatByID(id int64) (*models.Cat, error)
}

type cameraStore interface {
	GetCameraByID(id int64) (*models.Camera, error)
}

type ActivitiesHandler struct {
	activitiesRepo activitiesStore
	catsRepo       catStore
	camerasRepo    cameraStore
	notifier       notify.Notifier
}

func NewActivitiesHandler(
	ar activitiesStore,
	catsRepo catStore,
	camerasRepo cameraStore,
	notifier notify.Notifier,
) *ActivitiesHandler {
	return &ActivitiesHandler{
		activitiesRepo: ar,
		catsRepo:       catsRepo,
		camerasRepo:    camerasRepo,
		notifier:       notifier,
	}
}

func (h *ActivitiesHandler) CreateActivity(c *gin.Context) {
	var req struct {
		Title     string     `json:"title" binding:"required"`
		CatID     int64      `json:"catId" binding:"required"`
		CameraID  int64      `json:"cameraId" binding:"required"`
		StartedAt time.Time  `json:"startedAt" binding:"required"`
		EndedAt   *time.Time `json:"endedAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	title := models.ActivityTitle(req.Title)
	if !title.Valid() {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Invalid activity title"))
		return
	}
	if req.EndedAt != nil && req.EndedAt.Before(req.StartedAt) {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "endedAt must not precede startedAt"))
		return
	}
	companyID := c.GetInt64("companyId")
	cat, err := h.catsRepo.GetCatByID(req.CatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if cat == nil || cat.IsDeleted || cat.CompanyID != companyID {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Invalid cat"))
		return
	}
	cam, err := h.camerasRepo.GetCameraByID(req.CameraID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if cam == nil || cam.IsDeleted || cam.CompanyID != companyID {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Invalid camera"))
		return
	}
	created, err := h.activitiesRepo.CreateActivity(&models.Activity{
		Title:     title,
		CatID:     req.CatID,
		CameraID:  req.CameraID,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	h.broadcastChanged(created)
	c.JSON(http.StatusCreated, types.NewSuccessResponse(created))
}

// UpdateActivity closes an in-progress record or corrects its title.
func (h *ActivitiesHandler) UpdateActivity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid activity ID"))
		return
	}
	activity, err := h.activitiesRepo.GetActivityByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if activity == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Activity not found"))
		return
	}
	if activity.Cat == nil || activity.Cat.CompanyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this activity"))
		return
	}
	var req struct {
		Title   *string    `json:"title"`
		EndedAt *time.Time `json:"endedAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if req.Title != nil {
		title := models.ActivityTitle(*req.Title)
		if !title.Valid() {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Invalid activity title"))
			return
		}
		activity.Title = title
	}
	if req.EndedAt != nil {
		if req.EndedAt.Before(activity.StartedAt) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "endedAt must not precede startedAt"))
			return
		}
		activity.EndedAt = req.EndedAt
	}
	if err := h.activitiesRepo.UpdateActivity(activity); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	h.broadcastChanged(activity)
	c.JSON(http.StatusOK, types.NewSuccessMessage("Activity updated successfully", activity))
}

func (h *ActivitiesHandler) ListByCat(c *gin.Context) {
	catID, err := strconv.ParseInt(c.Param("id"), 10, 64)
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
	params := types.ParseListParams(c)
	activities, err := h.activitiesRepo.ListByCat(catID, params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(activities))
}

func (h *ActivitiesHandler) ListByCamera(c *gin.Context) {
	cameraID, err := strconv.ParseInt(c.Param("cameraId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid camera ID"))
		return
	}
	cam, err := h.camerasRepo.GetCameraByID(cameraID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if cam == nil || cam.IsDeleted {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Camera not found"))
		return
	}
	if cam.CompanyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this camera"))
		return
	}
	params := types.ParseListParams(c)
	activities, err := h.activitiesRepo.ListByCamera(cameraID, params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(activities))
}

func (h *ActivitiesHandler) ListByCompany(c *gin.Context) {
	companyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid company ID"))
		return
	}
	if companyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this company"))
		return
	}
	params := types.ParseListParams(c)
	activities, err := h.activitiesRepo.ListByCompany(companyID, params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(activities))
}

// broadcastChanged pushes the changed sentinel to both scopes a record is
// visible in. Dashboards react by re-fetching their loaded pages.
func (h *ActivitiesHandler) broadcastChanged(a *models.Activity) {
	if h.notifier == nil || a == nil {
		return
	}
	h.notifier.NotifyScope(websocket.CameraScope(a.CameraID), events.ActivityChanged)
	if a.Cat != nil {
		h.notifier.NotifyScope(websocket.CompanyScope(a.Cat.CompanyID), events.ActivityChanged)
	}
}
