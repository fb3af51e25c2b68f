package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/repository"
	"github.com/cattus-org/cattus-api/types"
)

type CamerasHandler struct {
	camerasRepo *repository.CamerasRepository
}

func NewCamerasHandler(camerasRepo *repository.CamerasRepository) *CamerasHandler {
	return &CamerasHandler{camerasRepo: camerasRepo}
}

// requireAdmin gates camera management to admin users.
func requireAdmin(c *gin.Context) bool {
	if c.GetInt("accessLevel") < models.AccessLevelAdmin {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "Admin access required"))
		return false
	}
	return true
}

func (h *CamerasHandler) CreateCamera(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req struct {
		Name      string `json:"name" binding:"required"`
		URL       string `json:"url" binding:"required"`
		Thumbnail string `json:"thumbnail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	userID := c.GetInt64("userId")
	cam := &models.Camera{
		Name:      req.Name,
		URL:       req.URL,
		Thumbnail: req.Thumbnail,
		CompanyID: c.GetInt64("companyId"),
		CreatedBy: &userID,
	}
	created, err := h.camerasRepo.CreateCamera(cam)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(created))
}

func (h *CamerasHandler) ListCameras(c *gin.Context) {
	params := types.ParseListParams(c)
	cameras, err := h.camerasRepo.ListCameras(c.GetInt64("companyId"), params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"cameras": cameras,
		"hasMore": types.HasMore(len(cameras), params.Limit),
	}))
}

func (h *CamerasHandler) GetCamera(c *gin.Context) {
	cam, ok := h.loadCamera(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(cam))
}

func (h *CamerasHandler) UpdateCamera(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	cam, ok := h.loadCamera(c, false)
	if !ok {
		return
	}
	var req struct {
		Name      *string `json:"name"`
		URL       *string `json:"url"`
		Thumbnail *string `json:"thumbnail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if req.Name != nil {
		cam.Name = *req.Name
	}
	if req.URL != nil {
		cam.URL = *req.URL
	}
	if req.Thumbnail != nil {
		cam.Thumbnail = *req.Thumbnail
	}
	if err := h.camerasRepo.UpdateCamera(cam); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Camera updated successfully", cam))
}

func (h *CamerasHandler) DeleteCamera(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	cam, ok := h.loadCamera(c, false)
	if !ok {
		return
	}
	if err := h.camerasRepo.SetCameraDeleted(cam.ID, true); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Camera deleted successfully", nil))
}

func (h *CamerasHandler) RestoreCamera(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	cam, ok := h.loadCamera(c, true)
	if !ok {
		return
	}
	if !cam.IsDeleted {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Camera not found"))
		return
	}
	if err := h.camerasRepo.SetCameraDeleted(cam.ID, false); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Camera restored successfully", cam))
}

func (h *CamerasHandler) loadCamera(c *gin.Context, allowDeleted bool) (*models.Camera, bool) {
	id, err := strconv.ParseInt(c.Param("cameraId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid camera ID"))
		return nil, false
	}
	cam, err := h.camerasRepo.GetCameraByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return nil, false
	}
	if cam == nil || (cam.IsDeleted && !allowDeleted) {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Camera not found"))
		return nil, false
	}
	if cam.CompanyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this camera"))
		return nil, false
	}
	return cam, true
}
