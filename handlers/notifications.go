package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cattus-org/cattus-api/repository"
	"github.com/cattus-org/cattus-api/types"
)

type NotificationsHandler struct {
	repo *repository.NotificationsRepository
}

func NewNotificationsHandler(repo *repository.NotificationsRepository) *NotificationsHandler {
	return &NotificationsHandler{repo: repo}
}

func (h *NotificationsHandler) ListUnread(c *gin.Context) {
	params := types.ParseListParams(c)
	notifs, err := h.repo.ListUnread(c.GetInt64("companyId"), params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"notifications": notifs,
		"hasMore":       types.HasMore(len(notifs), params.Limit),
	}))
}

func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	companyID := c.GetInt64("companyId")
	var req struct {
		IDs []int64 `json:"ids"`
		All bool    `json:"all"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if req.All {
		if err := h.repo.MarkAllRead(companyID); err != nil {
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
			return
		}
		c.JSON(http.StatusOK, types.NewSuccessMessage("Notifications marked read", nil))
		return
	}
	if len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "ids required"))
		return
	}
	for _, id := range req.IDs {
		if err := h.repo.MarkRead(id, companyID); err != nil {
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
			return
		}
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Notifications marked read", nil))
}
