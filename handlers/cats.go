package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/repository"
	"github.com/cattus-org/cattus-api/types"
)

type CatsHandler struct {
	catsRepo *repository.CatsRepository
}

func NewCatsHandler(catsRepo *repository.CatsRepository) *CatsHandler {
	return &CatsHandler{catsRepo: catsRepo}
}

func (h *CatsHandler) CreateCat(c *gin.Context) {
	var req struct {
		Name         string     `json:"name" binding:"required"`
		BirthDate    *time.Time `json:"birthDate"`
		Sex          string     `json:"sex"`
		Picture      string     `json:"picture"`
		Observations string     `json:"observations"`
		Weight       *float64   `json:"weight"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	userID := c.GetInt64("userId")
	cat := &models.Cat{
		Name:         req.Name,
		BirthDate:    req.BirthDate,
		Sex:          req.Sex,
		Picture:      req.Picture,
		Observations: req.Observations,
		Weight:       req.Weight,
		Status:       models.CatStatusOK,
		CompanyID:    c.GetInt64("companyId"),
		CreatedBy:    &userID,
	}
	created, err := h.catsRepo.CreateCat(cat)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(created))
}

func (h *CatsHandler) ListCats(c *gin.Context) {
	params := types.ParseListParams(c)
	cats, err := h.catsRepo.ListCats(c.GetInt64("companyId"), params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"cats":    cats,
		"hasMore": types.HasMore(len(cats), params.Limit),
	}))
}

func (h *CatsHandler) GetCat(c *gin.Context) {
	cat, ok := h.loadCat(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(cat))
}

func (h *CatsHandler) UpdateCat(c *gin.Context) {
	cat, ok := h.loadCat(c)
	if !ok {
		return
	}
	var req struct {
		Name         *string    `json:"name"`
		BirthDate    *time.Time `json:"birthDate"`
		Sex          *string    `json:"sex"`
		Picture      *string    `json:"picture"`
		Observations *string    `json:"observations"`
		Weight       *float64   `json:"weight"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if req.Name != nil {
		cat.Name = *req.Name
	}
	if req.BirthDate != nil {
		cat.BirthDate = req.BirthDate
	}
	if req.Sex != nil {
		cat.Sex = *req.Sex
	}
	if req.Picture != nil {
		cat.Picture = *req.Picture
	}
	if req.Observations != nil {
		cat.Observations = *req.Observations
	}
	if req.Weight != nil {
		cat.Weight = req.Weight
	}
	if err := h.catsRepo.UpdateCat(cat); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Cat updated successfully", cat))
}

func (h *CatsHandler) DeleteCat(c *gin.Context) {
	cat, ok := h.loadCat(c)
	if !ok {
		return
	}
	if err := h.catsRepo.SetCatDeleted(cat.ID, true); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Cat deleted successfully", nil))
}

func (h *CatsHandler) SetFavorite(c *gin.Context) {
	cat, ok := h.loadCat(c)
	if !ok {
		return
	}
	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if err := h.catsRepo.SetFavorite(cat.ID, req.Favorite); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Favorite updated", gin.H{"favorite": req.Favorite}))
}

// loadCat resolves :catId, enforces company ownership and writes the error
// response itself when the cat is unavailable.
func (h *CatsHandler) loadCat(c *gin.Context) (*models.Cat, bool) {
	id, err := strconv.ParseInt(c.Param("catId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid cat ID"))
		return nil, false
	}
	cat, err := h.catsRepo.GetCatByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return nil, false
	}
	if cat == nil || cat.IsDeleted {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Cat not found"))
		return nil, false
	}
	if cat.CompanyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this cat"))
		return nil, false
	}
	return cat, true
}
