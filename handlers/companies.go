package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/types"
)

type companyStore interface {
	GetCompanyByID(id int64) (*models.Company, error)
	CreateCompany(c *models.Company) (*models.Company, error)
	UpdateCompany(c *models.Company) error
}

type CompaniesHandler struct {
	companiesRepo companyStore
	usersRepo     userStore
}

func NewCompaniesHandler(companiesRepo companyStore, usersRepo userStore) *CompaniesHandler {
	return &CompaniesHandler{companiesRepo: companiesRepo, usersRepo: usersRepo}
}

// loadCompany resolves :id and verifies it is the caller's own company.
func (h *CompaniesHandler) loadCompany(c *gin.Context) *models.Company {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid company ID"))
		return nil
	}
	if id != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this company"))
		return nil
	}
	company, err := h.companiesRepo.GetCompanyByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return nil
	}
	if company == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Company not found"))
		return nil
	}
	return company
}

func (h *CompaniesHandler) GetCompany(c *gin.Context) {
	company := h.loadCompany(c)
	if company == nil {
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(company))
}

// RegisterCompany is the onboarding endpoint: it creates the company and its
// first admin account in one call. It is the only unauthenticated write.
func (h *CompaniesHandler) RegisterCompany(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		CNPJ          string `json:"cnpj"`
		Phone         string `json:"phone"`
		AdminName     string `json:"adminName" binding:"required"`
		AdminEmail    string `json:"adminEmail" binding:"required,email"`
		AdminPassword string `json:"adminPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	existing, err := h.usersRepo.GetUserByEmail(req.AdminEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Email already in use"))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Failed to hash password"))
		return
	}
	company, err := h.companiesRepo.CreateCompany(&models.Company{
		Name:  req.Name,
		CNPJ:  req.CNPJ,
		Phone: req.Phone,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	admin, err := h.usersRepo.CreateUser(req.AdminName, req.AdminEmail, string(hash), models.AccessLevelAdmin, company.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(gin.H{
		"company": company,
		"admin":   admin,
	}))
}

func (h *CompaniesHandler) UpdateCompany(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	company := h.loadCompany(c)
	if company == nil {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		CNPJ  *string `json:"cnpj"`
		Logo  *string `json:"logo"`
		Phone *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Company name cannot be empty"))
			return
		}
		company.Name = *req.Name
	}
	if req.CNPJ != nil {
		company.CNPJ = *req.CNPJ
	}
	if req.Logo != nil {
		company.Logo = *req.Logo
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if err := h.companiesRepo.UpdateCompany(company); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Company updated successfully", company))
}
