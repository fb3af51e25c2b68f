package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/types"
)

type userStore interface {
	GetUserByID(id int64) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(companyID int64, offset, limit int) ([]models.User, error)
	CreateUser(name, email, passwordHash string, accessLevel int, companyID int64) (*models.User, error)
	UpdateUser(u *models.User) error
	SetUserDeleted(id int64, isDeleted bool) error
	UpdatePassword(id int64, passwordHash string) error
}

// UsersHandler manages a company's employee accounts. Management operations
// are admin-gated; password recovery is open (it is reached pre-login).
type UsersHandler struct {
	usersRepo userStore
	jwtSecret string
}

func NewUsersHandler(usersRepo userStore, jwtSecret string) *UsersHandler {
	return &UsersHandler{usersRepo: usersRepo, jwtSecret: jwtSecret}
}

// loadUser resolves :id to an active user of the caller's company.
func (h *UsersHandler) loadUser(c *gin.Context) *models.User {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid user ID"))
		return nil
	}
	user, err := h.usersRepo.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return nil
	}
	if user == nil || user.IsDeleted {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "User not found"))
		return nil
	}
	if user.CompanyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this user"))
		return nil
	}
	return user
}

func (h *UsersHandler) ListUsers(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	params := types.ParseListParams(c)
	users, err := h.usersRepo.ListUsers(c.GetInt64("companyId"), params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"users":   users,
		"hasMore": types.HasMore(len(users), params.Limit),
	}))
}

func (h *UsersHandler) GetUser(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	user := h.loadUser(c)
	if user == nil {
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(user))
}

func (h *UsersHandler) CreateUser(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var req struct {
		Name        string `json:"name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=8"`
		AccessLevel int    `json:"accessLevel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if req.AccessLevel < models.AccessLevelEmployee || req.AccessLevel > models.AccessLevelAdmin {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Invalid access level"))
		return
	}
	existing, err := h.usersRepo.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Email already in use"))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Failed to hash password"))
		return
	}
	user, err := h.usersRepo.CreateUser(req.Name, req.Email, string(hash), req.AccessLevel, c.GetInt64("companyId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(user))
}

func (h *UsersHandler) UpdateUser(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	user := h.loadUser(c)
	if user == nil {
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Email       *string `json:"email"`
		AccessLevel *int    `json:"accessLevel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		existing, err := h.usersRepo.GetUserByEmail(*req.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
			return
		}
		if existing != nil {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Email already in use"))
			return
		}
		user.Email = *req.Email
	}
	if req.AccessLevel != nil {
		if *req.AccessLevel < models.AccessLevelEmployee || *req.AccessLevel > models.AccessLevelAdmin {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Invalid access level"))
			return
		}
		user.AccessLevel = *req.AccessLevel
	}
	if err := h.usersRepo.UpdateUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("User updated successfully", user))
}

func (h *UsersHandler) DeleteUser(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	user := h.loadUser(c)
	if user == nil {
		return
	}
	// Admins cannot remove themselves; a company always keeps one admin.
	if user.ID == c.GetInt64("userId") {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Cannot delete your own account"))
		return
	}
	if err := h.usersRepo.SetUserDeleted(user.ID, true); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("User deleted successfully", nil))
}

// ForgotPassword issues a short-lived reset token. The response is the same
// whether or not the email exists, so the endpoint cannot be used to probe
// for accounts. Without a mail provider the token rides in the response; the
// frontend forwards it to the reset form.
func (h *UsersHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	user, err := h.usersRepo.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	resp := gin.H{}
	if user != nil {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"userId":  user.ID,
			"purpose": "password_reset",
			"exp":     time.Now().Add(time.Minute * 15).Unix(),
		})
		signed, err := token.SignedString([]byte(h.jwtSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Failed to generate token"))
			return
		}
		resp["resetToken"] = signed
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("If the email exists, a reset link has been sent", resp))
}

func (h *UsersHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	token, err := jwt.Parse(req.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeInvalidToken, "Invalid or expired reset token"))
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != "password_reset" {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeInvalidToken, "Invalid or expired reset token"))
		return
	}
	userID, ok := claims["userId"].(float64)
	if !ok {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeInvalidToken, "Invalid or expired reset token"))
		return
	}
	user, err := h.usersRepo.GetUserByID(int64(userID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if user == nil || user.IsDeleted {
		c.JSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeInvalidToken, "Invalid or expired reset token"))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "Failed to hash password"))
		return
	}
	if err := h.usersRepo.UpdatePassword(user.ID, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessMessage("Password updated successfully", nil))
}
