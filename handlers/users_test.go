package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cattus-org/cattus-api/models"
)

type fakeUsers struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUsers(seed ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[int64]*models.User{}, nextID: 1}
	for _, u := range seed {
		f.users[u.ID] = u
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
	}
	return f
}

func (f *fakeUsers) GetUserByID(id int64) (*models.User, error) { return f.users[id], nil }

func (f *fakeUsers) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email && !u.IsDeleted {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ListUsers(companyID int64, offset, limit int) ([]models.User, error) {
	result := []models.User{}
	for _, u := range f.users {
		if u.CompanyID == companyID && !u.IsDeleted {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (f *fakeUsers) CreateUser(name, email, passwordHash string, accessLevel int, companyID int64) (*models.User, error) {
	u := &models.User{
		ID:           f.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		AccessLevel:  accessLevel,
		CompanyID:    companyID,
	}
	f.nextID++
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdateUser(u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) SetUserDeleted(id int64, isDeleted bool) error {
	if u, ok := f.users[id]; ok {
		u.IsDeleted = isDeleted
	}
	return nil
}

func (f *fakeUsers) UpdatePassword(id int64, passwordHash string) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

const testSecret = "test-secret-test-secret-test-secret!"

func usersRouter(userID, companyID int64, accessLevel int, h *UsersHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("companyId", companyID)
		c.Set("accessLevel", accessLevel)
	})
	r.GET("/users", h.ListUsers)
	r.POST("/users", h.CreateUser)
	r.GET("/users/:id", h.GetUser)
	r.PATCH("/users/:id", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)
	r.POST("/users/forgot-password", h.ForgotPassword)
	r.POST("/users/reset-password", h.ResetPassword)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	store := newFakeUsers(&models.User{ID: 1, Email: "a@x.io", CompanyID: 1})
	h := NewUsersHandler(store, testSecret)
	r := usersRouter(1, 1, models.AccessLevelEmployee, h)

	assert.Equal(t, http.StatusForbidden, doJSON(r, "GET", "/users", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(r, "POST", "/users", gin.H{
		"name": "Eve", "email": "eve@x.io", "password": "supersecret",
	}).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(r, "DELETE", "/users/1", nil).Code)
}

func TestCreateUserHashesPassword(t *testing.T) {
	store := newFakeUsers()
	h := NewUsersHandler(store, testSecret)
	r := usersRouter(9, 1, models.AccessLevelAdmin, h)

	w := doJSON(r, "POST", "/users", gin.H{
		"name":        "Ana",
		"email":       "ana@cattus.io",
		"password":    "correct horse",
		"accessLevel": models.AccessLevelEmployee,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created, err := store.GetUserByEmail("ana@cattus.io")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, "correct horse", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse")))

	// Duplicate email is rejected.
	w = doJSON(r, "POST", "/users", gin.H{
		"name": "Ana2", "email": "ana@cattus.io", "password": "correct horse",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsersScopedToOwnCompany(t *testing.T) {
	store := newFakeUsers(
		&models.User{ID: 1, Name: "Own", Email: "own@x.io", CompanyID: 1},
		&models.User{ID: 2, Name: "Other", Email: "other@y.io", CompanyID: 2},
	)
	h := NewUsersHandler(store, testSecret)
	r := usersRouter(9, 1, models.AccessLevelAdmin, h)

	assert.Equal(t, http.StatusOK, doJSON(r, "GET", "/users/1", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(r, "GET", "/users/2", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, "GET", "/users/99", nil).Code)
}

func TestDeleteUserCannotRemoveSelf(t *testing.T) {
	store := newFakeUsers(
		&models.User{ID: 1, Email: "admin@x.io", CompanyID: 1, AccessLevel: models.AccessLevelAdmin},
		&models.User{ID: 2, Email: "emp@x.io", CompanyID: 1},
	)
	h := NewUsersHandler(store, testSecret)
	r := usersRouter(1, 1, models.AccessLevelAdmin, h)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, "DELETE", "/users/1", nil).Code)

	require.Equal(t, http.StatusOK, doJSON(r, "DELETE", "/users/2", nil).Code)
	assert.True(t, store.users[2].IsDeleted)
}

func TestPasswordResetRoundTrip(t *testing.T) {
	store := newFakeUsers(&models.User{ID: 1, Email: "lost@x.io", CompanyID: 1, PasswordHash: "old"})
	h := NewUsersHandler(store, testSecret)
	r := usersRouter(0, 0, 0, h)

	w := doJSON(r, "POST", "/users/forgot-password", gin.H{"email": "lost@x.io"})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			ResetToken string `json:"resetToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.ResetToken)

	w = doJSON(r, "POST", "/users/reset-password", gin.H{
		"token":       body.Data.ResetToken,
		"newPassword": "brand new pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.users[1].PasswordHash), []byte("brand new pass")))

	// Garbage tokens are rejected outright.
	w = doJSON(r, "POST", "/users/reset-password", gin.H{
		"token":       "not-a-token",
		"newPassword": "brand new pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForgotPasswordUnknownEmailLooksIdentical(t *testing.T) {
	h := NewUsersHandler(newFakeUsers(), testSecret)
	r := usersRouter(0, 0, 0, h)

	w := doJSON(r, "POST", "/users/forgot-password", gin.H{"email": "nobody@x.io"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "resetToken")
}
