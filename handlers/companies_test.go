package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cattus-org/cattus-api/models"
)

type fakeCompanies struct {
	companies map[int64]*models.Company
	nextID    int64
}

func newFakeCompanies(seed ...*models.Company) *fakeCompanies {
	f := &fakeCompanies{companies: map[int64]*models.Company{}, nextID: 1}
	for _, c := range seed {
		f.companies[c.ID] = c
		if c.ID >= f.nextID {
			f.nextID = c.ID + 1
		}
	}
	return f
}

func (f *fakeCompanies) GetCompanyByID(id int64) (*models.Company, error) { return f.companies[id], nil }

func (f *fakeCompanies) CreateCompany(c *models.Company) (*models.Company, error) {
	c.ID = f.nextID
	f.nextID++
	f.companies[c.ID] = c
	return c, nil
}

func (f *fakeCompanies) UpdateCompany(c *models.Company) error {
	f.companies[c.ID] = c
	return nil
}

func companiesRouter(companyID int64, accessLevel int, h *CompaniesHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", int64(1))
		c.Set("companyId", companyID)
		c.Set("accessLevel", accessLevel)
	})
	r.GET("/companies/:id", h.GetCompany)
	r.PATCH("/companies/:id", h.UpdateCompany)
	r.POST("/companies", h.RegisterCompany)
	return r
}

func TestGetCompanyScopedToOwn(t *testing.T) {
	store := newFakeCompanies(
		&models.Company{ID: 1, Name: "Cattus HQ"},
		&models.Company{ID: 2, Name: "Someone Else"},
	)
	h := NewCompaniesHandler(store, newFakeUsers())
	r := companiesRouter(1, models.AccessLevelEmployee, h)

	w := doJSON(r, "GET", "/companies/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cattus HQ")

	assert.Equal(t, http.StatusForbidden, doJSON(r, "GET", "/companies/2", nil).Code)
}

func TestUpdateCompanyRequiresAdmin(t *testing.T) {
	store := newFakeCompanies(&models.Company{ID: 1, Name: "Cattus HQ"})
	h := NewCompaniesHandler(store, newFakeUsers())

	r := companiesRouter(1, models.AccessLevelEmployee, h)
	assert.Equal(t, http.StatusForbidden, doJSON(r, "PATCH", "/companies/1", gin.H{"name": "New"}).Code)

	r = companiesRouter(1, models.AccessLevelAdmin, h)
	w := doJSON(r, "PATCH", "/companies/1", gin.H{"name": "New Name", "phone": "+55 11 99999"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New Name", store.companies[1].Name)
	assert.Equal(t, "+55 11 99999", store.companies[1].Phone)

	// Blank names are rejected, the stored record is untouched.
	w = doJSON(r, "PATCH", "/companies/1", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "New Name", store.companies[1].Name)
}

func TestRegisterCompanyCreatesAdmin(t *testing.T) {
	companies := newFakeCompanies()
	users := newFakeUsers()
	h := NewCompaniesHandler(companies, users)
	r := companiesRouter(0, 0, h)

	w := doJSON(r, "POST", "/companies", gin.H{
		"name":          "Feline Farm",
		"adminName":     "Root",
		"adminEmail":    "root@feline.io",
		"adminPassword": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	admin, err := users.GetUserByEmail("root@feline.io")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.AccessLevelAdmin, admin.AccessLevel)
	require.Len(t, companies.companies, 1)
	assert.Equal(t, companies.companies[admin.CompanyID].Name, "Feline Farm")

	// The same email cannot bootstrap a second company.
	w = doJSON(r, "POST", "/companies", gin.H{
		"name":          "Copy Cat",
		"adminName":     "Root",
		"adminEmail":    "root@feline.io",
		"adminPassword": "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
