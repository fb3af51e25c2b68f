package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cattus-org/cattus-api/models"
)

type fakeActivities struct {
	listCatCalls    int
	listCameraCalls int
	items           []models.Activity
}

func (f *fakeActivities) CreateActivity(a *models.Activity) (*models.Activity, error) {
	return a, nil
}
func (f *fakeActivities) GetActivityByID(id int64) (*models.Activity, error) { return nil, nil }
func (f *fakeActivities) UpdateActivity(a *models.Activity) error            { return nil }
func (f *fakeActivities) ListByCat(catID int64, offset, limit int) ([]models.Activity, error) {
	f.listCatCalls++
	return f.items, nil
}
func (f *fakeActivities) ListByCamera(cameraID int64, offset, limit int) ([]models.Activity, error) {
	f.listCameraCalls++
	return f.items, nil
}
func (f *fakeActivities) ListByCompany(companyID int64, offset, limit int) ([]models.Activity, error) {
	return f.items, nil
}

type fakeCats struct {
	cats map[int64]*models.Cat
}

func (f *fakeCats) GetCatByID(id int64) (*models.Cat, error) { return f.cats[id], nil }

type fakeCameras struct {
	cameras map[int64]*models.Camera
}

func (f *fakeCameras) GetCameraByID(id int64) (*models.Camera, error) { return f.cameras[id], nil }

func activitiesRouter(companyID int64, h *ActivitiesHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("companyId", companyID) })
	r.GET("/activities/camera/:cameraId", h.ListByCamera)
	r.GET("/activities/:id/cat", h.ListByCat)
	r.GET("/activities/:id/company", h.ListByCompany)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func TestListByCatScopedToOwnCompany(t *testing.T) {
	store := &fakeActivities{items: []models.Activity{
		{ID: 1, Title: models.ActivityEat, CatID: 5, StartedAt: time.Now()},
	}}
	cats := &fakeCats{cats: map[int64]*models.Cat{
		5: {ID: 5, Name: "Mia", CompanyID: 1},
		6: {ID: 6, Name: "Tom", CompanyID: 2},
	}}
	h := NewActivitiesHandler(store, cats, &fakeCameras{}, nil)
	r := activitiesRouter(1, h)

	w := get(r, "/activities/5/cat")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.listCatCalls)

	// Another tenant's cat: rejected before the repository is touched.
	w = get(r, "/activities/6/cat")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1, store.listCatCalls)

	w = get(r, "/activities/999/cat")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, store.listCatCalls)
}

func TestListByCameraScopedToOwnCompany(t *testing.T) {
	store := &fakeActivities{}
	cameras := &fakeCameras{cameras: map[int64]*models.Camera{
		3: {ID: 3, Name: "Yard", CompanyID: 1},
		4: {ID: 4, Name: "Kitchen", CompanyID: 2},
		7: {ID: 7, Name: "Old", CompanyID: 1, IsDeleted: true},
	}}
	h := NewActivitiesHandler(store, &fakeCats{}, cameras, nil)
	r := activitiesRouter(1, h)

	w := get(r, "/activities/camera/3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, store.listCameraCalls)

	w = get(r, "/activities/camera/4")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1, store.listCameraCalls)

	w = get(r, "/activities/camera/7")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, store.listCameraCalls)
}

func TestListByCompanyRejectsForeignCompany(t *testing.T) {
	h := NewActivitiesHandler(&fakeActivities{}, &fakeCats{}, &fakeCameras{}, nil)
	r := activitiesRouter(1, h)

	w := get(r, "/activities/2/company")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/activities/1/company")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}
