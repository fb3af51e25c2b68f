package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/cattus-org/cattus-api/initializers"
	"github.com/cattus-org/cattus-api/models"
	"github.com/cattus-org/cattus-api/pkg/metrics"
	"github.com/cattus-org/cattus-api/reports"
	"github.com/cattus-org/cattus-api/repository"
	"github.com/cattus-org/cattus-api/types"
)

type ReportsHandler struct {
	reportsRepo    *repository.ReportsRepository
	catsRepo       *repository.CatsRepository
	activitiesRepo *repository.ActivitiesRepository
}

func NewReportsHandler(
	reportsRepo *repository.ReportsRepository,
	catsRepo *repository.CatsRepository,
	activitiesRepo *repository.ActivitiesRepository,
) *ReportsHandler {
	return &ReportsHandler{
		reportsRepo:    reportsRepo,
		catsRepo:       catsRepo,
		activitiesRepo: activitiesRepo,
	}
}

// GenerateReport builds the PDF, archives it in object storage, records the
// metadata row and streams the document back in the same response.
func (h *ReportsHandler) GenerateReport(c *gin.Context) {
	cat, ok := h.loadCat(c)
	if !ok {
		return
	}
	var req struct {
		Sections []string `json:"sections"`
		Days     int      `json:"days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	for _, s := range req.Sections {
		if !reports.ValidSection(s) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeInvalidRequest, "Unknown report section: "+s))
			return
		}
	}
	windowDays := req.Days
	if windowDays == 0 {
		windowDays = 7
	}
	if !supportedWindow(windowDays) {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Unsupported window"))
		return
	}

	now := time.Now()
	activities, err := h.activitiesRepo.ListByCatSince(cat.ID, now.AddDate(0, 0, -windowDays))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	results := make(map[models.ActivityTitle]metrics.Result, len(models.ActivityTitles))
	for _, title := range models.ActivityTitles {
		results[title] = metrics.Aggregate(activities, title, windowDays, now)
	}

	pdfBytes, err := reports.Build(reports.Input{
		Cat:        cat,
		WindowDays: windowDays,
		Results:    results,
		Activities: activities,
		Sections:   req.Sections,
		Now:        now,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}

	objectKey := fmt.Sprintf("reports/%d/%s.pdf", cat.ID, uuid.NewString())
	_, err = initializers.MinioClient.PutObject(
		context.Background(),
		initializers.Conf.Bucket,
		objectKey,
		bytes.NewReader(pdfBytes),
		int64(len(pdfBytes)),
		minio.PutObjectOptions{ContentType: "application/pdf"},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}

	sections := req.Sections
	if len(sections) == 0 {
		sections = reports.DefaultSections
	}
	if _, err := h.reportsRepo.CreateReport(&models.Report{
		CatID:       cat.ID,
		RequestedBy: c.GetInt64("userId"),
		Sections:    sections,
		ObjectKey:   objectKey,
		SizeBytes:   int64(len(pdfBytes)),
	}); err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}

	filename := fmt.Sprintf("report-%s-%s.pdf", cat.Name, now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusCreated, "application/pdf", pdfBytes)
}

func (h *ReportsHandler) ListReports(c *gin.Context) {
	cat, ok := h.loadCat(c)
	if !ok {
		return
	}
	params := types.ParseListParams(c)
	list, err := h.reportsRepo.ListByCat(cat.ID, params.Offset, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"reports": list,
		"hasMore": types.HasMore(len(list), params.Limit),
	}))
}

// DownloadReport re-issues a presigned URL for an archived document.
func (h *ReportsHandler) DownloadReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("reportId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid report ID"))
		return
	}
	report, err := h.reportsRepo.GetReportByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Report not found"))
		return
	}
	cat, err := h.catsRepo.GetCatByID(report.CatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	if cat == nil || cat.CompanyID != c.GetInt64("companyId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "No access to this report"))
		return
	}
	url, err := initializers.GenerateObjectURL(report.ObjectKey, "report.pdf")
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "failed to create presigned url"))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"url": url}))
}

func (h *ReportsHandler) loadCat(c *gin.Context) (*models.Cat, bool) {
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
