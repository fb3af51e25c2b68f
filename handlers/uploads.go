package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/cattus-org/cattus-api/initializers"
	"github.com/cattus-org/cattus-api/types"
)

// UploadsHandler stores cat and camera pictures in object storage and hands
// back a stable key plus a presigned URL for display.
type UploadsHandler struct{}

func NewUploadsHandler() *UploadsHandler {
	return &UploadsHandler{}
}

func (h *UploadsHandler) UploadFile(c *gin.Context) {
	// Limit request body size before reading multipart data
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, initializers.Conf.MaxSize)

	file, err := c.FormFile("file")
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, types.NewErrorResponse(types.ErrorCodeValidation, "file size exceeds the limit"))
			return
		}
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "file is required"))
		return
	}

	// Detect real MIME type from file content, not from client header
	sniff, openErr := file.Open()
	if openErr != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "cannot open uploaded file"))
		return
	}
	mt, detectErr := mimetype.DetectReader(sniff)
	_ = sniff.Close()
	if detectErr != nil || mt == nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "failed to detect file type"))
		return
	}
	detectedCT := strings.Split(mt.String(), ";")[0]

	if err := initializers.CheckFileAllowed(file.Size, detectedCT); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	objectKey := "pictures/" + uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "cannot open uploaded file"))
		return
	}
	defer src.Close()

	_, err = initializers.MinioClient.PutObject(
		context.Background(),
		initializers.Conf.Bucket,
		objectKey,
		src,
		file.Size,
		minio.PutObjectOptions{ContentType: detectedCT},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}

	url, err := initializers.GenerateObjectURL(objectKey, file.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "failed to create presigned url"))
		return
	}

	c.JSON(http.StatusCreated, types.NewSuccessResponse(gin.H{
		"key":  objectKey,
		"url":  url,
		"size": file.Size,
		"type": detectedCT,
	}))
}

// GetFile resolves an object key to a presigned URL. Keys are opaque to
// clients; ownership is implied by the authenticated company scope.
func (h *UploadsHandler) GetFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "object key is required"))
		return
	}
	url, err := initializers.GenerateObjectURL(key, filepath.Base(key))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, "failed to create presigned url"))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"url": url}))
}
