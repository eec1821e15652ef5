package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/database"
	"cvstudio/internal/storage"
)

// ResumeHandler manages the student's uploaded resume file: virus-scanned
// upload, presigned download link and removal.
type ResumeHandler struct {
	db        *gorm.DB
	storage   *storage.Client
	logger    *slog.Logger
	clamdAddr string
	maxBytes  int64
}

// NewResumeHandler builds the resume upload handler.
func NewResumeHandler(db *gorm.DB, storageClient *storage.Client, logger *slog.Logger, clamdAddr string, maxBytes int64) *ResumeHandler {
	return &ResumeHandler{
		db:        db,
		storage:   storageClient,
		logger:    logger,
		clamdAddr: clamdAddr,
		maxBytes:  maxBytes,
	}
}

var allowedResumeExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Upload scans the multipart file with clamd and stores it, replacing any
// previous upload.
func (h *ResumeHandler) Upload(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		BadRequest(c, fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedResumeExtensions[ext]
	if !ok {
		BadRequest(c, "unsupported file type")
		return
	}

	logger := middleware.LoggerFromContext(c).With(slog.Uint64("student_id", uint64(studentID)))

	clamdClient := clamd.NewClamd(h.clamdAddr)

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(fileReader, abortChan)
	fileReader.Close()
	if err != nil {
		logger.Error("scan file failed", slog.Any("error", err))
		Internal(c, "failed to scan file")
		return
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			logger.Warn("malicious file rejected", slog.String("status", result.Status))
			BadRequest(c, "malicious file detected")
			return
		}
	}

	fileReader, err = file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	ctx := c.Request.Context()
	objectKey := fmt.Sprintf("uploaded-resumes/%d/%s%s", studentID, uuid.NewString(), ext)
	if _, err := h.storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		logger.Error("upload file failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	var student database.Student
	if err := h.db.WithContext(ctx).First(&student, studentID).Error; err != nil {
		logger.Error("query student failed", slog.Any("error", err))
		Internal(c, "failed to update student")
		return
	}

	oldKey := student.ResumeObjectKey
	if err := h.db.WithContext(ctx).Model(&student).Update("resume_object_key", objectKey).Error; err != nil {
		logger.Error("update resume object key failed", slog.Any("error", err))
		Internal(c, "failed to update student")
		return
	}

	if oldKey != "" {
		if err := h.storage.DeleteObject(ctx, oldKey); err != nil {
			logger.Warn("delete previous resume failed", slog.Any("error", err))
		}
	}

	c.JSON(http.StatusCreated, gin.H{"object_key": objectKey})
}

// GetDownloadLink returns a presigned URL for the uploaded resume.
func (h *ResumeHandler) GetDownloadLink(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var student database.Student
	if err := h.db.WithContext(ctx).First(&student, studentID).Error; err != nil {
		middleware.LoggerFromContext(c).Error("query student failed", slog.Any("error", err))
		Internal(c, "failed to query student")
		return
	}

	if student.ResumeObjectKey == "" {
		NotFound(c, "no resume uploaded")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(ctx, student.ResumeObjectKey, 5*time.Minute)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate resume link failed", slog.Any("error", err))
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL, "expires_in": int((5 * time.Minute).Seconds())})
}

// Delete removes the uploaded resume file and clears the student record.
func (h *ResumeHandler) Delete(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var student database.Student
	if err := h.db.WithContext(ctx).First(&student, studentID).Error; err != nil {
		middleware.LoggerFromContext(c).Error("query student failed", slog.Any("error", err))
		Internal(c, "failed to query student")
		return
	}

	if student.ResumeObjectKey == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.storage.DeleteObject(ctx, student.ResumeObjectKey); err != nil {
		middleware.LoggerFromContext(c).Error("delete resume object failed", slog.Any("error", err))
		Internal(c, "failed to delete resume")
		return
	}

	if err := h.db.WithContext(ctx).Model(&student).Update("resume_object_key", "").Error; err != nil {
		middleware.LoggerFromContext(c).Error("clear resume object key failed", slog.Any("error", err))
		Internal(c, "failed to update student")
		return
	}

	c.Status(http.StatusNoContent)
}
