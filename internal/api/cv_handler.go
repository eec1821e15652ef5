package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/cv"
	"cvstudio/internal/database"
	"cvstudio/internal/layout"
	"cvstudio/internal/storage"
	"cvstudio/internal/tasks"
)

// taskEnqueuer is the slice of *asynq.Client the handler needs.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// presigner is the slice of the storage client the handler needs.
type presigner interface {
	GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
}

// CvHandler serves the CV draft lifecycle: load, edit, validate, preview,
// export and save.
type CvHandler struct {
	db          *gorm.DB
	asynqClient taskEnqueuer
	storage     presigner
	engine      *layout.Engine
	logger      *slog.Logger
}

// NewCvHandler builds the CV handler.
func NewCvHandler(db *gorm.DB, asynqClient taskEnqueuer, storageClient *storage.Client, engine *layout.Engine, logger *slog.Logger) *CvHandler {
	h := &CvHandler{
		db:          db,
		asynqClient: asynqClient,
		engine:      engine,
		logger:      logger,
	}
	if storageClient != nil {
		h.storage = storageClient
	}
	return h
}

// loadDocument fetches the student's draft, creating a seeded default when
// none exists yet. The returned document is always normalized.
func (h *CvHandler) loadDocument(ctx context.Context, studentID uint) (*cv.Document, error) {
	var draft database.CvDraft
	err := h.db.WithContext(ctx).Where("student_id = ?", studentID).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		doc := cv.NewDocument()
		var student database.Student
		if err := h.db.WithContext(ctx).First(&student, studentID).Error; err == nil {
			doc.SeedFromProfile(cv.Profile{
				Name:          student.Name,
				Email:         student.Email,
				Phone:         student.Phone,
				College:       student.College,
				Branch:        student.Branch,
				YearOfPassing: student.YearOfPassing,
			})
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cv draft: %w", err)
	}

	var doc cv.Document
	if err := json.Unmarshal(draft.Content, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal cv draft: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// storeDocument upserts the student's draft content.
func (h *CvHandler) storeDocument(ctx context.Context, studentID uint, doc *cv.Document) error {
	content, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal cv draft: %w", err)
	}

	var draft database.CvDraft
	err = h.db.WithContext(ctx).Where("student_id = ?", studentID).First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		draft = database.CvDraft{
			StudentID: studentID,
			Content:   datatypes.JSON(content),
		}
		if err := h.db.WithContext(ctx).Create(&draft).Error; err != nil {
			return fmt.Errorf("create cv draft: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("query cv draft: %w", err)
	}

	if err := h.db.WithContext(ctx).Model(&draft).Update("content", datatypes.JSON(content)).Error; err != nil {
		return fmt.Errorf("update cv draft: %w", err)
	}
	return nil
}

// GetDocument returns the current draft, seeding a fresh one from the
// student profile when no draft exists yet.
func (h *CvHandler) GetDocument(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	doc, err := h.loadDocument(c.Request.Context(), studentID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("load cv draft failed", slog.Any("error", err))
		Internal(c, "failed to load cv")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// PutDocument replaces the draft content wholesale.
func (h *CvHandler) PutDocument(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var doc cv.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		BadRequest(c, err.Error())
		return
	}
	doc.Normalize()

	if err := h.storeDocument(c.Request.Context(), studentID, &doc); err != nil {
		middleware.LoggerFromContext(c).Error("store cv draft failed", slog.Any("error", err))
		Internal(c, "failed to save cv")
		return
	}
	c.JSON(http.StatusOK, &doc)
}

// mutate runs fn against the loaded draft and persists the result.
func (h *CvHandler) mutate(c *gin.Context, fn func(doc *cv.Document) error) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	doc, err := h.loadDocument(ctx, studentID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("load cv draft failed", slog.Any("error", err))
		Internal(c, "failed to load cv")
		return
	}

	if err := fn(doc); err != nil {
		switch {
		case errors.Is(err, cv.ErrUnknownSection), errors.Is(err, cv.ErrUnknownEntryKind), errors.Is(err, cv.ErrIndexOutOfRange):
			BadRequest(c, err.Error())
		case errors.Is(err, cv.ErrMandatorySection), errors.Is(err, cv.ErrLastEntry):
			Conflict(c, err.Error())
		default:
			middleware.LoggerFromContext(c).Error("mutate cv draft failed", slog.Any("error", err))
			Internal(c, "failed to update cv")
		}
		return
	}

	if err := h.storeDocument(ctx, studentID, doc); err != nil {
		middleware.LoggerFromContext(c).Error("store cv draft failed", slog.Any("error", err))
		Internal(c, "failed to save cv")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// EnableSection turns an optional section on.
func (h *CvHandler) EnableSection(c *gin.Context) {
	id := cv.SectionID(c.Param("id"))
	h.mutate(c, func(doc *cv.Document) error {
		return doc.EnableSection(id)
	})
}

// DisableSection turns an optional section off and clears its content.
func (h *CvHandler) DisableSection(c *gin.Context) {
	id := cv.SectionID(c.Param("id"))
	h.mutate(c, func(doc *cv.Document) error {
		return doc.DisableSection(id)
	})
}

type reorderRequest struct {
	ToIndex int `json:"to_index"`
}

// ReorderSection moves a section to a new position in the order.
func (h *CvHandler) ReorderSection(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id := cv.SectionID(c.Param("id"))
	h.mutate(c, func(doc *cv.Document) error {
		return doc.ReorderSection(id, req.ToIndex)
	})
}

// AddEntry appends an empty education or experience entry.
func (h *CvHandler) AddEntry(c *gin.Context) {
	kind := cv.EntryKind(c.Param("kind"))
	h.mutate(c, func(doc *cv.Document) error {
		return doc.AddEntry(kind)
	})
}

// RemoveEntry deletes the entry at the given index; removing the last
// remaining entry is refused with 409.
func (h *CvHandler) RemoveEntry(c *gin.Context) {
	kind := cv.EntryKind(c.Param("kind"))
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "invalid entry index")
		return
	}
	h.mutate(c, func(doc *cv.Document) error {
		return doc.RemoveEntry(kind, index)
	})
}

// Validate runs the full rule set and returns the per-field error map.
func (h *CvHandler) Validate(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	doc, err := h.loadDocument(c.Request.Context(), studentID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("load cv draft failed", slog.Any("error", err))
		Internal(c, "failed to load cv")
		return
	}

	fieldErrors, valid := cv.Validate(doc, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"valid":  valid,
		"errors": fieldErrors,
	})
}

// Export renders the draft synchronously and streams the PDF back with a
// download filename derived from the student's name.
func (h *CvHandler) Export(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	doc, err := h.loadDocument(ctx, studentID)
	if err != nil {
		logger.Error("load cv draft failed", slog.Any("error", err))
		Internal(c, "failed to load cv")
		return
	}

	if fieldErrors, valid := cv.Validate(doc, time.Now()); !valid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "cv has validation errors",
			"errors": fieldErrors,
		})
		return
	}

	result, err := h.engine.Render(ctx, doc)
	if err != nil {
		logger.Error("render cv pdf failed", slog.Any("error", err))
		Internal(c, "failed to render pdf")
		return
	}
	if len(result.Warnings) > 0 {
		logger.Warn("pdf exported with degraded assets", slog.Any("warnings", result.Warnings))
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.ExportFileName()))
	c.Header("X-Page-Count", strconv.Itoa(result.Pages))
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}

// Save enqueues a background render-and-store task and returns immediately.
// Completion is announced over the websocket channel.
func (h *CvHandler) Save(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	logger := middleware.LoggerFromContext(c)
	correlationID := middleware.GetCorrelationID(c)

	doc, err := h.loadDocument(c.Request.Context(), studentID)
	if err != nil {
		logger.Error("load cv draft failed", slog.Any("error", err))
		Internal(c, "failed to load cv")
		return
	}
	if fieldErrors, valid := cv.Validate(doc, time.Now()); !valid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "cv has validation errors",
			"errors": fieldErrors,
		})
		return
	}

	task, err := tasks.NewCvRenderTask(studentID, correlationID)
	if err != nil {
		logger.Error("build render task failed", slog.Any("error", err))
		Internal(c, "failed to queue render")
		return
	}

	info, err := h.asynqClient.EnqueueContext(c.Request.Context(), task, asynq.MaxRetry(5))
	if err != nil {
		logger.Error("enqueue render task failed", slog.Any("error", err))
		Internal(c, "failed to queue render")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "cv render request accepted",
		"task_id": info.ID,
	})
}

// Preview returns the live HTML preview scaled to the requested viewport
// width in pixels.
func (h *CvHandler) Preview(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	width, err := strconv.ParseFloat(c.DefaultQuery("width", "0"), 64)
	if err != nil {
		BadRequest(c, "invalid width")
		return
	}

	doc, err := h.loadDocument(c.Request.Context(), studentID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("load cv draft failed", slog.Any("error", err))
		Internal(c, "failed to load cv")
		return
	}

	html, err := layout.PreviewHTML(doc, width)
	if err != nil {
		middleware.LoggerFromContext(c).Error("render preview failed", slog.Any("error", err))
		Internal(c, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// GetDownloadLink returns a presigned URL for the last saved PDF.
func (h *CvHandler) GetDownloadLink(c *gin.Context) {
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

	if student.CvObjectKey == "" {
		Conflict(c, "pdf not ready")
		return
	}

	doc, err := h.loadDocument(ctx, studentID)
	if err != nil {
		middleware.LoggerFromContext(c).Error("load cv draft failed", slog.Any("error", err))
		Internal(c, "failed to load cv")
		return
	}

	params := map[string]string{
		"response-content-disposition": fmt.Sprintf("attachment; filename=%q", doc.ExportFileName()),
	}
	signedURL, err := h.storage.GeneratePresignedURLWithParams(ctx, student.CvObjectKey, 5*time.Minute, params)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate download link failed", slog.Any("error", err))
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL, "expires_in": int((5 * time.Minute).Seconds())})
}
