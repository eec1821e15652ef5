package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvstudio/internal/cv"
	"cvstudio/internal/database"
	"cvstudio/internal/errcode"
	"cvstudio/internal/layout"
	"cvstudio/internal/tasks"
)

// Uploader is the slice of the storage client the handler needs.
// *storage.Client satisfies it.
type Uploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// RenderTaskHandler consumes CV render tasks: load the draft, render the
// PDF, upload it and notify the student over Redis pub/sub.
type RenderTaskHandler struct {
	db          *gorm.DB
	store       Uploader
	redisClient *redis.Client
	engine      *layout.Engine
	logger      *slog.Logger
}

// nowFunc anchors validation's future-year rules; overridable in tests.
var nowFunc = time.Now

// NewRenderTaskHandler creates the task handler.
func NewRenderTaskHandler(
	db *gorm.DB,
	store Uploader,
	redisClient *redis.Client,
	engine *layout.Engine,
	logger *slog.Logger,
) *RenderTaskHandler {
	return &RenderTaskHandler{
		db:          db,
		store:       store,
		redisClient: redisClient,
		engine:      engine,
		logger:      logger,
	}
}

// ProcessTask implements asynq.Handler.
func (h *RenderTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.CvRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("student_id", uint64(payload.StudentID)),
	)
	log.Info("starting cv render task")

	var student database.Student
	if err := h.db.WithContext(ctx).First(&student, payload.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("student not found, skipping task")
			return nil
		}
		log.Error("query student failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		notify := RenderNotifyMessage{
			Status:        "error",
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishRenderNotify(ctx, student.ID, notify); err != nil {
			log.Error("publish render error notification failed", slog.Any("error", err))
		}
	}()

	var draft database.CvDraft
	if err := h.db.WithContext(ctx).Where("student_id = ?", student.ID).First(&draft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("cv draft not found, skipping task")
			return nil
		}
		log.Error("query cv draft failed", slog.Any("error", err))
		return err
	}

	var doc cv.Document
	if err := json.Unmarshal(draft.Content, &doc); err != nil {
		log.Error("unmarshal cv draft failed", slog.Any("error", err))
		return err
	}
	doc.Normalize()

	// Invalid drafts are rejected up front instead of burning retries on a
	// document that cannot become valid on its own.
	if fieldErrors, ok := cv.Validate(&doc, nowFunc()); !ok {
		log.Warn("cv draft failed validation, notifying without render",
			slog.Int("error_count", len(fieldErrors)),
		)
		notify := RenderNotifyMessage{
			Status:        "invalid",
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.ResourceMissing,
			ErrorMessage:  "cv draft has validation errors",
		}
		if err := h.publishRenderNotify(ctx, student.ID, notify); err != nil {
			log.Error("publish validation notification failed", slog.Any("error", err))
			return err
		}
		return nil
	}

	result, err := h.engine.Render(ctx, &doc)
	if err != nil {
		log.Error("render cv pdf failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("resumes/%d/%s.pdf", student.ID, uuid.NewString())
	pdfReader := bytes.NewReader(result.PDF)
	if _, err := h.store.UploadFile(ctx, objectName, pdfReader, int64(len(result.PDF)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	if err := h.db.WithContext(ctx).Model(&student).Update("cv_object_key", objectName).Error; err != nil {
		log.Error("update student cv object key failed", slog.Any("error", err))
		return err
	}

	notify := RenderNotifyMessage{
		Status:        "completed",
		CorrelationID: payload.CorrelationID,
		ObjectKey:     objectName,
		Pages:         result.Pages,
		ErrorCode:     errcode.OK,
	}
	if len(result.Warnings) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "some branding assets were unavailable, pdf generated without them"
		notify.Warnings = result.Warnings
		log.Warn("pdf generated with degraded assets",
			slog.Any("warnings", result.Warnings),
		)
	}
	if err := h.publishRenderNotify(ctx, student.ID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("cv render task completed", slog.Int("pages", result.Pages))
	return nil
}

func (h *RenderTaskHandler) publishRenderNotify(ctx context.Context, studentID uint, notify RenderNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", studentID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
