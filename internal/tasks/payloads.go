package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type constants shared by queue producers and consumers.
const (
	TypeCvRender = "cv:render"
)

// CvRenderPayload carries the minimum information needed to render and store
// a student's CV.
type CvRenderPayload struct {
	StudentID     uint   `json:"student_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewCvRenderTask builds a render-and-store task for the student's draft.
func NewCvRenderTask(studentID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CvRenderPayload{
		StudentID:     studentID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCvRender, payload), nil
}
