package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/database"
)

// ProfileHandler serves the student profile used to seed new drafts.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler builds the profile handler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

type profileResponse struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	College       string `json:"college,omitempty"`
	Branch        string `json:"branch,omitempty"`
	YearOfPassing int    `json:"year_of_passing,omitempty"`
}

// GetProfile returns the authenticated student's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var student database.Student
	if err := h.db.WithContext(c.Request.Context()).First(&student, studentID).Error; err != nil {
		middleware.LoggerFromContext(c).Error("query student failed", slog.Any("error", err))
		Internal(c, "failed to query profile")
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		Email:         student.Email,
		Name:          student.Name,
		Phone:         student.Phone,
		College:       student.College,
		Branch:        student.Branch,
		YearOfPassing: student.YearOfPassing,
	})
}

type updateProfileRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=120"`
	Phone         string `json:"phone"`
	College       string `json:"college"`
	Branch        string `json:"branch"`
	YearOfPassing int    `json:"year_of_passing"`
}

// UpdateProfile overwrites the editable profile fields.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	studentID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	updates := map[string]any{
		"name":            strings.TrimSpace(req.Name),
		"phone":           strings.TrimSpace(req.Phone),
		"college":         strings.TrimSpace(req.College),
		"branch":          strings.TrimSpace(req.Branch),
		"year_of_passing": req.YearOfPassing,
	}
	if err := h.db.WithContext(c.Request.Context()).
		Model(&database.Student{}).
		Where("id = ?", studentID).
		Updates(updates).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update profile failed", slog.Any("error", err))
		Internal(c, "failed to update profile")
		return
	}

	c.Status(http.StatusOK)
}
