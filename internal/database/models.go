package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Student is an account that owns one CV draft and one uploaded resume file.
type Student struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;size:120"`
	PasswordHash  string `gorm:"size:255"`
	Name          string `gorm:"size:120"`
	Phone         string `gorm:"size:32"`
	College       string `gorm:"size:255"`
	Branch        string `gorm:"size:255"`
	YearOfPassing int

	// Object key of the last generated CV PDF, empty until the first save.
	CvObjectKey string `gorm:"size:512"`
	// Object key of the student's uploaded resume file, empty if none.
	ResumeObjectKey string `gorm:"size:512"`
}

// CvDraft persists the structured CV document as JSONB, one draft per student.
type CvDraft struct {
	gorm.Model
	StudentID uint           `gorm:"uniqueIndex"`
	Student   Student        `gorm:"constraint:OnDelete:CASCADE"`
	Content   datatypes.JSON `gorm:"type:jsonb"`
}
