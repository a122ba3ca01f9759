package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/models"
)

// StudentRepository provides access to student profile records.
type StudentRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (models.Student, error)
	RecordLogin(ctx context.Context, studentID, studySchedule string, at time.Time) (models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) GetByStudentID(ctx context.Context, studentID string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

// RecordLogin creates the profile row on first login and bumps the login
// counter afterwards. The study schedule is only captured the first time;
// later logins never overwrite it.
func (r *studentRepository) RecordLogin(ctx context.Context, studentID, studySchedule string, at time.Time) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&student).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		student = models.Student{
			StudentID:     studentID,
			StudySchedule: studySchedule,
			LoginCount:    1,
			LastLoginAt:   at,
		}
		if err := r.db.WithContext(ctx).Create(&student).Error; err != nil {
			return models.Student{}, err
		}
		return student, nil
	case err != nil:
		return models.Student{}, err
	}

	student.LoginCount++
	student.LastLoginAt = at
	if err := r.db.WithContext(ctx).Save(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}
