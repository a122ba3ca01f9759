package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quizdeck/quizdeck-api/internal/models"
)

// AssignmentRepository defines persistence operations for quiz assignments.
// A student has at most one active assignment; Upsert overwrites it.
type AssignmentRepository interface {
	GetByStudentID(ctx context.Context, studentID string) (models.Assignment, error)
	Upsert(ctx context.Context, assignment *models.Assignment) error
	MarkCompleted(ctx context.Context, studentID string) error
	Delete(ctx context.Context, studentID string) error
	AppendHistory(ctx context.Context, entry *models.AssignmentHistory) error
	ListHistory(ctx context.Context, studentID string) ([]models.AssignmentHistory, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByStudentID(ctx context.Context, studentID string) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Upsert(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subject", "timer_minutes", "content", "content_type",
			"file_url", "correct_answers", "status", "updated_at",
		}),
	}).Create(assignment).Error
}

func (r *assignmentRepository) MarkCompleted(ctx context.Context, studentID string) error {
	result := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("student_id = ?", studentID).
		Update("status", models.AssignmentStatusCompleted)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) Delete(ctx context.Context, studentID string) error {
	result := r.db.WithContext(ctx).Where("student_id = ?", studentID).Delete(&models.Assignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) AppendHistory(ctx context.Context, entry *models.AssignmentHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *assignmentRepository) ListHistory(ctx context.Context, studentID string) ([]models.AssignmentHistory, error) {
	query := r.db.WithContext(ctx).Model(&models.AssignmentHistory{}).Order("created_at DESC")
	if studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}

	var entries []models.AssignmentHistory
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
