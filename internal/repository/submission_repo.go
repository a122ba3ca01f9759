package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/models"
)

// SubmissionFilter narrows submission queries.
type SubmissionFilter struct {
	StudentID *string
	Graded    *bool
}

// SubmissionRepository defines data operations for completed attempts.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.Graded != nil {
		query = query.Where("graded = ?", *filter.Graded)
	}

	var submissions []models.Submission
	if err := query.Order("completed_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	return r.List(ctx, SubmissionFilter{StudentID: &studentID})
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}
