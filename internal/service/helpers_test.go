package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[string]models.Assignment
	history     []models.AssignmentHistory
	nextID      uint
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assignments: map[string]models.Assignment{}}
}

func (r *memAssignmentRepo) GetByStudentID(ctx context.Context, studentID string) (models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[studentID]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *memAssignmentRepo) Upsert(ctx context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.assignments[assignment.StudentID]; ok {
		assignment.ID = existing.ID
	} else {
		r.nextID++
		assignment.ID = r.nextID
	}
	r.assignments[assignment.StudentID] = *assignment
	return nil
}

func (r *memAssignmentRepo) MarkCompleted(ctx context.Context, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[studentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.Status = models.AssignmentStatusCompleted
	r.assignments[studentID] = assignment
	return nil
}

func (r *memAssignmentRepo) Delete(ctx context.Context, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[studentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.assignments, studentID)
	return nil
}

func (r *memAssignmentRepo) AppendHistory(ctx context.Context, entry *models.AssignmentHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uint(len(r.history) + 1)
	r.history = append(r.history, *entry)
	return nil
}

func (r *memAssignmentRepo) ListHistory(ctx context.Context, studentID string) ([]models.AssignmentHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]models.AssignmentHistory, 0, len(r.history))
	for _, entry := range r.history {
		if studentID == "" || entry.StudentID == studentID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type memSubmissionRepo struct {
	mu          sync.Mutex
	createErr   error
	submissions []models.Submission
}

func (r *memSubmissionRepo) failCreates(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr = err
}

func (r *memSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Submission, 0, len(r.submissions))
	for _, submission := range r.submissions {
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Graded != nil && submission.Graded != *filter.Graded {
			continue
		}
		out = append(out, submission)
	}
	return out, nil
}

func (r *memSubmissionRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	return r.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
}

func (r *memSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, submission := range r.submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r *memSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	submission.ID = uint(len(r.submissions) + 1)
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *memSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.submissions {
		if existing.ID == submission.ID {
			r.submissions[i] = *submission
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memStudentRepo struct {
	mu       sync.Mutex
	students map[string]models.Student
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{students: map[string]models.Student{}}
}

func (r *memStudentRepo) GetByStudentID(ctx context.Context, studentID string) (models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[studentID]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (r *memStudentRepo) RecordLogin(ctx context.Context, studentID, studySchedule string, at time.Time) (models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[studentID]
	if !ok {
		student = models.Student{
			ID:            uint(len(r.students) + 1),
			StudentID:     studentID,
			StudySchedule: studySchedule,
			LoginCount:    1,
			LastLoginAt:   at,
		}
	} else {
		student.LoginCount++
		student.LastLoginAt = at
	}
	r.students[studentID] = student
	return student, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []dto.SubmissionResponse
}

func (n *recordingNotifier) SubmissionGraded(ctx context.Context, submission dto.SubmissionResponse) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, submission)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}
