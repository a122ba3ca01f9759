package dto

import (
	"time"

	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/quiz"
)

// AssignmentCreateRequest describes the multipart payload for saving a quiz.
// Saving for a student who already has an assignment overwrites it. The
// answer key arrives as a JSON-encoded object in the correct_answers field
// so the same form can carry a PDF upload.
type AssignmentCreateRequest struct {
	StudentID      string            `form:"student_id" json:"student_id" validate:"required,max=64"`
	Subject        string            `form:"subject" json:"subject" validate:"required,max=128"`
	TimerMinutes   int               `form:"timer_minutes" json:"timer_minutes" validate:"required,gt=0,lte=480"`
	Content        string            `form:"content" json:"content"`
	ContentType    string            `form:"content_type" json:"content_type" validate:"required,oneof=text pdf"`
	CorrectAnswers map[string]string `form:"-" json:"correct_answers"`
}

// AssignmentResponse is the serialized representation returned to teachers.
// The answer key is never included.
type AssignmentResponse struct {
	ID            uint      `json:"id"`
	StudentID     string    `json:"student_id"`
	Subject       string    `json:"subject"`
	TimerMinutes  int       `json:"timer_minutes"`
	ContentType   string    `json:"content_type"`
	FileURL       string    `json:"file_url"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"question_count"`
	AnswerCount   int       `json:"answer_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO. The question count is
// derived from the rendered content rather than stored.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	rendered := quiz.Parse(model.Content)

	return AssignmentResponse{
		ID:            model.ID,
		StudentID:     model.StudentID,
		Subject:       model.Subject,
		TimerMinutes:  model.TimerMinutes,
		ContentType:   model.ContentType,
		FileURL:       model.FileURL,
		Status:        model.Status,
		QuestionCount: rendered.QuestionCount(),
		AnswerCount:   len(model.AnswerKey()),
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// AssignmentHistoryResponse serializes one past assignment save.
type AssignmentHistoryResponse struct {
	ID           uint      `json:"id"`
	StudentID    string    `json:"student_id"`
	Subject      string    `json:"subject"`
	TimerMinutes int       `json:"timer_minutes"`
	ContentType  string    `json:"content_type"`
	FileURL      string    `json:"file_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAssignmentHistoryResponseSlice converts history models into DTOs.
func NewAssignmentHistoryResponseSlice(entries []models.AssignmentHistory) []AssignmentHistoryResponse {
	responses := make([]AssignmentHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, AssignmentHistoryResponse{
			ID:           entry.ID,
			StudentID:    entry.StudentID,
			Subject:      entry.Subject,
			TimerMinutes: entry.TimerMinutes,
			ContentType:  entry.ContentType,
			FileURL:      entry.FileURL,
			CreatedAt:    entry.CreatedAt,
		})
	}

	return responses
}
