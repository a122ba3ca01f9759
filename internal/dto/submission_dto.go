package dto

import (
	"time"

	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/quiz"
)

// SubmitRequest is the payload a student sends when finishing a quiz. The
// answers and comments are merged over the drafts the attempt tracker holds,
// so the submitted copy wins when they disagree.
type SubmitRequest struct {
	Answers  map[string]string `json:"answers"`
	Comments map[string]string `json:"comments"`
}

// SubmissionResponse is returned to clients when viewing results. Percentage
// and verdict are derived on the way out so a regrade never leaves them
// stale.
type SubmissionResponse struct {
	ID               uint              `json:"id"`
	StudentID        string            `json:"student_id"`
	Subject          string            `json:"subject"`
	Answers          map[string]string `json:"answers"`
	Comments         map[string]string `json:"comments"`
	Correctness      map[string]bool   `json:"correctness"`
	TimeTakenMinutes int               `json:"time_taken_minutes"`
	CompletedAt      time.Time         `json:"completed_at"`
	AutoSubmitted    bool              `json:"auto_submitted"`
	Score            int               `json:"score"`
	TotalQuestions   int               `json:"total_questions"`
	Percentage       int               `json:"percentage"`
	Graded           bool              `json:"graded"`
	Verdict          string            `json:"verdict,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:               model.ID,
		StudentID:        model.StudentID,
		Subject:          model.Subject,
		Answers:          model.AnswerMap(),
		Comments:         model.CommentMap(),
		Correctness:      model.CorrectnessMap(),
		TimeTakenMinutes: model.TimeTakenMinutes,
		CompletedAt:      model.CompletedAt,
		AutoSubmitted:    model.AutoSubmitted,
		Score:            model.Score,
		TotalQuestions:   model.TotalQuestions,
		Graded:           model.Graded,
	}

	if model.Graded && model.TotalQuestions > 0 {
		response.Percentage = quiz.Percentage(model.Score, model.TotalQuestions)
		response.Verdict = quiz.Verdict(response.Percentage)
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// ReportRequest asks for a result report to be sent to an email address.
type ReportRequest struct {
	Email string `json:"email" validate:"required,email"`
}
