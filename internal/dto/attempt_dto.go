package dto

import (
	"time"

	"github.com/quizdeck/quizdeck-api/internal/quiz"
)

// AttemptStartResponse is what a student receives when opening their quiz.
// Blocks interleave rendered content with answer slots; the answer key is
// never present.
type AttemptStartResponse struct {
	StudentID     string       `json:"student_id"`
	Subject       string       `json:"subject"`
	ContentType   string       `json:"content_type"`
	FileURL       string       `json:"file_url,omitempty"`
	TimerMinutes  int          `json:"timer_minutes"`
	StartedAt     time.Time    `json:"started_at"`
	Deadline      time.Time    `json:"deadline"`
	Blocks        []quiz.Block `json:"blocks"`
	QuestionCount int          `json:"question_count"`
}

// AnswerSaveRequest records one draft answer or comment while the attempt is
// running.
type AnswerSaveRequest struct {
	QuestionID string `json:"question_id" validate:"required,max=16"`
	Value      string `json:"value" validate:"max=10000"`
}

// AttemptRemainingResponse reports the countdown state.
type AttemptRemainingResponse struct {
	RemainingSeconds int       `json:"remaining_seconds"`
	Deadline         time.Time `json:"deadline"`
	Submitted        bool      `json:"submitted"`
}
