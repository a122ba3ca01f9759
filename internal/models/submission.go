package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission is one completed quiz attempt, written once as a single logical
// write when the student submits (or the timer fires). The grading fields are
// filled synchronously at submission and only touched again on a regrade.
type Submission struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	StudentID        string         `gorm:"size:64;index;not null" json:"student_id"`
	Subject          string         `gorm:"size:128;not null" json:"subject"`
	Answers          datatypes.JSON `gorm:"type:json" json:"-"`
	Comments         datatypes.JSON `gorm:"type:json" json:"-"`
	TimeTakenMinutes int            `json:"time_taken_minutes"`
	CompletedAt      time.Time      `gorm:"not null" json:"completed_at"`
	AutoSubmitted    bool           `gorm:"not null" json:"auto_submitted"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"total_questions"`
	Graded           bool           `gorm:"not null" json:"graded"`
	Correctness      datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// SetAnswers serializes the submitted answers.
func (s *Submission) SetAnswers(answers map[string]string) {
	s.Answers = marshalStringMap(answers)
}

// AnswerMap deserializes the submitted answers.
func (s Submission) AnswerMap() map[string]string {
	return unmarshalStringMap(s.Answers)
}

// SetComments serializes the optional per-question comments.
func (s *Submission) SetComments(comments map[string]string) {
	s.Comments = marshalStringMap(comments)
}

// CommentMap deserializes the per-question comments.
func (s Submission) CommentMap() map[string]string {
	return unmarshalStringMap(s.Comments)
}

// SetCorrectness serializes the per-question verdicts.
func (s *Submission) SetCorrectness(verdicts map[string]bool) {
	if len(verdicts) == 0 {
		s.Correctness = datatypes.JSON([]byte("{}"))
		return
	}
	data, err := json.Marshal(verdicts)
	if err != nil {
		s.Correctness = datatypes.JSON([]byte("{}"))
		return
	}
	s.Correctness = datatypes.JSON(data)
}

// CorrectnessMap deserializes the per-question verdicts.
func (s Submission) CorrectnessMap() map[string]bool {
	if len(s.Correctness) == 0 {
		return map[string]bool{}
	}
	out := map[string]bool{}
	if err := json.Unmarshal(s.Correctness, &out); err != nil {
		return map[string]bool{}
	}
	return out
}
