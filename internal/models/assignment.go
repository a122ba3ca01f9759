package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Assignment content types.
const (
	ContentTypeText = "text"
	ContentTypePDF  = "pdf"
)

// Assignment statuses.
const (
	// AssignmentStatusAssigned means the student has not completed the quiz yet.
	AssignmentStatusAssigned = "assigned"
	// AssignmentStatusCompleted means a submission has been recorded.
	AssignmentStatusCompleted = "completed"
)

// Assignment is the active quiz assigned to a single student. There is at
// most one per student id; saving again overwrites the previous one.
type Assignment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	StudentID      string         `gorm:"size:64;uniqueIndex;not null" json:"student_id"`
	Subject        string         `gorm:"size:128;not null" json:"subject"`
	TimerMinutes   int            `gorm:"not null" json:"timer_minutes"`
	Content        string         `gorm:"type:text" json:"content"`
	ContentType    string         `gorm:"size:16;not null" json:"content_type"`
	FileURL        string         `gorm:"size:512" json:"file_url"`
	CorrectAnswers datatypes.JSON `gorm:"type:json" json:"-"`
	Status         string         `gorm:"size:32;not null" json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SetCorrectAnswers serializes the answer key into the JSON storage column.
func (a *Assignment) SetCorrectAnswers(key map[string]string) {
	a.CorrectAnswers = marshalStringMap(key)
}

// AnswerKey deserializes the stored answer key. Returns an empty map when
// none was set, so callers can grade without nil checks.
func (a Assignment) AnswerKey() map[string]string {
	return unmarshalStringMap(a.CorrectAnswers)
}

// IsCompleted reports whether the student already submitted this quiz.
func (a Assignment) IsCompleted() bool {
	return a.Status == AssignmentStatusCompleted
}

// AssignmentHistory is an append-only record of every assignment save, kept
// for the teacher's history view even after the active row is overwritten.
type AssignmentHistory struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	StudentID      string         `gorm:"size:64;index;not null" json:"student_id"`
	Subject        string         `gorm:"size:128;not null" json:"subject"`
	TimerMinutes   int            `gorm:"not null" json:"timer_minutes"`
	Content        string         `gorm:"type:text" json:"content"`
	ContentType    string         `gorm:"size:16;not null" json:"content_type"`
	FileURL        string         `gorm:"size:512" json:"file_url"`
	CorrectAnswers datatypes.JSON `gorm:"type:json" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SetCorrectAnswers serializes the answer key into the JSON storage column.
func (h *AssignmentHistory) SetCorrectAnswers(key map[string]string) {
	h.CorrectAnswers = marshalStringMap(key)
}

// AnswerKey deserializes the stored answer key.
func (h AssignmentHistory) AnswerKey() map[string]string {
	return unmarshalStringMap(h.CorrectAnswers)
}

func marshalStringMap(m map[string]string) datatypes.JSON {
	if len(m) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	data, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(data)
}

func unmarshalStringMap(raw datatypes.JSON) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]string{}
	}
	return out
}
