package models

import "time"

// Student holds the profile captured at login time. Rows are created lazily
// on the first login; the study schedule is only recorded then.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StudentID     string    `gorm:"size:64;uniqueIndex;not null" json:"student_id"`
	StudySchedule string    `gorm:"type:text" json:"study_schedule"`
	LoginCount    int       `gorm:"not null" json:"login_count"`
	LastLoginAt   time.Time `json:"last_login_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
