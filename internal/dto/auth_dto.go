package dto

import "time"

// TeacherLoginRequest authenticates the teacher account.
type TeacherLoginRequest struct {
	TeacherID string `json:"teacher_id" validate:"required,max=64"`
	Password  string `json:"password" validate:"required"`
}

// StudentLoginRequest authenticates a student. The study schedule is only
// consulted on the first login and ignored afterwards.
type StudentLoginRequest struct {
	StudentID     string `json:"student_id" validate:"required,max=64"`
	StudySchedule string `json:"study_schedule" validate:"max=2000"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
