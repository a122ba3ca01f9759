package dto

import "time"

// StudentAnalytics aggregates one student's quiz history for the teacher
// dashboard. Cached, so every field must be JSON round-trippable.
type StudentAnalytics struct {
	StudentID         string    `json:"student_id"`
	QuizzesTaken      int       `json:"quizzes_taken"`
	TotalScore        int       `json:"total_score"`
	TotalQuestions    int       `json:"total_questions"`
	AveragePercentage int       `json:"average_percentage"`
	BestPercentage    int       `json:"best_percentage"`
	Verdict           string    `json:"verdict,omitempty"`
	Subjects          []string  `json:"subjects"`
	AutoSubmissions   int       `json:"auto_submissions"`
	LastCompletedAt   time.Time `json:"last_completed_at"`
	HasActiveQuiz     bool      `json:"has_active_quiz"`
}

// AnalyticsOverview is the teacher-wide roll-up across all students.
type AnalyticsOverview struct {
	Students          []StudentAnalytics `json:"students"`
	TotalSubmissions  int                `json:"total_submissions"`
	AveragePercentage int                `json:"average_percentage"`
	GeneratedAt       time.Time          `json:"generated_at"`
}
