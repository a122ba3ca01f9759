package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/observability"
	"github.com/quizdeck/quizdeck-api/internal/quiz"
	"github.com/quizdeck/quizdeck-api/internal/repository"
)

// AnalyticsService produces aggregated performance metrics for the teacher
// dashboard.
type AnalyticsService interface {
	Overview(ctx context.Context) (dto.AnalyticsOverview, error)
	Student(ctx context.Context, studentID string) (dto.StudentAnalytics, error)
}

type analyticsService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAnalyticsService builds the analytics aggregator. A nil cache client
// disables caching.
func NewAnalyticsService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &analyticsService{
		submissions: submissions,
		assignments: assignments,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "analytics_service").Logger(),
		now:         time.Now,
	}
}

func (s *analyticsService) Overview(ctx context.Context) (dto.AnalyticsOverview, error) {
	const cacheKey = "analytics:overview"

	var cached dto.AnalyticsOverview
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{})
	if err != nil {
		return dto.AnalyticsOverview{}, err
	}

	byStudent := map[string][]models.Submission{}
	for _, submission := range submissions {
		byStudent[submission.StudentID] = append(byStudent[submission.StudentID], submission)
	}

	overview := dto.AnalyticsOverview{
		Students:         make([]dto.StudentAnalytics, 0, len(byStudent)),
		TotalSubmissions: len(submissions),
		GeneratedAt:      s.now(),
	}

	var percentageSum, gradedCount int
	for studentID, rows := range byStudent {
		entry := s.aggregate(ctx, studentID, rows)
		overview.Students = append(overview.Students, entry)
		for _, row := range rows {
			if row.Graded && row.TotalQuestions > 0 {
				percentageSum += quiz.Percentage(row.Score, row.TotalQuestions)
				gradedCount++
			}
		}
	}
	if gradedCount > 0 {
		overview.AveragePercentage = averagePercentage(percentageSum, gradedCount)
	}

	sort.Slice(overview.Students, func(i, j int) bool {
		return overview.Students[i].StudentID < overview.Students[j].StudentID
	})

	s.writeCache(ctx, cacheKey, overview)

	return overview, nil
}

func (s *analyticsService) Student(ctx context.Context, studentID string) (dto.StudentAnalytics, error) {
	cacheKey := fmt.Sprintf("analytics:student:%s", studentID)

	var cached dto.StudentAnalytics
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentAnalytics{}, err
	}

	entry := s.aggregate(ctx, studentID, submissions)
	s.writeCache(ctx, cacheKey, entry)

	return entry, nil
}

func (s *analyticsService) aggregate(ctx context.Context, studentID string, submissions []models.Submission) dto.StudentAnalytics {
	entry := dto.StudentAnalytics{
		StudentID:    studentID,
		QuizzesTaken: len(submissions),
		Subjects:     []string{},
	}

	seenSubjects := map[string]bool{}
	var percentageSum, gradedCount int

	for _, submission := range submissions {
		if !seenSubjects[submission.Subject] {
			seenSubjects[submission.Subject] = true
			entry.Subjects = append(entry.Subjects, submission.Subject)
		}
		if submission.AutoSubmitted {
			entry.AutoSubmissions++
		}
		if submission.CompletedAt.After(entry.LastCompletedAt) {
			entry.LastCompletedAt = submission.CompletedAt
		}
		if submission.Graded && submission.TotalQuestions > 0 {
			entry.TotalScore += submission.Score
			entry.TotalQuestions += submission.TotalQuestions
			pct := quiz.Percentage(submission.Score, submission.TotalQuestions)
			percentageSum += pct
			gradedCount++
			if pct > entry.BestPercentage {
				entry.BestPercentage = pct
			}
		}
	}

	sort.Strings(entry.Subjects)

	if gradedCount > 0 {
		entry.AveragePercentage = averagePercentage(percentageSum, gradedCount)
		entry.Verdict = quiz.Verdict(entry.AveragePercentage)
	}

	if assignment, err := s.assignments.GetByStudentID(ctx, studentID); err == nil {
		entry.HasActiveQuiz = !assignment.IsCompleted()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to check active quiz")
	}

	return entry
}

// averagePercentage rounds to the nearest whole percent so a student sitting
// just under a verdict boundary is not demoted by truncation.
func averagePercentage(sum, count int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

func (s *analyticsService) readCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read analytics cache")
		}
		observability.AnalyticsCache().WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal([]byte(cached), out); err != nil {
		observability.AnalyticsCache().WithLabelValues("miss").Inc()
		return false
	}

	observability.AnalyticsCache().WithLabelValues("hit").Inc()
	return true
}

func (s *analyticsService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store analytics cache")
	}
}
