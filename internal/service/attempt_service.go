package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/observability"
	"github.com/quizdeck/quizdeck-api/internal/quiz"
	"github.com/quizdeck/quizdeck-api/internal/repository"
)

var (
	// ErrAttemptNotStarted indicates the student has not opened the quiz.
	ErrAttemptNotStarted = errors.New("attempt not started")
	// ErrAlreadySubmitted indicates the quiz was already turned in.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
)

// AttemptService tracks running quiz attempts. State lives in memory for the
// duration of the attempt; only the final submission is persisted.
type AttemptService interface {
	Start(ctx context.Context, studentID string) (dto.AttemptStartResponse, error)
	SaveAnswer(ctx context.Context, studentID string, payload dto.AnswerSaveRequest) error
	SaveComment(ctx context.Context, studentID string, payload dto.AnswerSaveRequest) error
	Remaining(ctx context.Context, studentID string) (dto.AttemptRemainingResponse, error)
	Submit(ctx context.Context, studentID string, payload dto.SubmitRequest) (dto.SubmissionResponse, error)
}

type attempt struct {
	subject   string
	startedAt time.Time
	deadline  time.Time
	answers   map[string]string
	comments  map[string]string
	timer     *time.Timer
	submitted bool
}

type attemptService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	notifier    Notifier
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time

	// schedule is time.AfterFunc, injectable so tests can fire the
	// auto-submit deterministically.
	schedule func(d time.Duration, f func()) *time.Timer

	mu       sync.Mutex
	attempts map[string]*attempt
}

// NewAttemptService builds the attempt tracker.
func NewAttemptService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, notifier Notifier, logger zerolog.Logger) AttemptService {
	return &attemptService{
		assignments: assignments,
		submissions: submissions,
		notifier:    notifier,
		logger:      logger.With().Str("component", "attempt_service").Logger(),
		tracer:      otel.Tracer("github.com/quizdeck/quizdeck-api/internal/service/attempt"),
		now:         time.Now,
		schedule:    time.AfterFunc,
		attempts:    make(map[string]*attempt),
	}
}

// Start opens the student's quiz, renders the content into blocks and arms
// the countdown. Reopening an unfinished attempt keeps the original deadline
// and the answers saved so far.
func (s *attemptService) Start(ctx context.Context, studentID string) (dto.AttemptStartResponse, error) {
	assignment, err := s.assignments.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptStartResponse{}, ErrAssignmentNotFound
		}
		return dto.AttemptStartResponse{}, err
	}

	if assignment.IsCompleted() {
		return dto.AttemptStartResponse{}, ErrAlreadySubmitted
	}

	rendered := quiz.Parse(assignment.Content)

	s.mu.Lock()
	current, running := s.attempts[studentID]
	if !running {
		now := s.now()
		current = &attempt{
			subject:   assignment.Subject,
			startedAt: now,
			deadline:  now.Add(time.Duration(assignment.TimerMinutes) * time.Minute),
			answers:   make(map[string]string),
			comments:  make(map[string]string),
		}
		current.timer = s.schedule(current.deadline.Sub(now), func() {
			s.autoSubmit(studentID)
		})
		s.attempts[studentID] = current

		s.logger.Info().
			Str("student_id", studentID).
			Int("timer_minutes", assignment.TimerMinutes).
			Time("deadline", current.deadline).
			Msg("attempt started")
	}
	response := dto.AttemptStartResponse{
		StudentID:     studentID,
		Subject:       assignment.Subject,
		ContentType:   assignment.ContentType,
		FileURL:       assignment.FileURL,
		TimerMinutes:  assignment.TimerMinutes,
		StartedAt:     current.startedAt,
		Deadline:      current.deadline,
		Blocks:        rendered.Blocks,
		QuestionCount: rendered.QuestionCount(),
	}
	s.mu.Unlock()

	return response, nil
}

func (s *attemptService) SaveAnswer(ctx context.Context, studentID string, payload dto.AnswerSaveRequest) error {
	return s.saveDraft(studentID, payload, false)
}

func (s *attemptService) SaveComment(ctx context.Context, studentID string, payload dto.AnswerSaveRequest) error {
	return s.saveDraft(studentID, payload, true)
}

func (s *attemptService) saveDraft(studentID string, payload dto.AnswerSaveRequest, comment bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.attempts[studentID]
	if !ok {
		return ErrAttemptNotStarted
	}
	if current.submitted {
		return ErrAlreadySubmitted
	}

	if comment {
		current.comments[payload.QuestionID] = payload.Value
	} else {
		current.answers[payload.QuestionID] = payload.Value
	}

	return nil
}

func (s *attemptService) Remaining(ctx context.Context, studentID string) (dto.AttemptRemainingResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.attempts[studentID]
	if !ok {
		return dto.AttemptRemainingResponse{}, ErrAttemptNotStarted
	}

	remaining := int(current.deadline.Sub(s.now()).Seconds())
	if remaining < 0 || current.submitted {
		remaining = 0
	}

	return dto.AttemptRemainingResponse{
		RemainingSeconds: remaining,
		Deadline:         current.deadline,
		Submitted:        current.submitted,
	}, nil
}

// Submit finalizes the attempt. Answers sent in the payload are merged over
// the drafts the tracker holds, then the submission is graded and persisted.
func (s *attemptService) Submit(ctx context.Context, studentID string, payload dto.SubmitRequest) (dto.SubmissionResponse, error) {
	s.mu.Lock()
	current, ok := s.attempts[studentID]
	if !ok {
		s.mu.Unlock()
		return dto.SubmissionResponse{}, ErrAttemptNotStarted
	}
	if current.submitted {
		s.mu.Unlock()
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}
	current.submitted = true
	if current.timer != nil {
		current.timer.Stop()
	}
	for id, value := range payload.Answers {
		current.answers[id] = value
	}
	for id, value := range payload.Comments {
		current.comments[id] = value
	}
	snapshot := *current
	answers := copyStringMap(current.answers)
	comments := copyStringMap(current.comments)
	s.mu.Unlock()

	response, err := s.finalize(ctx, studentID, snapshot, answers, comments, false)
	if err != nil {
		// Allow a retry; the persist failed, not the attempt.
		s.mu.Lock()
		if again, ok := s.attempts[studentID]; ok {
			again.submitted = false
		}
		s.mu.Unlock()
		return dto.SubmissionResponse{}, err
	}

	s.mu.Lock()
	delete(s.attempts, studentID)
	s.mu.Unlock()

	return response, nil
}

// autoSubmit fires when the countdown reaches zero. It goes through the same
// grading path as a manual submit, with whatever answers were saved.
func (s *attemptService) autoSubmit(studentID string) {
	s.mu.Lock()
	current, ok := s.attempts[studentID]
	if !ok || current.submitted {
		s.mu.Unlock()
		return
	}
	current.submitted = true
	snapshot := *current
	answers := copyStringMap(current.answers)
	comments := copyStringMap(current.comments)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.finalize(ctx, studentID, snapshot, answers, comments, true); err != nil {
		s.logger.Error().Err(err).Str("student_id", studentID).Msg("auto submit failed")
		// Reopen the attempt so a manual submit can retry the persist,
		// same as the manual path does.
		s.mu.Lock()
		if again, ok := s.attempts[studentID]; ok {
			again.submitted = false
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	delete(s.attempts, studentID)
	s.mu.Unlock()
}

func (s *attemptService) finalize(ctx context.Context, studentID string, snapshot attempt, answers, comments map[string]string, auto bool) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attempt.submit", trace.WithAttributes(
		attribute.String("quiz.student_id", studentID),
		attribute.Bool("quiz.auto_submitted", auto),
	))
	defer span.End()

	assignment, err := s.assignments.GetByStudentID(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	gradeStart := time.Now()
	result := quiz.Grade(assignment.AnswerKey(), answers)
	observability.GradingLatency().Observe(time.Since(gradeStart).Seconds())

	completedAt := s.now()
	elapsed := completedAt.Sub(snapshot.startedAt)
	if auto {
		elapsed = snapshot.deadline.Sub(snapshot.startedAt)
	}

	submission := models.Submission{
		StudentID:        studentID,
		Subject:          assignment.Subject,
		TimeTakenMinutes: int(elapsed.Round(time.Minute) / time.Minute),
		CompletedAt:      completedAt,
		AutoSubmitted:    auto,
		Score:            result.Score,
		TotalQuestions:   result.TotalQuestions,
		Graded:           result.Graded,
	}
	submission.SetAnswers(answers)
	submission.SetComments(comments)
	submission.SetCorrectness(result.PerQuestion)

	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if err := s.assignments.MarkCompleted(ctx, studentID); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to mark assignment completed")
	}

	mode := "manual"
	if auto {
		mode = "auto"
	}
	observability.Submissions().WithLabelValues(mode).Inc()

	response := dto.NewSubmissionResponse(submission)

	if err := s.notifier.SubmissionGraded(ctx, response); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to publish graded event")
	}

	s.logger.Info().
		Str("student_id", studentID).
		Int("score", result.Score).
		Int("total", result.TotalQuestions).
		Bool("auto", auto).
		Msg("submission recorded")

	return response, nil
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
