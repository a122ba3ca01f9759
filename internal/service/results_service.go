package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/observability"
	"github.com/quizdeck/quizdeck-api/internal/quiz"
	"github.com/quizdeck/quizdeck-api/internal/repository"
)

// ErrSubmissionNotFound indicates the requested submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ReportDelivery sends a finished result report somewhere a teacher reads.
type ReportDelivery interface {
	Deliver(ctx context.Context, recipient, subject, body string) error
}

// ResultsService covers the teacher-side review of finished submissions.
type ResultsService interface {
	List(ctx context.Context, studentID string) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	Regrade(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	SendReport(ctx context.Context, id uint, payload dto.ReportRequest) error
}

type resultsService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	delivery    ReportDelivery
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewResultsService builds the results service.
func NewResultsService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, delivery ReportDelivery, validate *validator.Validate, logger zerolog.Logger) ResultsService {
	return &resultsService{
		submissions: submissions,
		assignments: assignments,
		delivery:    delivery,
		validator:   validate,
		logger:      logger.With().Str("component", "results_service").Logger(),
	}
}

func (s *resultsService) List(ctx context.Context, studentID string) ([]dto.SubmissionResponse, error) {
	filter := repository.SubmissionFilter{}
	if trimmed := strings.TrimSpace(studentID); trimmed != "" {
		filter.StudentID = &trimmed
	}

	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *resultsService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Regrade re-runs grading against the current answer key for the student's
// assignment. Useful after the teacher fixes a wrong key. If the assignment
// was overwritten since, the latest key wins.
func (s *resultsService) Regrade(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByStudentID(ctx, submission.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	result := quiz.Grade(assignment.AnswerKey(), submission.AnswerMap())
	submission.Score = result.Score
	submission.TotalQuestions = result.TotalQuestions
	submission.Graded = result.Graded
	submission.SetCorrectness(result.PerQuestion)

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", id).
		Int("score", result.Score).
		Int("total", result.TotalQuestions).
		Msg("submission regraded")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *resultsService) SendReport(ctx context.Context, id uint, payload dto.ReportRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	response := dto.NewSubmissionResponse(submission)
	subject := fmt.Sprintf("Quiz Results: %s (Student %s)", response.Subject, response.StudentID)

	if err := s.delivery.Deliver(ctx, payload.Email, subject, buildReportBody(response)); err != nil {
		observability.ReportsSent().WithLabelValues("error").Inc()
		return err
	}

	observability.ReportsSent().WithLabelValues("ok").Inc()
	s.logger.Info().
		Uint("submission_id", id).
		Str("recipient", maskEmailAddress(payload.Email)).
		Msg("result report sent")

	return nil
}

// buildReportBody renders the plain-text report a teacher receives.
func buildReportBody(submission dto.SubmissionResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Student ID: %s\n", submission.StudentID)
	fmt.Fprintf(&b, "Subject: %s\n", submission.Subject)
	fmt.Fprintf(&b, "Completed: %s\n", submission.CompletedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Time taken: %d minutes\n", submission.TimeTakenMinutes)
	if submission.AutoSubmitted {
		b.WriteString("Submitted automatically when time expired.\n")
	}
	b.WriteString("\n")

	if submission.Graded {
		fmt.Fprintf(&b, "Score: %d/%d (%d%%)\n", submission.Score, submission.TotalQuestions, submission.Percentage)
		fmt.Fprintf(&b, "Verdict: %s\n\n", submission.Verdict)
	} else {
		b.WriteString("This submission was not auto-graded (no answer key).\n\n")
	}

	ids := make([]string, 0, len(submission.Answers))
	for id := range submission.Answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(quiz.QuestionNumber(ids[i]))
		b, errB := strconv.Atoi(quiz.QuestionNumber(ids[j]))
		if errA == nil && errB == nil && a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		mark := ""
		if correct, ok := submission.Correctness[id]; ok {
			if correct {
				mark = " [correct]"
			} else {
				mark = " [incorrect]"
			}
		}
		fmt.Fprintf(&b, "Question %s: %s%s\n", quiz.QuestionNumber(id), submission.Answers[id], mark)
		if comment := submission.Comments[id]; comment != "" {
			fmt.Fprintf(&b, "  Comment: %s\n", comment)
		}
	}

	return b.String()
}

// LogReportDelivery is a delivery provider that logs reports instead of
// sending them, for environments without an outbound mail relay.
type LogReportDelivery struct {
	logger zerolog.Logger
}

// NewLogReportDelivery constructs a logging provider.
func NewLogReportDelivery(logger zerolog.Logger) *LogReportDelivery {
	return &LogReportDelivery{logger: logger.With().Str("component", "report_delivery").Logger()}
}

// Deliver logs the report and returns nil to indicate success.
func (l *LogReportDelivery) Deliver(ctx context.Context, recipient, subject, body string) error {
	l.logger.Info().
		Str("recipient", maskEmailAddress(recipient)).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("result report delivered")
	return nil
}
