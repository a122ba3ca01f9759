package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/quiz"
	"github.com/quizdeck/quizdeck-api/internal/repository"
)

var (
	// ErrAssignmentNotFound indicates the student has no active assignment.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrUploadTooLarge indicates the exam paper exceeded the size limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrNotPDF indicates the uploaded exam paper is not a PDF.
	ErrNotPDF = errors.New("uploaded file must be a PDF")
	// ErrContentEmpty indicates the quiz body sanitized down to nothing.
	ErrContentEmpty = errors.New("quiz content is empty")
	// ErrExamPaperRequired indicates a pdf quiz was saved without a file.
	ErrExamPaperRequired = errors.New("exam paper file is required")
	// ErrInvalidInput indicates a required field sanitized down to nothing.
	ErrInvalidInput = errors.New("student id and subject are required")
)

const maxExamPaperBytes = 10 << 20

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AssignmentService covers the teacher-side quiz lifecycle.
type AssignmentService interface {
	Save(ctx context.Context, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error)
	Get(ctx context.Context, studentID string) (dto.AssignmentResponse, error)
	History(ctx context.Context, studentID string) ([]dto.AssignmentHistoryResponse, error)
	Delete(ctx context.Context, studentID string) error
}

type assignmentService struct {
	repo          repository.AssignmentRepository
	validator     *validator.Validate
	uploader      FileUploader
	sanitizer     *bluemonday.Policy
	contentPolicy *bluemonday.Policy
	logger        zerolog.Logger
	now           func() time.Time
}

// quizContentPolicy keeps only the markup the quiz renderer understands.
// Anything else, script tags included, is stripped before the content is
// stored and later served to students.
func quizContentPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "br", "strong", "em", "u", "ol", "ul", "li", "h1", "h2", "h3")
	return policy
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:          repo,
		validator:     validate,
		uploader:      uploader,
		sanitizer:     bluemonday.StrictPolicy(),
		contentPolicy: quizContentPolicy(),
		logger:        logger.With().Str("component", "assignment_service").Logger(),
		now:           time.Now,
	}
}

func (s *assignmentService) Save(ctx context.Context, payload dto.AssignmentCreateRequest, file *multipart.FileHeader) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	studentID := strings.TrimSpace(s.sanitizer.Sanitize(payload.StudentID))
	subject := strings.TrimSpace(s.sanitizer.Sanitize(payload.Subject))
	if studentID == "" || subject == "" {
		return dto.AssignmentResponse{}, ErrInvalidInput
	}

	assignment := models.Assignment{
		StudentID:    studentID,
		Subject:      subject,
		TimerMinutes: payload.TimerMinutes,
		ContentType:  payload.ContentType,
		Status:       models.AssignmentStatusAssigned,
	}
	assignment.SetCorrectAnswers(normalizeKeyIDs(payload.CorrectAnswers))

	switch payload.ContentType {
	case models.ContentTypeText:
		content := strings.TrimSpace(s.contentPolicy.Sanitize(payload.Content))
		if content == "" {
			return dto.AssignmentResponse{}, ErrContentEmpty
		}
		assignment.Content = content

		rendered := quiz.Parse(content)
		if rendered.QuestionCount() != len(assignment.AnswerKey()) {
			s.logger.Warn().
				Str("student_id", studentID).
				Int("questions", rendered.QuestionCount()).
				Int("answers", len(assignment.AnswerKey())).
				Msg("answer key size does not match detected questions")
		}
	case models.ContentTypePDF:
		if file == nil {
			return dto.AssignmentResponse{}, ErrExamPaperRequired
		}
		url, err := s.uploadExamPaper(ctx, file)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		assignment.FileURL = url
	}

	if err := s.repo.Upsert(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	history := models.AssignmentHistory{
		StudentID:      assignment.StudentID,
		Subject:        assignment.Subject,
		TimerMinutes:   assignment.TimerMinutes,
		Content:        assignment.Content,
		ContentType:    assignment.ContentType,
		FileURL:        assignment.FileURL,
		CorrectAnswers: assignment.CorrectAnswers,
	}
	if err := s.repo.AppendHistory(ctx, &history); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to append quiz history")
	}

	s.logger.Info().
		Str("student_id", studentID).
		Str("subject", subject).
		Str("content_type", assignment.ContentType).
		Msg("quiz saved")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, studentID string) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByStudentID(ctx, strings.TrimSpace(studentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) History(ctx context.Context, studentID string) ([]dto.AssignmentHistoryResponse, error) {
	entries, err := s.repo.ListHistory(ctx, strings.TrimSpace(studentID))
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentHistoryResponseSlice(entries), nil
}

func (s *assignmentService) Delete(ctx context.Context, studentID string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(studentID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Str("student_id", studentID).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) uploadExamPaper(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > maxExamPaperBytes {
		return "", ErrUploadTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(src, maxExamPaperBytes+1)); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if buf.Len() > maxExamPaperBytes {
		return "", ErrUploadTooLarge
	}

	// Sniff the real content type; the client-supplied header is not trusted.
	if detected := mimetype.Detect(buf.Bytes()); !detected.Is("application/pdf") {
		return "", ErrNotPDF
	}

	url, err := s.uploader.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return url, nil
}

// normalizeKeyIDs trims whitespace from question ids and drops blank entries
// so a sloppy key still grades cleanly.
func normalizeKeyIDs(key map[string]string) map[string]string {
	out := make(map[string]string, len(key))
	for id, answer := range key {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		out[id] = answer
	}
	return out
}
