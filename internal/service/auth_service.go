package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the login attempt failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoAssignmentForStudent indicates the student has nothing assigned
	// and therefore cannot log in.
	ErrNoAssignmentForStudent = errors.New("no quiz assigned to this student")
)

// Session roles embedded in the JWT.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// TeacherCredential is the single teacher account, checked against a salted
// SHA-256 digest so the plain password never lives in config.
type TeacherCredential struct {
	TeacherID    string
	PasswordHash string
	Salt         string
}

// AuthService issues session tokens for the teacher and for students.
type AuthService interface {
	TeacherLogin(ctx context.Context, payload dto.TeacherLoginRequest) (dto.LoginResponse, error)
	StudentLogin(ctx context.Context, payload dto.StudentLoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	students    repository.StudentRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	credential  TeacherCredential
	secret      string
	sessionTTL  time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService builds the auth service. A non-positive ttl falls back to
// eight hours.
func NewAuthService(students repository.StudentRepository, assignments repository.AssignmentRepository, validate *validator.Validate, credential TeacherCredential, secret string, sessionTTL time.Duration, logger zerolog.Logger) AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}

	return &authService{
		students:    students,
		assignments: assignments,
		validator:   validate,
		credential:  credential,
		secret:      secret,
		sessionTTL:  sessionTTL,
		logger:      logger.With().Str("component", "auth_service").Logger(),
		now:         time.Now,
	}
}

func (s *authService) TeacherLogin(ctx context.Context, payload dto.TeacherLoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	digest := sha256.Sum256([]byte(s.credential.Salt + payload.Password))
	hashMatch := subtle.ConstantTimeCompare([]byte(hex.EncodeToString(digest[:])), []byte(strings.ToLower(s.credential.PasswordHash)))
	idMatch := subtle.ConstantTimeCompare([]byte(payload.TeacherID), []byte(s.credential.TeacherID))

	if hashMatch&idMatch != 1 {
		s.logger.Warn().Str("teacher_id", payload.TeacherID).Msg("teacher login rejected")
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	response, err := s.issueToken(s.credential.TeacherID, RoleTeacher)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Str("teacher_id", payload.TeacherID).Msg("teacher logged in")
	return response, nil
}

func (s *authService) StudentLogin(ctx context.Context, payload dto.StudentLoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	studentID := strings.TrimSpace(payload.StudentID)
	if studentID == "" {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if _, err := s.assignments.GetByStudentID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrNoAssignmentForStudent
		}
		return dto.LoginResponse{}, err
	}

	student, err := s.students.RecordLogin(ctx, studentID, strings.TrimSpace(payload.StudySchedule), s.now())
	if err != nil {
		return dto.LoginResponse{}, err
	}

	response, err := s.issueToken(studentID, RoleStudent)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().
		Str("student_id", studentID).
		Int("login_count", student.LoginCount).
		Msg("student logged in")

	return response, nil
}

func (s *authService) issueToken(subject, role string) (dto.LoginResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{Token: signed, Role: role, ExpiresAt: expiresAt}, nil
}
