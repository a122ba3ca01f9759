package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/models"
)

func testCredential(password string) TeacherCredential {
	digest := sha256.Sum256([]byte("pepper" + password))
	return TeacherCredential{
		TeacherID:    "220193",
		PasswordHash: hex.EncodeToString(digest[:]),
		Salt:         "pepper",
	}
}

func TestTeacherLogin(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(newMemStudentRepo(), newMemAssignmentRepo(), validate, testCredential("s3cret"), "jwt-secret", 8*time.Hour, testLogger())

	session, err := svc.TeacherLogin(context.Background(), dto.TeacherLoginRequest{TeacherID: "220193", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, RoleTeacher, session.Role)
	require.NotEmpty(t, session.Token)

	token, err := jwt.Parse(session.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("jwt-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, "220193", claims["sub"])
	require.Equal(t, RoleTeacher, claims["role"])
}

func TestTeacherLoginWrongPassword(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(newMemStudentRepo(), newMemAssignmentRepo(), validate, testCredential("s3cret"), "jwt-secret", 0, testLogger())

	_, err := svc.TeacherLogin(context.Background(), dto.TeacherLoginRequest{TeacherID: "220193", Password: "guess"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.TeacherLogin(context.Background(), dto.TeacherLoginRequest{TeacherID: "999999", Password: "s3cret"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStudentLoginRequiresAssignment(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAuthService(newMemStudentRepo(), newMemAssignmentRepo(), validate, testCredential("x"), "jwt-secret", 0, testLogger())

	_, err := svc.StudentLogin(context.Background(), dto.StudentLoginRequest{StudentID: "S-101"})
	require.ErrorIs(t, err, ErrNoAssignmentForStudent)
}

func TestStudentLoginCapturesScheduleOnce(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	students := newMemStudentRepo()
	assignments := newMemAssignmentRepo()
	require.NoError(t, assignments.Upsert(context.Background(), &models.Assignment{
		StudentID: "S-101", Subject: "Math", TimerMinutes: 30,
		ContentType: models.ContentTypeText, Status: models.AssignmentStatusAssigned,
	}))

	svc := NewAuthService(students, assignments, validate, testCredential("x"), "jwt-secret", 0, testLogger())

	session, err := svc.StudentLogin(context.Background(), dto.StudentLoginRequest{StudentID: "S-101", StudySchedule: "evenings"})
	require.NoError(t, err)
	require.Equal(t, RoleStudent, session.Role)

	_, err = svc.StudentLogin(context.Background(), dto.StudentLoginRequest{StudentID: "S-101", StudySchedule: "mornings"})
	require.NoError(t, err)

	student, err := students.GetByStudentID(context.Background(), "S-101")
	require.NoError(t, err)
	require.Equal(t, 2, student.LoginCount)
	require.Equal(t, "evenings", student.StudySchedule)
}
