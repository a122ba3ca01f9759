package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quizdeck/quizdeck-api/internal/config"
	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/handler"
	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/repository"
	"github.com/quizdeck/quizdeck-api/internal/router"
	"github.com/quizdeck/quizdeck-api/internal/service"
)

func setupResultsApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	submissionRepo := repository.NewSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resultsService := service.NewResultsService(submissionRepo, assignmentRepo, service.NewLogReportDelivery(logger), validate, logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		ResultsHandler: handler.NewResultsHandler(resultsService, logger),
		JWTMiddleware:  stubAuth("220193", "teacher"),
	})

	return app, db
}

func seedDBSubmission(t *testing.T, db *gorm.DB, studentID string, score, total int) models.Submission {
	t.Helper()

	submission := models.Submission{
		StudentID:      studentID,
		Subject:        "Geography",
		CompletedAt:    time.Now(),
		Score:          score,
		TotalQuestions: total,
		Graded:         total > 0,
	}
	submission.SetAnswers(map[string]string{"q1": "Paris", "q2": "5"})
	submission.SetComments(map[string]string{})
	submission.SetCorrectness(map[string]bool{"q1": true, "q2": false})
	require.NoError(t, db.Create(&submission).Error)

	return submission
}

func TestResultsHandlerListAndGet(t *testing.T) {
	app, db := setupResultsApp(t)
	stored := seedDBSubmission(t, db, "S-101", 1, 2)
	seedDBSubmission(t, db, "S-202", 2, 2)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/teacher/results?student_id=S-101", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	results := decodeResponse[[]dto.SubmissionResponse](t, resp)
	require.Len(t, results, 1)
	require.Equal(t, "S-101", results[0].StudentID)
	require.Equal(t, 50, results[0].Percentage)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/teacher/results/1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeResponse[dto.SubmissionResponse](t, resp)
	require.Equal(t, stored.ID, result.ID)
}

func TestResultsHandlerRegrade(t *testing.T) {
	app, db := setupResultsApp(t)
	stored := seedDBSubmission(t, db, "S-101", 0, 0)
	seedDBAssignment(t, db, "S-101")

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/teacher/results/1/regrade", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	result := decodeResponse[dto.SubmissionResponse](t, resp)
	require.Equal(t, stored.ID, result.ID)
	require.True(t, result.Graded)
	require.Equal(t, 1, result.Score)
	require.Equal(t, 2, result.TotalQuestions)
}

func TestResultsHandlerReport(t *testing.T) {
	app, db := setupResultsApp(t)
	seedDBSubmission(t, db, "S-101", 1, 2)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/v1/teacher/results/1/report", dto.ReportRequest{Email: "teacher@example.com"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/v1/teacher/results/1/report", dto.ReportRequest{Email: "nope"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResultsHandlerMissingSubmission(t *testing.T) {
	app, _ := setupResultsApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/teacher/results/42", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
