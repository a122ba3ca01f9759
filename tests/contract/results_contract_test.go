package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck-api/internal/dto"
	"github.com/quizdeck/quizdeck-api/internal/handler"
)

type stubResultsService struct {
	response dto.SubmissionResponse
}

func (s stubResultsService) List(context.Context, string) ([]dto.SubmissionResponse, error) {
	return []dto.SubmissionResponse{s.response}, nil
}

func (s stubResultsService) Get(context.Context, uint) (dto.SubmissionResponse, error) {
	return s.response, nil
}

func (s stubResultsService) Regrade(context.Context, uint) (dto.SubmissionResponse, error) {
	return s.response, nil
}

func (s stubResultsService) SendReport(context.Context, uint, dto.ReportRequest) error {
	return nil
}

func TestSubmissionResponseContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "submission.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	response := dto.SubmissionResponse{
		ID:               7,
		StudentID:        "S-101",
		Subject:          "Geography",
		Answers:          map[string]string{"q1": "Paris", "q2": "5"},
		Comments:         map[string]string{"q2": "guessed"},
		Correctness:      map[string]bool{"q1": true, "q2": false},
		TimeTakenMinutes: 12,
		CompletedAt:      time.Now().UTC(),
		AutoSubmitted:    false,
		Score:            1,
		TotalQuestions:   2,
		Percentage:       50,
		Graded:           true,
		Verdict:          "Needs improvement, keep practicing",
	}

	resultsHandler := handler.NewResultsHandler(stubResultsService{response: response}, zerolog.Nop())

	app := fiber.New()
	resultsHandler.Register(app.Group("/api/v1/teacher/results"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teacher/results/7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
