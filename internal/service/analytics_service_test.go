package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/quizdeck/quizdeck-api/internal/models"
	"github.com/quizdeck/quizdeck-api/internal/quiz"
)

func TestAnalyticsStudentAggregates(t *testing.T) {
	submissions := &memSubmissionRepo{}
	assignments := newMemAssignmentRepo()
	seedSubmission(t, submissions, "S-101", map[string]string{"q1": "a"}, 9, 10)
	seedSubmission(t, submissions, "S-101", map[string]string{"q1": "b"}, 5, 10)

	auto := models.Submission{
		StudentID: "S-101", Subject: "History", CompletedAt: time.Now(),
		AutoSubmitted: true, Score: 7, TotalQuestions: 10, Graded: true,
	}
	auto.SetAnswers(map[string]string{})
	require.NoError(t, submissions.Create(context.Background(), &auto))

	svc := NewAnalyticsService(submissions, assignments, nil, time.Minute, testLogger())

	entry, err := svc.Student(context.Background(), "S-101")
	require.NoError(t, err)
	require.Equal(t, 3, entry.QuizzesTaken)
	require.Equal(t, 21, entry.TotalScore)
	require.Equal(t, 30, entry.TotalQuestions)
	require.Equal(t, 70, entry.AveragePercentage)
	require.Equal(t, 90, entry.BestPercentage)
	require.Equal(t, 1, entry.AutoSubmissions)
	require.ElementsMatch(t, []string{"Geography", "History"}, entry.Subjects)
	require.NotEmpty(t, entry.Verdict)
	require.False(t, entry.HasActiveQuiz)
}

func TestAnalyticsAverageRoundsAtVerdictBoundary(t *testing.T) {
	submissions := &memSubmissionRepo{}
	assignments := newMemAssignmentRepo()
	seedSubmission(t, submissions, "S-101", map[string]string{}, 9, 10)
	seedSubmission(t, submissions, "S-101", map[string]string{}, 89, 100)

	svc := NewAnalyticsService(submissions, assignments, nil, time.Minute, testLogger())

	// 90 and 89 average to 89.5, which rounds up across the top tier line.
	entry, err := svc.Student(context.Background(), "S-101")
	require.NoError(t, err)
	require.Equal(t, 90, entry.AveragePercentage)
	require.Equal(t, quiz.Verdict(90), entry.Verdict)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 90, overview.AveragePercentage)
}

func TestAnalyticsOverview(t *testing.T) {
	submissions := &memSubmissionRepo{}
	assignments := newMemAssignmentRepo()
	seedSubmission(t, submissions, "S-101", map[string]string{}, 10, 10)
	seedSubmission(t, submissions, "S-202", map[string]string{}, 5, 10)
	seedAssignment(t, assignments, "S-202")

	svc := NewAnalyticsService(submissions, assignments, nil, time.Minute, testLogger())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, overview.TotalSubmissions)
	require.Equal(t, 75, overview.AveragePercentage)
	require.Len(t, overview.Students, 2)
	require.Equal(t, "S-101", overview.Students[0].StudentID)
	require.False(t, overview.Students[0].HasActiveQuiz)
	require.True(t, overview.Students[1].HasActiveQuiz)
}

func TestAnalyticsCacheServesSecondRead(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	submissions := &memSubmissionRepo{}
	assignments := newMemAssignmentRepo()
	seedSubmission(t, submissions, "S-101", map[string]string{}, 8, 10)

	svc := NewAnalyticsService(submissions, assignments, redisClient, time.Minute, testLogger())

	first, err := svc.Student(context.Background(), "S-101")
	require.NoError(t, err)
	require.Equal(t, 1, first.QuizzesTaken)

	// New data lands, but the cached aggregate is still served.
	seedSubmission(t, submissions, "S-101", map[string]string{}, 2, 10)

	second, err := svc.Student(context.Background(), "S-101")
	require.NoError(t, err)
	require.Equal(t, 1, second.QuizzesTaken)

	server.FastForward(2 * time.Minute)

	third, err := svc.Student(context.Background(), "S-101")
	require.NoError(t, err)
	require.Equal(t, 2, third.QuizzesTaken)
}
