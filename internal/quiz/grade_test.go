package quiz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Paris!! ":        "paris",
		"B":                 "b",
		"the   QUICK  fox.": "the quick fox",
		"":                  "",
		"!?.,;":             "",
	}

	for input, want := range cases {
		require.Equal(t, want, Normalize(input), "input: %q", input)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"  Paris!! ", "a  b\tc", "already normal", "4", "¿qué?"}
	for _, input := range inputs {
		once := Normalize(input)
		require.Equal(t, once, Normalize(once), "input: %q", input)
	}
}

func TestGradeCaseInsensitiveMatch(t *testing.T) {
	result := Grade(map[string]string{"q1": "b"}, map[string]string{"q1": "B"})

	require.True(t, result.Graded)
	require.Equal(t, 1, result.Score)
	require.Equal(t, 1, result.TotalQuestions)
	require.Equal(t, 100, result.Percentage)
	require.True(t, result.PerQuestion["q1"])
	require.Equal(t, VerdictOutstanding, Verdict(result.Percentage))
}

func TestGradePunctuationStripped(t *testing.T) {
	result := Grade(map[string]string{"q1": "Paris"}, map[string]string{"q1": "  paris!! "})
	require.Equal(t, 1, result.Score)
	require.True(t, result.PerQuestion["q1"])
}

func TestGradeUnansweredCountsAgainst(t *testing.T) {
	key := map[string]string{"q1": "4", "q2": "9"}
	result := Grade(key, map[string]string{"q1": "4"})

	require.True(t, result.Graded)
	require.Equal(t, 1, result.Score)
	require.Equal(t, 2, result.TotalQuestions)
	require.Equal(t, 50, result.Percentage)
	require.False(t, result.PerQuestion["q2"])
	require.Equal(t, VerdictNeedsImprovement, Verdict(result.Percentage))
}

func TestGradeEmptyKeyIsUngraded(t *testing.T) {
	result := Grade(map[string]string{}, map[string]string{"q1": "whatever"})

	require.False(t, result.Graded)
	require.Zero(t, result.Score)
	require.Zero(t, result.TotalQuestions)
	require.Zero(t, result.Percentage)
	require.Empty(t, result.PerQuestion)
}

func TestGradeIgnoresExtraSubmissionIDs(t *testing.T) {
	result := Grade(map[string]string{"q1": "yes"}, map[string]string{"q1": "yes", "q9": "stray"})

	require.Equal(t, 1, result.Score)
	require.Equal(t, 1, result.TotalQuestions)
	require.NotContains(t, result.PerQuestion, "q9")
}

func TestGradeOrderIndependent(t *testing.T) {
	key := map[string]string{"q1": "a", "q2": "b", "q3": "c", "q4": "d"}
	submitted := map[string]string{"q1": "a", "q3": "c", "q4": "x"}

	baseline := Grade(key, submitted)
	for i := 0; i < 20; i++ {
		permutedKey := make(map[string]string, len(key))
		for id, answer := range key {
			permutedKey[id] = answer
		}
		result := Grade(permutedKey, submitted)
		require.Equal(t, baseline.Score, result.Score)
		require.Equal(t, baseline.PerQuestion, result.PerQuestion)
	}
}

func TestVerdictTiers(t *testing.T) {
	cases := map[int]string{
		100: VerdictOutstanding,
		90:  VerdictOutstanding,
		89:  VerdictExcellent,
		80:  VerdictExcellent,
		79:  VerdictGood,
		70:  VerdictGood,
		69:  VerdictSatisfactory,
		60:  VerdictSatisfactory,
		59:  VerdictNeedsImprovement,
		50:  VerdictNeedsImprovement,
		49:  VerdictRequiresAttention,
		0:   VerdictRequiresAttention,
	}

	for percentage, want := range cases {
		require.Equal(t, want, Verdict(percentage), "percentage: %d", percentage)
	}
}

func TestQuestionNumber(t *testing.T) {
	require.Equal(t, "7", QuestionNumber("q7"))
	require.Equal(t, "12", QuestionNumber("q12"))
	require.Equal(t, "abc", QuestionNumber("abc"))
}
