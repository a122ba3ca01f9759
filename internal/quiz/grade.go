package quiz

import (
	"math"
	"regexp"
	"strings"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	digitsPattern     = regexp.MustCompile(`\d+`)
)

// Normalize canonicalises an answer before comparison: lower-case, trim,
// strip anything that is not a word character or whitespace, collapse
// whitespace runs to a single space. Idempotent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Result is the outcome of grading one submission against an answer key.
type Result struct {
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	Percentage     int             `json:"percentage"`
	Graded         bool            `json:"graded"`
	PerQuestion    map[string]bool `json:"per_question"`
}

// Grade compares submitted answers against the answer key using exact
// equality after normalization. The total is the size of the key, so
// unanswered questions count as misses; ids present only in the submission
// are ignored. An empty key yields an ungraded zero result rather than an
// error. Iteration order of the key does not affect the outcome.
func Grade(key, submitted map[string]string) Result {
	if len(key) == 0 {
		return Result{PerQuestion: map[string]bool{}}
	}

	result := Result{
		TotalQuestions: len(key),
		Graded:         true,
		PerQuestion:    make(map[string]bool, len(key)),
	}

	for id, correct := range key {
		ok := Normalize(submitted[id]) == Normalize(correct)
		if ok {
			result.Score++
		}
		result.PerQuestion[id] = ok
	}

	result.Percentage = Percentage(result.Score, result.TotalQuestions)

	return result
}

// Percentage rounds score/total to the nearest whole percent. Zero when the
// total is zero.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Verdict tiers, inclusive lower bounds on the percentage score. Display
// text only; never part of the scoring itself.
const (
	VerdictOutstanding       = "Outstanding performance"
	VerdictExcellent         = "Excellent work"
	VerdictGood              = "Good performance"
	VerdictSatisfactory      = "Satisfactory, room for improvement"
	VerdictNeedsImprovement  = "Needs improvement, keep practicing"
	VerdictRequiresAttention = "Requires significant attention and practice"
)

// Verdict maps a percentage score to its qualitative tier.
func Verdict(percentage int) string {
	switch {
	case percentage >= 90:
		return VerdictOutstanding
	case percentage >= 80:
		return VerdictExcellent
	case percentage >= 70:
		return VerdictGood
	case percentage >= 60:
		return VerdictSatisfactory
	case percentage >= 50:
		return VerdictNeedsImprovement
	default:
		return VerdictRequiresAttention
	}
}

// QuestionNumber extracts the numeric part of a question id ("q7" -> "7").
// Falls back to the id itself when no digits are present.
func QuestionNumber(questionID string) string {
	if match := digitsPattern.FindString(questionID); match != "" {
		return match
	}
	return questionID
}
