package quiz

import "regexp"

var (
	numberedStartPattern = regexp.MustCompile(`(?i)^(\d+\.|\d+\)|question\s+\d+)`)
	promptPattern        = regexp.MustCompile(`^[A-Z].*\?$`)
	optionPattern        = regexp.MustCompile(`^[a-zA-Z]\)\s`)
	parenOptionPattern   = regexp.MustCompile(`^\([a-zA-Z]\)\s`)
	dividerPattern       = regexp.MustCompile(`^---$`)
)

// lineKind captures the heuristic classification of a single trimmed line.
// A line can satisfy more than one predicate (e.g. "A) Correct?" reads as
// both a prompt and an option); the scan loop gives question starts
// precedence when opening a block and consults the option flag only for
// the lookahead close rule.
type lineKind struct {
	questionStart bool
	option        bool
	divider       bool
}

// classifyLine applies the line heuristics to an already-trimmed line.
// The patterns are deliberately loose: any numbered prefix or a
// capitalised line ending in "?" opens a question. Keeping the policy
// here lets it be swapped without touching the scan loop.
func classifyLine(trimmed string) lineKind {
	return lineKind{
		questionStart: numberedStartPattern.MatchString(trimmed) || promptPattern.MatchString(trimmed),
		option:        optionPattern.MatchString(trimmed) || parenOptionPattern.MatchString(trimmed),
		divider:       dividerPattern.MatchString(trimmed),
	}
}
