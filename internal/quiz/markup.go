package quiz

import "regexp"

type lineRule struct {
	pattern *regexp.Regexp
	replace string
}

// Inline markup substitutions applied to every raw line, in order.
// Headings run before emphasis so that "# **title**" nests correctly,
// and bold runs before italic so "**" pairs are not consumed as "*".
var lineRules = []lineRule{
	{regexp.MustCompile(`^### (.*)$`), `<h3>$1</h3>`},
	{regexp.MustCompile(`^## (.*)$`), `<h2>$1</h2>`},
	{regexp.MustCompile(`^# (.*)$`), `<h1>$1</h1>`},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), `<strong>$1</strong>`},
	{regexp.MustCompile(`\*(.*?)\*`), `<em>$1</em>`},
	{regexp.MustCompile(`<u>(.*?)</u>`), `<u>$1</u>`},
	{regexp.MustCompile(`^\s*- (.*)$`), `<li>$1</li>`},
	{regexp.MustCompile(`^\s*\d+\. (.*)$`), `<li>$1</li>`},
	{regexp.MustCompile(`^---$`), `<hr>`},
}

// formatLine resolves the markdown-like inline markup of a single line.
func formatLine(raw string) string {
	formatted := raw
	for _, rule := range lineRules {
		formatted = rule.pattern.ReplaceAllString(formatted, rule.replace)
	}
	return formatted
}
