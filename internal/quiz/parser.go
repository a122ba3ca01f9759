// Package quiz holds the content parser and the grading engine. Both are
// pure, synchronous and total: every input, however degenerate, produces a
// well-defined result and never an error.
package quiz

import (
	"fmt"
	"strings"
)

// BlockKind discriminates the two block flavours a parsed quiz consists of.
type BlockKind string

const (
	// BlockContent is rendered display text with inline markup resolved.
	BlockContent BlockKind = "content"
	// BlockQuestionSlot marks where the answer and comment inputs for one
	// question belong.
	BlockQuestionSlot BlockKind = "question_slot"
)

// Block is one element of the ordered rendering of quiz content.
type Block struct {
	Kind       BlockKind `json:"kind"`
	HTML       string    `json:"html,omitempty"`
	QuestionID string    `json:"question_id,omitempty"`
}

// Rendered is the full parse result: content blocks interleaved with exactly
// one question slot per detected question, in detection order.
type Rendered struct {
	Blocks      []Block  `json:"blocks"`
	QuestionIDs []string `json:"question_ids"`
}

// QuestionCount reports how many questions the parser detected.
func (r Rendered) QuestionCount() int {
	return len(r.QuestionIDs)
}

// Parse scans quiz content line by line and produces the ordered block
// sequence. Question boundaries are found with a two-line lookahead: a
// non-option line closes the open question when the following line is
// blank, starts a new question, or the input ends. Consecutive option
// lines always continue the current question. Parsing the same content
// twice yields identical question ids.
func Parse(content string) Rendered {
	if content == "" {
		return Rendered{}
	}

	lines := strings.Split(content, "\n")

	var (
		rendered   Rendered
		pending    []string
		inQuestion bool
	)

	flushContent := func() {
		if len(pending) == 0 {
			return
		}
		rendered.Blocks = append(rendered.Blocks, Block{
			Kind: BlockContent,
			HTML: strings.Join(pending, "<br>"),
		})
		pending = nil
	}

	emitSlot := func() {
		flushContent()
		id := fmt.Sprintf("q%d", len(rendered.QuestionIDs)+1)
		rendered.QuestionIDs = append(rendered.QuestionIDs, id)
		rendered.Blocks = append(rendered.Blocks, Block{
			Kind:       BlockQuestionSlot,
			QuestionID: id,
		})
	}

	for i, raw := range lines {
		kind := classifyLine(strings.TrimSpace(raw))
		formatted := formatLine(raw)

		switch {
		case kind.questionStart:
			// A new question while one is open closes the prior one.
			if inQuestion {
				emitSlot()
			}
			inQuestion = true
			pending = append(pending, formatted)

		case inQuestion:
			pending = append(pending, formatted)

			next := ""
			if i < len(lines)-1 {
				next = strings.TrimSpace(lines[i+1])
			}
			nextKind := classifyLine(next)

			lastLine := i == len(lines)-1
			if !kind.option && !nextKind.option && (lastLine || nextKind.questionStart || next == "") {
				emitSlot()
				inQuestion = false
			}

		default:
			pending = append(pending, formatted)
		}
	}

	// A question that never closed is force-closed at the final line, so
	// the student always gets an answer slot for it.
	if inQuestion {
		emitSlot()
	}
	flushContent()

	return rendered
}
