// Package rewrite replaces the contents of fenced code blocks in a document
// with the output of a transform, leaving all other text untouched.
package rewrite

import (
	"regexp"
	"strings"
)

const fence = "```"

// reBlock matches a fence line with a tag glued to the backticks, a body, and
// a closing fence alone on its line. The body is non-greedy so adjacent
// blocks stay separate, and optional so an empty block closes at the very
// next line.
var reBlock = regexp.MustCompile("(?m)^" + fence + "([^\\s`]+)\\n(?:((?s:.*?))\\n)??" + fence + "$")

// Match is a fenced code block found by [Scan].
type Match struct {
	Lang  string
	Body  string
	Block string
	Start int
	Line  int
}

// Trimmed returns the body without leading and trailing whitespace.
func (m *Match) Trimmed() string {
	return strings.TrimSpace(m.Body)
}

// Scan returns every fenced code block in text, ordered by position.
func Scan(text string) []*Match {
	locs := reBlock.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]*Match, 0, len(locs))
	line, last := 1, 0

	for _, loc := range locs {
		line += strings.Count(text[last:loc[0]], "\n")
		last = loc[0]

		var body string
		if loc[4] >= 0 {
			body = text[loc[4]:loc[5]]
		}

		matches = append(matches, &Match{
			Lang:  text[loc[2]:loc[3]],
			Body:  body,
			Block: text[loc[0]:loc[1]],
			Start: loc[0],
			Line:  line,
		})
	}

	return matches
}

func block(lang, body string) string {
	return fence + lang + "\n" + body + "\n" + fence
}
