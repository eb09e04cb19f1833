package rewrite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Predicate reports whether blocks tagged with lang should be transformed.
type Predicate func(lang string) bool

// Langs returns a Predicate accepting exactly the given tags.
func Langs(tags ...string) Predicate {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}

	return func(lang string) bool {
		_, ok := set[lang]

		return ok
	}
}

// Transform maps the trimmed code of a block to its replacement.
type Transform func(ctx context.Context, lang, code string) (string, error)

// Failure records a block whose transform returned an error. Copies holds
// the lines of identical blocks that were left unchanged along with it.
type Failure struct {
	Lang   string
	Line   int
	Copies []int
	Err    error
}

func (f *Failure) Error() string {
	if len(f.Copies) == 0 {
		return fmt.Sprintf("block %s at line %d: %v", f.Lang, f.Line, f.Err)
	}

	lines := make([]string, len(f.Copies))
	for i, line := range f.Copies {
		lines[i] = strconv.Itoa(line)
	}

	return fmt.Sprintf("block %s at line %d (copies at %s): %v", f.Lang, f.Line, strings.Join(lines, ", "), f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of [Rewrite].
type Result struct {
	Text       string
	Matched    int
	Qualifying int
	Replaced   int
	Unchanged  int
	Failures   []*Failure
}

// Changed reports whether any block was replaced.
func (r *Result) Changed() bool {
	return r.Replaced > 0
}

// Rewrite passes every qualifying block in text to transform and substitutes
// the output back. Each original block text is replaced wherever it occurs,
// so identical blocks receive the output computed for the first of them.
// A failing transform leaves its block untouched and is recorded in
// Result.Failures; the remaining blocks are still processed.
func Rewrite(ctx context.Context, text string, qualifies Predicate, transform Transform) *Result {
	res := &Result{Text: text}
	matches := Scan(text)
	res.Matched = len(matches)

	// seen maps each handled block to its failure, nil when it succeeded.
	seen := make(map[string]*Failure)

	for _, match := range matches {
		if !qualifies(match.Lang) {
			continue
		}

		res.Qualifying++

		if failure, dup := seen[match.Block]; dup {
			if failure != nil {
				failure.Copies = append(failure.Copies, match.Line)
			}

			continue
		}

		code := match.Trimmed()

		var out string

		err := ctx.Err()
		if err == nil {
			out, err = transform(ctx, match.Lang, code)
		}

		if err != nil {
			failure := &Failure{Lang: match.Lang, Line: match.Line, Err: err}
			res.Failures = append(res.Failures, failure)
			seen[match.Block] = failure

			continue
		}

		seen[match.Block] = nil

		out = strings.TrimSpace(out)
		if out == code {
			res.Unchanged++

			continue
		}

		res.Text = strings.ReplaceAll(res.Text, match.Block, block(match.Lang, out))
		res.Replaced++
	}

	return res
}
