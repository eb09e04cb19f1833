// Package transform runs external tools over code blocks. Each invocation
// writes the code to its own scratch file, runs the configured command on it,
// and reads the file back as the result.
package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/syntax"
)

const (
	fileMode = 0o600

	// AnyLang is the Commands key used when no command is set for a tag.
	AnyLang = "*"
)

var (
	// ErrNoCommand is returned when no command template is configured for a tag.
	ErrNoCommand = errors.New("no command configured")
	// ErrTimeout is returned when a command does not finish within Command.Timeout.
	ErrTimeout = errors.New("command timed out")
)

// ExitError is returned when a command exits with a non-zero status.
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command exited with %d", e.Code)

	if line := lastLine(e.Output); len(line) != 0 {
		msg += ": " + line
	}

	return msg
}

// Command transforms code by running a command template against a scratch
// file. Templates may contain the placeholders {} (scratch file), {lang},
// {dir} (scratch directory) and {index} (invocation counter). In shell mode
// each placeholder expands to one quoted word and must not be quoted again.
type Command struct {
	// Commands maps a language tag to its command template. The AnyLang key
	// applies to tags without their own entry.
	Commands map[string]string
	// Shell runs templates through the shell interpreter. When false the
	// template is split into arguments and executed directly.
	Shell bool
	// Timeout bounds each invocation; zero means no limit.
	Timeout time.Duration
	// TempDir is the parent of the scratch directories; empty means os.TempDir.
	TempDir string
	// Keep leaves scratch directories in place after each invocation.
	Keep bool
	Logger zerolog.Logger

	index int
}

// Template returns the command template used for lang.
func (c *Command) Template(lang string) (string, error) {
	if scr, ok := c.Commands[lang]; ok && len(scr) != 0 {
		return scr, nil
	}

	if scr, ok := c.Commands[AnyLang]; ok && len(scr) != 0 {
		return scr, nil
	}

	return "", fmt.Errorf("%w for %q", ErrNoCommand, lang)
}

// Transform runs the command for lang over code and returns the updated code.
// It has the signature of rewrite.Transform.
func (c *Command) Transform(ctx context.Context, lang, code string) (string, error) {
	scr, err := c.Template(lang)
	if err != nil {
		return "", err
	}

	index := c.index
	c.index++

	dir, err := os.MkdirTemp(c.TempDir, "mdcodemod-")
	if err != nil {
		return "", fmt.Errorf("scratch directory: %w", err)
	}

	if c.Keep {
		c.Logger.Debug().Str("dir", dir).Msg("keeping scratch directory")
	} else {
		defer os.RemoveAll(dir)
	}

	if dir, err = filepath.Abs(dir); err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("block_%d%s", index, langExtension(lang)))

	if err := os.WriteFile(path, []byte(code+"\n"), fileMode); err != nil {
		return "", fmt.Errorf("scratch file: %w", err)
	}

	vars := &placeholders{path: path, lang: lang, dir: dir, index: index}

	if c.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var output bytes.Buffer

	start := time.Now()

	var exitCode int

	if c.Shell {
		var expanded string

		if expanded, err = vars.expandShell(scr); err != nil {
			return "", err
		}

		exitCode, err = runShell(ctx, expanded, dir, &output)
	} else {
		exitCode, err = runArgs(ctx, scr, vars, dir, &output)
	}

	c.Logger.Debug().
		Str("lang", lang).
		Int("index", index).
		Int("exit", exitCode).
		Dur("elapsed", time.Since(start)).
		Str("output", output.String()).
		Msg("ran transform")

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s", ErrTimeout, c.Timeout)
	}

	if err != nil {
		return "", err
	}

	if exitCode != 0 {
		return "", &ExitError{Code: exitCode, Output: output.String()}
	}

	result, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(result), nil
}

type placeholders struct {
	path  string
	lang  string
	dir   string
	index int
}

func (p *placeholders) pairs() []string {
	return []string{"{}", p.path, "{lang}", p.lang, "{index}", fmt.Sprint(p.index), "{dir}", p.dir}
}

func (p *placeholders) expand(word string) string {
	return strings.NewReplacer(p.pairs()...).Replace(word)
}

// expandShell substitutes each placeholder as a single quoted shell word, so
// paths with spaces and tags with shell syntax reach the command verbatim.
func (p *placeholders) expandShell(scr string) (string, error) {
	pairs := p.pairs()

	for i := 1; i < len(pairs); i += 2 {
		quoted, err := syntax.Quote(pairs[i], syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("placeholder %s: %w", pairs[i-1], err)
		}

		pairs[i] = quoted
	}

	return strings.NewReplacer(pairs...).Replace(scr), nil
}

func langExtension(lang string) string {
	ext := strings.Map(func(r rune) rune {
		if r == '+' || r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, lang)

	if len(ext) > 0 {
		return "." + ext
	}

	return ".txt"
}

func lastLine(output string) string {
	output = strings.TrimSpace(output)
	if idx := strings.LastIndexByte(output, '\n'); idx >= 0 {
		return strings.TrimSpace(output[idx+1:])
	}

	return output
}
