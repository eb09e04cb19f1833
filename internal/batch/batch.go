// Package batch runs the block rewriter over every document in a directory
// and writes changed documents back in place.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/ezerfernandes/mdcodemod/internal/rewrite"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

// DefaultPattern selects the documents processed when Processor.Pattern is nil.
const DefaultPattern = "*.md"

// ErrDirNotFound is returned by [Processor.Run] when the directory is missing.
var ErrDirNotFound = errors.New("directory not found")

// State describes what happened to a single document.
type State string

const (
	StateUpdated     State = "updated"
	StateWouldUpdate State = "would update"
	StateUnchanged   State = "unchanged"
	StateError       State = "error"
)

// FileResult is the outcome for one document.
type FileResult struct {
	Name     string   `yaml:"name"`
	State    State    `yaml:"state"`
	Blocks   int      `yaml:"blocks"`
	Replaced int      `yaml:"replaced"`
	Failed   int      `yaml:"failed"`
	Error    string   `yaml:"error,omitempty"`
	Failures []string `yaml:"failures,omitempty"`
}

// Summary collects the results of a run.
type Summary struct {
	Dir   string        `yaml:"dir"`
	Files []*FileResult `yaml:"files"`
}

// Counts returns the number of documents that failed and the number of
// blocks whose transform failed.
func (s *Summary) Counts() (int, int) {
	var files, blocks int

	for _, file := range s.Files {
		if file.State == StateError {
			files++
		}

		blocks += file.Failed
	}

	return files, blocks
}

// Err returns an error describing the failures of the run, or nil.
func (s *Summary) Err() error {
	files, blocks := s.Counts()
	if files == 0 && blocks == 0 {
		return nil
	}

	return fmt.Errorf("%d file(s) and %d block(s) failed", files, blocks)
}

// Processor rewrites the fenced code blocks of every matching document in Dir.
type Processor struct {
	FS FS
	// Dir is the directory within FS; empty means the root.
	Dir string
	// Pattern selects document names; nil means DefaultPattern.
	Pattern   glob.Glob
	Qualifies rewrite.Predicate
	Transform rewrite.Transform
	// DryRun reports what would change without writing.
	DryRun bool
	Status func(format string, args ...interface{})
	Logger zerolog.Logger
}

// Run processes the documents one at a time. Errors reading or writing a
// document, and failing blocks, are recorded in the summary and do not stop
// the run. Only a missing directory or a canceled context abort it.
func (p *Processor) Run(ctx context.Context) (*Summary, error) {
	dir := filepath.ToSlash(p.Dir)
	if len(dir) == 0 {
		dir = "."
	}

	summary := &Summary{Dir: dir}

	entries, err := p.FS.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return summary, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}

		return summary, err
	}

	pattern := p.Pattern
	if pattern == nil {
		pattern = glob.MustCompile(DefaultPattern)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !pattern.Match(entry.Name()) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Files = append(summary.Files, p.file(ctx, path.Join(dir, entry.Name()), entry))
	}

	return summary, nil
}

func (p *Processor) file(ctx context.Context, name string, entry fs.DirEntry) *FileResult {
	result := &FileResult{Name: name}

	src, err := p.FS.ReadFile(name)
	if err != nil {
		return p.fail(result, fmt.Errorf("read: %w", err))
	}

	res := rewrite.Rewrite(ctx, string(src), p.Qualifies, p.Transform)

	result.Blocks = res.Qualifying
	result.Replaced = res.Replaced

	for _, failure := range res.Failures {
		result.Failed += 1 + len(failure.Copies)
		result.Failures = append(result.Failures, failure.Error())
		p.status("warning: %s:%d: %s block: %v\n", name, failure.Line, failure.Lang, failure.Err)

		for _, line := range failure.Copies {
			p.status("warning: %s:%d: %s block: same as line %d, left unchanged\n", name, line, failure.Lang, failure.Line)
		}
	}

	p.Logger.Debug().
		Str("file", name).
		Int("matched", res.Matched).
		Int("qualifying", res.Qualifying).
		Int("replaced", res.Replaced).
		Int("unchanged", res.Unchanged).
		Int("failed", result.Failed).
		Msg("rewrote document")

	if !res.Changed() {
		result.State = StateUnchanged
		p.status("unchanged %s\n", name)

		return result
	}

	if p.DryRun {
		result.State = StateWouldUpdate
		p.status("would update %s (%d of %d blocks)\n", name, res.Replaced, res.Qualifying)

		return result
	}

	perm := fs.FileMode(fileMode)
	if info, ierr := entry.Info(); ierr == nil {
		perm = info.Mode().Perm()
	}

	if err := p.FS.WriteFile(name, []byte(res.Text), perm); err != nil {
		return p.fail(result, fmt.Errorf("write: %w", err))
	}

	result.State = StateUpdated
	p.status("updated %s (%d of %d blocks)\n", name, res.Replaced, res.Qualifying)

	return result
}

func (p *Processor) fail(result *FileResult, err error) *FileResult {
	result.State = StateError
	result.Error = err.Error()
	p.status("error %s: %v\n", result.Name, err)

	return result
}

func (p *Processor) status(format string, args ...interface{}) {
	if p.Status != nil {
		p.Status(format, args...)
	}
}

const fileMode = 0o644
