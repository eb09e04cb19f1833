package cmd

import (
	"context"
	"io"

	"github.com/ezerfernandes/mdcodemod/internal/batch"
	"github.com/ezerfernandes/mdcodemod/internal/transform"
	"github.com/gobwas/glob"
)

func rewriteRun(ctx context.Context, opts *options, out io.Writer) error {
	cfg := opts.cfg

	qualifies, err := langFilter(cfg.Langs)
	if err != nil {
		return err
	}

	pattern, err := glob.Compile(cfg.Pattern)
	if err != nil {
		return err
	}

	command := &transform.Command{
		Commands: cfg.Commands,
		Shell:    cfg.Shell,
		Timeout:  cfg.Timeout,
		TempDir:  cfg.TempDir,
		Keep:     cfg.Keep,
		Logger:   opts.log,
	}

	proc := &batch.Processor{
		FS:        batch.HostFS(),
		Dir:       cfg.Dir,
		Pattern:   pattern,
		Qualifies: qualifies,
		Transform: command.Transform,
		DryRun:    opts.dryRun,
		Status:    opts.status,
		Logger:    opts.log,
	}

	summary, err := proc.Run(ctx)
	if err != nil {
		return err
	}

	if !opts.quiet {
		printSummary(out, summary)
	}

	if len(opts.report) != 0 {
		if err := writeReport(opts.report, summary); err != nil {
			return err
		}
	}

	return summary.Err()
}
