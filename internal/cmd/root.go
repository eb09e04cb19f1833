// Package cmd implements the mdcodemod command line.
package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ezerfernandes/mdcodemod/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

//go:embed help/root.md
var rootHelp string

type statusFunc func(format string, args ...interface{})

type options struct {
	configFile string
	dryRun     bool
	quiet      bool
	report     string

	cfg    *config.Config
	status statusFunc
	log    zerolog.Logger
}

func (o *options) createStatus(w io.Writer) {
	if o.quiet {
		o.status = func(string, ...interface{}) {}

		return
	}

	o.status = func(format string, args ...interface{}) {
		fmt.Fprintf(w, format, args...)
	}
}

// Execute runs the command line with args and exits non-zero on failure.
func Execute(args []string, stdout, stderr io.Writer) {
	if err := run(context.Background(), args, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := rootCmd(new(options))
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return root.ExecuteContext(ctx)
}

func rootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "mdcodemod [flags] [dir] [-- command]",
		Short: "Transform fenced code blocks of Markdown documents in place",
		Long:  rootHelp,
		Args:  checkargs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, args, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if scr, _ := script(cmd, args); len(scr) != 0 {
				opts.cfg.Commands = map[string]string{"*": scr}
			}

			if len(opts.cfg.Commands) == 0 {
				return errMissingCommand
			}

			return rewriteRun(cmd.Context(), opts, cmd.OutOrStdout())
		},

		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file (default "+config.DefaultFile+" if present)")
	flags.String("dir", "", "directory holding the documents")
	flags.String("pattern", "", "glob pattern selecting document file names")
	flags.StringSliceP("lang", "l", nil, "glob pattern selecting the language tags to transform (repeatable)")
	flags.String("log-level", "", "diagnostic log level (debug, info, warn, error)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress status output")

	cmd.Flags().Duration("timeout", 0, "time limit for each transform command")
	cmd.Flags().Bool("shell", true, "run commands through the shell interpreter")
	cmd.Flags().String("temp-dir", "", "parent directory for scratch files")
	cmd.Flags().BoolP("keep", "k", false, "don't remove scratch directories")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "report changes without writing documents")
	cmd.Flags().StringVar(&opts.report, "report", "", "write a YAML summary to this file")

	cmd.AddCommand(blocksCmd(opts))

	return cmd
}

func setup(cmd *cobra.Command, args []string, opts *options) error {
	opts.createStatus(cmd.ErrOrStderr())

	cfg, err := config.Load(opts.configFile, cmd.Flags())
	if err != nil {
		return err
	}

	if _, dirs := script(cmd, args); len(dirs) != 0 {
		cfg.Dir = dirs[0]
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if opts.log, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return err
	}

	opts.cfg = cfg

	return nil
}

// script splits the positional arguments at "--" into the command and the
// arguments before it.
func script(cmd *cobra.Command, args []string) (string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return "", args
	}

	return strings.Join(args[dash:], " "), args[:dash]
}

func checkargs(cmd *cobra.Command, args []string) error {
	if _, rest := script(cmd, args); len(rest) > 1 {
		return fmt.Errorf("%w: %s", errTooManyArgs, strings.Join(rest, " "))
	}

	return nil
}

var (
	errMissingCommand = errors.New("command is required after '--' or in the configuration")
	errTooManyArgs    = errors.New("at most one directory is accepted")
)
