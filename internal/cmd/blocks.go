package cmd

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/ezerfernandes/mdcodemod/internal/batch"
	"github.com/gobwas/glob"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

//go:embed help/blocks.md
var blocksHelp string

func blocksCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "blocks [flags] [dir]",
		Aliases: []string{"b", "ls"},
		Short:   "List fenced code blocks and whether they would be transformed",
		Long:    blocksHelp,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return blocksRun(batch.HostFS(), opts, cmd.OutOrStdout())
		},

		DisableAutoGenTag: true,
	}

	return cmd
}

func blocksRun(fsys batch.FS, opts *options, out io.Writer) error {
	cfg := opts.cfg

	filter, err := langFilter(cfg.Langs)
	if err != nil {
		return err
	}

	pattern, err := glob.Compile(cfg.Pattern)
	if err != nil {
		return err
	}

	dir := filepath.ToSlash(cfg.Dir)

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", batch.ErrDirNotFound, dir)
		}

		return err
	}

	tbl := table.New("File", "Lines", "Lang", "Attrs", "Indent", "State").WithWriter(out)
	count := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() || !pattern.Match(entry.Name()) {
			continue
		}

		name := path.Join(dir, entry.Name())

		src, err := fsys.ReadFile(name)
		if err != nil {
			opts.status("error %s: %v\n", name, err)

			continue
		}

		states, err := walk(src, filter)
		if err != nil {
			opts.status("error %s: %v\n", name, err)

			continue
		}

		for _, st := range states {
			lines := fmt.Sprintf("%d-%d", st.block.StartLine, st.block.EndLine)

			tbl.AddRow(name, lines, orDash(st.block.Lang), orDash(st.block.Attrs), st.block.Indent, st.state)
			count++
		}
	}

	if count == 0 {
		fmt.Fprintf(out, "no fenced code blocks in %s\n", cfg.Dir)

		return nil
	}

	tbl.Print()

	return nil
}

func orDash(s string) string {
	if len(s) == 0 {
		return "-"
	}

	return s
}
