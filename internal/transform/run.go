package transform

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

var errEmptyCommand = errors.New("empty command")

func runShell(ctx context.Context, command, dir string, output io.Writer) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, err
	}

	runner, err := interp.New(interp.Dir(dir), interp.StdIO(nil, output, output))
	if err != nil {
		return -1, err
	}

	err = runner.Run(ctx, file)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}

		return -1, err
	}

	return 0, nil
}

func runArgs(ctx context.Context, scr string, vars *placeholders, dir string, output io.Writer) (int, error) {
	words, err := shlex.Split(scr)
	if err != nil {
		return -1, err
	}

	if len(words) == 0 {
		return -1, errEmptyCommand
	}

	for i, word := range words {
		words[i] = vars.expand(word)
	}

	cmd := exec.CommandContext(ctx, words[0], words[1:]...) //nolint:gosec
	cmd.Dir = dir
	cmd.Stdout = output
	cmd.Stderr = output

	err = cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}

		return -1, err
	}

	return 0, nil
}
