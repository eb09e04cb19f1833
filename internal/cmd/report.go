package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ezerfernandes/mdcodemod/internal/batch"
	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"
)

const fileMode = 0o644

func printSummary(out io.Writer, summary *batch.Summary) {
	if len(summary.Files) == 0 {
		fmt.Fprintf(out, "no documents in %s\n", summary.Dir)

		return
	}

	tbl := table.New("File", "State", "Blocks", "Replaced", "Failed").WithWriter(out)

	for _, file := range summary.Files {
		tbl.AddRow(file.Name, file.State, file.Blocks, file.Replaced, file.Failed)
	}

	tbl.Print()
}

func writeReport(filename string, summary *batch.Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, fileMode); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
