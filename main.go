package main

import (
	"os"

	"github.com/ezerfernandes/mdcodemod/internal/cmd"
)

func main() {
	cmd.Execute(os.Args[1:], os.Stdout, os.Stderr)
}
