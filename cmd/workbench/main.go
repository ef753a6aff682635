package main

import (
	"os"

	"github.com/rustyeddy/workbench/cmd/workbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
