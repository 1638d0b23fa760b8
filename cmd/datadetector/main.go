package main

import (
	"os"

	"github.com/zafrem/data-detector/internal/cmd"
)

func main() {
	// Cobra has already printed the error; just set the exit code.
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
