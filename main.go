package main

import (
	"os"

	"github.com/abhisek/brainkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
