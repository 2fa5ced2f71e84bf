package main

import (
	"os"

	"github.com/ClancyDennis/claude-commander-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
