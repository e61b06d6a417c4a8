package main

import (
	"os"

	"github.com/autodub/autodub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
