package main

import (
	"os"

	"github.com/mwalther/diametrics/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
