package main

import (
	"os"

	"github.com/fileshare/fileshare/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
