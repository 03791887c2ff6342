package main

import (
	"os"

	"github.com/peschuster/propresenter-srt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
