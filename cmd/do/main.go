package main

import (
	"os"

	"github.com/stoicjournal/stoic/cmd/do/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
