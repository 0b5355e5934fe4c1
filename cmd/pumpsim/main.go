package main

import (
	"os"

	"github.com/timzifer/halcore/cmd/pumpsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
