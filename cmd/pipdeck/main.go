package main

import (
	"os"

	"github.com/pipdeck/pipdeck/cmd/pipdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
