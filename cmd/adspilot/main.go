package main

import (
	"os"

	"github.com/adspilot/engine/cmd/adspilot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
