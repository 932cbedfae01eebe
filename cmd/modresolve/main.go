package main

import (
	"os"

	"github.com/bianoble/modresolve/cmd/modresolve/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
