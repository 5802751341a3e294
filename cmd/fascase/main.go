// Package main provides the entry point for the fascase CLI.
package main

import (
	"os"

	"github.com/fascase/fascase/cmd/fascase/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
