// Package main is the entry point for the sipcore demo CLI.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/sipcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
