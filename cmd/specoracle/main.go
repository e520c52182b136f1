// Package main is the entry point for the specoracle CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/specoracle/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
