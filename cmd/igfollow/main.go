package main

import (
	"os"

	"igfollowers/internal/cli"
)

func main() {
	os.Exit(cli.Execute(newRootCmd()))
}
