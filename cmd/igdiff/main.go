package main

import (
	"os"
	"time"

	"igfollowers/internal/cli"
)

func main() {
	os.Exit(cli.Execute(newRootCmd(time.Now)))
}
