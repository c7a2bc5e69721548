package main

import (
	"os"

	"github.com/thinkpad-online/notes/cmd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
