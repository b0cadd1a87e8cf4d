package main

import (
	"os"

	"codelens/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
