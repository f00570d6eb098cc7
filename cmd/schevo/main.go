package main

import (
	"os"

	"github.com/schevo/schevo/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
