package main

import (
	"os"

	"github.com/skyrlang/skyr/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
