package main

import (
	"os"

	"github.com/ovolkova/confwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
