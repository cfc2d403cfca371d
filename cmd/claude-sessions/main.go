package main

import (
	"os"

	"github.com/baaaaaaaka/claude_sessions/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
