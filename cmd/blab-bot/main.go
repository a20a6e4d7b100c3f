// Package main is the entry point for the blab-bot CLI, serving the example
// echo bot.
package main

import (
	"os"

	"github.com/C4AI/blab-chatbot-bot-client/internal/examplebot"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(app.Main(app.Options{
		Factory: examplebot.New,
		Version: version,
		Commit:  commit,
		Date:    date,
	}))
}
