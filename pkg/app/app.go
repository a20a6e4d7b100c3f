// Package app is the command-line entry point shared by every bot binary. A
// bot author supplies a conversation.Factory and gets the full CLI:
//
//	func main() {
//		os.Exit(app.Main(app.Options{Factory: mybot.New}))
//	}
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/C4AI/blab-chatbot-bot-client/internal/core"
	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	// Modules register themselves in init.
	_ "github.com/C4AI/blab-chatbot-bot-client/internal/cron"
	_ "github.com/C4AI/blab-chatbot-bot-client/internal/trigger"
)

// Options describes the bot binary.
type Options struct {
	// Name is the command name. Defaults to "blab-bot".
	Name string

	// Factory builds the bot serving each conversation. Required.
	Factory conversation.Factory

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// Stderr receives logs. Defaults to os.Stderr.
	Stderr io.Writer
}

func (o *Options) defaults() {
	if o.Name == "" {
		o.Name = "blab-bot"
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	if o.Commit == "" {
		o.Commit = "none"
	}
	if o.Date == "" {
		o.Date = "unknown"
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main(opts Options) int {
	if err := Command(opts).Execute(); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// Command builds the root command.
func Command(opts Options) *cobra.Command {
	opts.defaults()

	root := &cobra.Command{
		Use:           opts.Name,
		Short:         "Connects a bot to BLAB Controller",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to the settings file")
	root.AddCommand(
		versionCmd(opts),
		startServerCmd(opts),
		answerCmd(opts),
		configCmd(opts),
		serviceCmd(opts),
	)
	return root
}

func versionCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s %s (commit: %s, built: %s)\n", opts.Name, opts.Version, opts.Commit, opts.Date)
			mods := core.GetModules()
			if len(mods) == 0 {
				_, _ = fmt.Fprintln(out, "\nNo compiled modules.")
				return
			}
			_, _ = fmt.Fprintln(out, "\nCompiled modules:")
			for _, mod := range mods {
				_, _ = fmt.Fprintf(out, "  %s\n", mod.ID)
			}
		},
	}
}

func configFlag(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
