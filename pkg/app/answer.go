package app

import (
	"errors"
	"os"

	"github.com/C4AI/blab-chatbot-bot-client/internal/config"
	"github.com/C4AI/blab-chatbot-bot-client/internal/console"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func answerCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "answer",
		Short: "Answer messages typed on the terminal",
		Long: "Chat with the bot on the terminal without a controller. " +
			"Without a settings file the stock settings are used.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Factory == nil {
				return errors.New("app: no bot factory")
			}

			cfg, err := answerConfig(configFlag(cmd))
			if err != nil {
				return err
			}

			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			chat := &console.Chat{
				Factory:  opts.Factory,
				Settings: cfg.Settings(),
				In:       in,
				Out:      out,
			}
			if f, ok := in.(*os.File); ok {
				chat.Interactive = console.IsInteractive(f)
			}
			if f, ok := out.(*os.File); ok {
				chat.Color = f == os.Stdout && !color.NoColor
			}
			return chat.Run(cmd.Context())
		},
	}
}

// answerConfig loads the settings for a console chat. A missing settings
// file is fine unless one was named explicitly.
func answerConfig(explicit string) (*config.Config, error) {
	_, cfg, err := loadConfig(explicit)
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}
