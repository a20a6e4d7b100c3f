package app

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/C4AI/blab-chatbot-bot-client/internal/config"
	"github.com/C4AI/blab-chatbot-bot-client/internal/security"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func configCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(opts), configInitCmd(), configShowCmd())
	return cmd
}

func configCheckCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the settings file and the modules it configures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, cfg, err := loadConfig(configFlag(cmd))
			if err != nil {
				return err
			}

			redactor := security.NewRedactor()
			logger := newLogger(cfg.Logging, redactor, io.Discard)
			application, err := loadApp(cfg, path, opts, logger, redactor)
			if err != nil {
				return err
			}
			defer application.Stop()

			out := cmd.OutOrStdout()
			ids := application.Modules()
			_, _ = fmt.Fprintf(out, "Configuration OK: %s (%d modules)\n", path, len(ids))
			for _, id := range ids {
				_, _ = fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	var (
		output   string
		defaults bool
		force    bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a new settings file",
		Long: "Ask for the connection settings and write a settings file. " +
			"With --defaults the stock settings are written without asking.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				p, err := config.UserPath()
				if err != nil {
					return err
				}
				output = p
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("config: %s already exists (use --force to overwrite)", output)
			}

			cfg := config.Default()
			if !defaults {
				if err := initForm(cfg).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return err
				}
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			if err := config.Save(output, cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default: user settings path)")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Write the stock settings without prompting")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

// initForm asks for the connection settings, editing cfg in place.
func initForm(cfg *config.Config) *huh.Form {
	conn := &cfg.Connection
	port := strconv.Itoa(conn.BotHTTPServerPort)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Controller WebSocket URL").
				Description("Base address of BLAB Controller, e.g. ws://localhost:8000").
				Value(&conn.ControllerWSURL).
				Validate(validateWSURL),
			huh.NewInput().
				Title("Listen address").
				Description("Interface the trigger server binds to").
				Value(&conn.BotHTTPServerHostname).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Listen port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 || n > 65535 {
						return errors.New("must be a number between 1 and 65535")
					}
					conn.BotHTTPServerPort = n
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log format").
				Options(huh.NewOption("Text", "text"), huh.NewOption("JSON", "json")).
				Value(&cfg.Logging.Format),
		),
	)
}

func validateWSURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "ws" && u.Scheme != "wss") {
		return errors.New("must be a ws:// or wss:// URL")
	}
	return nil
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with secrets redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.FindPath(configFlag(cmd))
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			return writeRedacted(cmd.OutOrStdout(), cfg)
		},
	}
}

// writeRedacted prints cfg as YAML after masking secret-looking values.
func writeRedacted(w io.Writer, cfg *config.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	security.NewRedactor().RedactMap(doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
