package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/C4AI/blab-chatbot-bot-client/internal/config"
	"github.com/C4AI/blab-chatbot-bot-client/internal/core"
	"github.com/C4AI/blab-chatbot-bot-client/internal/security"
	"github.com/C4AI/blab-chatbot-bot-client/internal/telemetry"
	"github.com/C4AI/blab-chatbot-bot-client/internal/trigger"
	"github.com/spf13/cobra"
)

const telemetryFlushTimeout = 5 * time.Second

func startServerCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "startserver",
		Short: "Serve conversation requests from BLAB Controller",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Serve(cmd.Context(), opts, configFlag(cmd))
		},
	}
}

// Serve loads the settings, starts every configured module and blocks until
// ctx is cancelled or a shutdown signal arrives. Active conversations are
// closed before it returns.
func Serve(ctx context.Context, opts Options, cfgPath string) error {
	opts.defaults()
	if opts.Factory == nil {
		return errors.New("app: no bot factory")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path, cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	redactor := security.NewRedactor()
	logger := newLogger(cfg.Logging, redactor, opts.Stderr)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, opts.Version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flushing traces", "error", err)
		}
	}()

	application, err := loadApp(cfg, path, opts, logger, redactor)
	if err != nil {
		return err
	}

	logger.Info("starting bot client",
		"version", opts.Version,
		"config", path,
		"controller", cfg.Connection.ControllerWSURL,
	)
	return application.Run(ctx)
}

// loadConfig finds, loads and validates the settings file.
func loadConfig(explicit string) (string, *config.Config, error) {
	path, err := config.FindPath(explicit)
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

// loadApp publishes the shared services and loads the configured modules.
func loadApp(cfg *config.Config, path string, opts Options, logger *slog.Logger, redactor *security.Redactor) (*core.App, error) {
	appCtx := core.NewAppContext(logger, path).WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService(trigger.ServiceSettings, cfg.Settings())
	appCtx.RegisterService(trigger.ServiceFactory, opts.Factory)
	appCtx.RegisterService(trigger.ServiceRedactor, redactor)

	application := core.NewApp(appCtx)
	if err := application.LoadModules(config.Resolve(cfg)); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return application, nil
}

// newLogger builds the process logger. Every record passes through the
// redactor before reaching w.
func newLogger(l config.LoggingConfig, redactor *security.Redactor, w io.Writer) *slog.Logger {
	return slog.New(security.NewRedactingHandler(l.Handler(w), redactor))
}
