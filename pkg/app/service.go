package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts Serve to the service manager's start/stop callbacks.
type program struct {
	opts    Options
	cfgPath string

	cancel context.CancelFunc
	done   chan error
}

var _ service.Interface = (*program)(nil)

// Start implements service.Interface. It must not block.
func (p *program) Start(service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	go func() { p.done <- Serve(ctx, p.opts, p.cfgPath) }()
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

// serviceConfig describes the system service running `startserver` with an
// absolute settings path.
func serviceConfig(opts Options, cfgPath string) *service.Config {
	return &service.Config{
		Name:        opts.Name,
		DisplayName: "BLAB bot client (" + opts.Name + ")",
		Description: "Connects a bot to BLAB Controller.",
		Arguments:   []string{"service", "run", "--config", cfgPath},
	}
}

func newService(opts Options, explicit string) (service.Service, error) {
	path, _, err := loadConfig(explicit)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return service.New(&program{opts: opts, cfgPath: abs}, serviceConfig(opts, abs))
}

func serviceCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage the bot client as a system service",
	}

	for _, action := range service.ControlAction {
		cmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", action),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := newService(opts, configFlag(cmd))
				if err != nil {
					return err
				}
				if err := service.Control(svc, action); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "service %s: %s done\n", opts.Name, action)
				return nil
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the system service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(opts, configFlag(cmd))
			if err != nil {
				return err
			}
			status, err := svc.Status()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "service %s: %s\n", opts.Name, statusName(status))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := newService(opts, configFlag(cmd))
			if err != nil {
				return err
			}
			return svc.Run()
		},
	})
	return cmd
}

func statusName(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
