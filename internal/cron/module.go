package cron

import (
	"context"
	"errors"
	"log/slog"

	"github.com/C4AI/blab-chatbot-bot-client/internal/bridge"
	"github.com/C4AI/blab-chatbot-bot-client/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&StatusModule{})
}

// StatusConfig configures the cron.status module.
type StatusConfig struct {
	Schedule string `yaml:"schedule"`
	Quiet    bool   `yaml:"quiet"`
}

// StatusModule periodically logs the state of active conversations. The
// bridge registry is resolved at Start, after every module is provisioned.
type StatusModule struct {
	config    StatusConfig
	appCtx    *core.AppContext
	logger    *slog.Logger
	scheduler *Scheduler
	job       *StatusJob
}

// ModuleInfo implements core.Module.
func (m *StatusModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "cron.status",
		New: func() core.Module { return &StatusModule{} },
	}
}

// Configure implements core.Configurable.
func (m *StatusModule) Configure(node *yaml.Node) error {
	return node.Decode(&m.config)
}

// Provision implements core.Provisioner.
func (m *StatusModule) Provision(ctx *core.AppContext) error {
	m.appCtx = ctx
	m.logger = ctx.Logger
	m.job = &StatusJob{
		Logger:       m.logger,
		ScheduleExpr: m.config.Schedule,
		Quiet:        m.config.Quiet,
	}
	m.scheduler = NewScheduler(m.logger)
	return m.scheduler.RegisterJob(m.job)
}

// Validate implements core.Validator.
func (m *StatusModule) Validate() error {
	if _, err := parser.Parse(m.job.Schedule()); err != nil {
		return errors.New("cron.status: invalid schedule: " + err.Error())
	}
	return nil
}

// Start implements core.Starter.
func (m *StatusModule) Start() error {
	if reg, ok := core.ServiceAs[*bridge.Registry](m.appCtx, bridge.RegistryService); ok {
		m.job.Source = reg
	} else {
		m.logger.Warn("cron.status: no bridge registry, reports will be empty")
	}
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *StatusModule) Stop(ctx context.Context) error {
	return m.scheduler.Stop(ctx)
}
