package cron

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/C4AI/blab-chatbot-bot-client/internal/bridge"
)

// BridgeSource is the subset of *bridge.Registry read by the status job.
type BridgeSource interface {
	CountByState() map[bridge.State]int
	Range(fn func(id string, b *bridge.Bridge) bool)
}

// StatusJob logs how many conversations are active, by connection state,
// and how many sent messages still wait for the controller's echo.
type StatusJob struct {
	Source       BridgeSource
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/5 * * * *"

	// Quiet suppresses the report when no conversation is active.
	Quiet bool
}

// Compile-time interface check.
var _ Job = (*StatusJob)(nil)

// Name implements Job.
func (j *StatusJob) Name() string { return "conversation_status" }

// Schedule implements Job.
func (j *StatusJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run logs a snapshot of the source.
func (j *StatusJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: status report cancelled: %w", ctx.Err())
	}
	if j.Source == nil {
		j.Logger.Debug("cron: status tick without a bridge registry")
		return nil
	}

	snap := j.Snapshot()
	if snap.Total == 0 && j.Quiet {
		return nil
	}

	j.Logger.Info("cron: conversation status",
		"active", snap.Total,
		"connecting", snap.States[bridge.StateConnecting],
		"open", snap.States[bridge.StateOpen],
		"closing", snap.States[bridge.StateClosing],
		"pending_deliveries", snap.PendingDeliveries,
	)
	return nil
}

// StatusSnapshot is what StatusJob reports.
type StatusSnapshot struct {
	Total             int
	States            map[bridge.State]int
	PendingDeliveries int
}

// Snapshot reads the current counts from the source.
func (j *StatusJob) Snapshot() StatusSnapshot {
	snap := StatusSnapshot{States: j.Source.CountByState()}
	for _, n := range snap.States {
		snap.Total += n
	}
	j.Source.Range(func(_ string, b *bridge.Bridge) bool {
		snap.PendingDeliveries += b.Session().PendingDeliveries()
		return true
	})
	return snap
}
