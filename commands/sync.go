package commands

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-content-sync/internal/syncer"
	"github.com/goliatone/go-content-sync/pkg/interfaces"
)

const (
	syncMessageType   = "contentsync.sync"
	rescanMessageType = "contentsync.rescan"
)

// Runner executes one sync invocation; the orchestrator satisfies this.
type Runner interface {
	Run(ctx context.Context, trigger syncer.Trigger) (*syncer.Summary, error)
}

// SyncCommand requests a sync for an already resolved trigger.
type SyncCommand struct {
	Trigger syncer.Trigger `json:"trigger"`
}

// Type implements command.Message.
func (SyncCommand) Type() string { return syncMessageType }

// Validate ensures the trigger union is internally consistent before it
// reaches handlers.
func (m SyncCommand) Validate() error {
	errs := validation.Errors{}
	switch m.Trigger.Kind {
	case syncer.TriggerPush:
		if m.Trigger.Push == nil {
			errs["trigger"] = validation.NewError("contentsync.sync.push_payload_required", "push trigger requires a push payload")
		}
	case syncer.TriggerPullRequest:
		if m.Trigger.PullRequest == nil {
			errs["trigger"] = validation.NewError("contentsync.sync.pull_request_payload_required", "pull_request trigger requires a pull request payload")
		}
	case syncer.TriggerPing, syncer.TriggerManual:
	default:
		errs["trigger"] = validation.NewError("contentsync.sync.kind_invalid", "trigger kind is not recognized")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RescanCommand requests a full fingerprint scan, ignoring event diffs.
type RescanCommand struct{}

// Type implements command.Message.
func (RescanCommand) Type() string { return rescanMessageType }

// Validate implements command.Message; a rescan carries no fields.
func (RescanCommand) Validate() error { return nil }

// SyncHandler dispatches resolved triggers through the orchestrator.
type SyncHandler struct {
	inner *Handler[SyncCommand]
}

// NewSyncHandler constructs a handler wired to the provided runner.
func NewSyncHandler(runner Runner, logger interfaces.Logger, opts ...HandlerOption[SyncCommand]) *SyncHandler {
	exec := func(ctx context.Context, msg SyncCommand) error {
		_, err := runner.Run(ctx, msg.Trigger)
		return err
	}

	handlerOpts := []HandlerOption[SyncCommand]{
		WithLogger[SyncCommand](logger),
		WithOperation[SyncCommand]("contentsync.sync"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SyncCommand].Execute.
func (h *SyncHandler) Execute(ctx context.Context, msg SyncCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RescanHandler runs a full scan via the orchestrator.
type RescanHandler struct {
	inner *Handler[RescanCommand]
}

// NewRescanHandler constructs a handler wired to the provided runner.
func NewRescanHandler(runner Runner, logger interfaces.Logger, opts ...HandlerOption[RescanCommand]) *RescanHandler {
	exec := func(ctx context.Context, _ RescanCommand) error {
		_, err := runner.Run(ctx, syncer.Trigger{Kind: syncer.TriggerManual})
		return err
	}

	handlerOpts := []HandlerOption[RescanCommand]{
		WithLogger[RescanCommand](logger),
		WithOperation[RescanCommand]("contentsync.rescan"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RescanHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RescanCommand].Execute.
func (h *RescanHandler) Execute(ctx context.Context, msg RescanCommand) error {
	return h.inner.Execute(ctx, msg)
}
