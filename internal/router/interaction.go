package router

import (
	"context"
	"log/slog"
)

// Responder delivers responses for a single interaction. The gateway
// connector implements it over the Discord REST callback endpoints.
type Responder interface {
	// Defer acknowledges the interaction with a visible pending state.
	Defer(ctx context.Context, ephemeral bool) error
	// Reply sends the initial response without a prior Defer.
	Reply(ctx context.Context, render Render) error
	// Edit replaces the deferred or initial response.
	Edit(ctx context.Context, render Render) error
}

type lifecycleState int

const (
	stateReceived lifecycleState = iota
	stateAcknowledged
	stateResolved
	stateFailed
)

// Interaction tracks the response lifecycle of one event so handlers
// can acknowledge early and resolve exactly once. Duplicate
// acknowledgements and post-terminal resolutions are dropped.
type Interaction struct {
	event     Event
	responder Responder
	logger    *slog.Logger
	state     lifecycleState
}

func newInteraction(event Event, responder Responder, logger *slog.Logger) *Interaction {
	return &Interaction{event: event, responder: responder, logger: logger}
}

func (i *Interaction) Event() Event { return i.event }

// Acknowledge defers the response. A second call is a silent no-op.
func (i *Interaction) Acknowledge(ctx context.Context, ephemeral bool) error {
	if i.state != stateReceived {
		return nil
	}
	if err := i.responder.Defer(ctx, ephemeral); err != nil {
		return err
	}
	i.state = stateAcknowledged
	return nil
}

// Resolve delivers the final render: an edit when the interaction was
// acknowledged, an initial reply otherwise. No-op once terminal.
func (i *Interaction) Resolve(ctx context.Context, render Render) error {
	switch i.state {
	case stateResolved, stateFailed:
		return nil
	case stateAcknowledged:
		if err := i.responder.Edit(ctx, render); err != nil {
			return err
		}
	default:
		if err := i.responder.Reply(ctx, render); err != nil {
			return err
		}
	}
	i.state = stateResolved
	return nil
}

// Fail marks the interaction failed and best-effort delivers the error
// render. Send failures are logged, not returned, because the caller
// is already on an error path.
func (i *Interaction) Fail(ctx context.Context, render Render) {
	switch i.state {
	case stateResolved, stateFailed:
		return
	case stateAcknowledged:
		if err := i.responder.Edit(ctx, render); err != nil {
			i.logger.Error("failed to deliver error response", "error", err, "user_id", i.event.UserID)
		}
	default:
		if err := i.responder.Reply(ctx, render); err != nil {
			i.logger.Error("failed to deliver error response", "error", err, "user_id", i.event.UserID)
		}
	}
	i.state = stateFailed
}
