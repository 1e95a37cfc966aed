package render

import (
	"context"

	"github.com/rook-computer/sigimage/internal/state"
)

// Display mirrors the store on a local screen.
type Display interface {
	Start(ctx context.Context) error
	Stop() error
	RunLoop(ctx context.Context, store *state.Store)
	RedrawWithState(snap state.State)
}

type NoopDisplay struct{}

func (n *NoopDisplay) Start(ctx context.Context) error                 { return nil }
func (n *NoopDisplay) Stop() error                                     { return nil }
func (n *NoopDisplay) RunLoop(ctx context.Context, store *state.Store) { <-ctx.Done() }
func (n *NoopDisplay) RedrawWithState(snap state.State)                {}
