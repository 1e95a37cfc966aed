package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rook-computer/sigimage/internal/render"
	"github.com/rook-computer/sigimage/internal/state"
	"github.com/rook-computer/sigimage/internal/system"
	"github.com/rook-computer/sigimage/internal/web"
)

// App runs the HTTP service and, when configured, the preview display.
type App struct {
	Store   *state.Store
	Display render.Display
	Web     web.Server
	Logger  Logger

	// Console switches the VT to graphics mode while the display runs and
	// binds F4 (exit) plus F5 and Esc (clear preview).
	Console bool

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, display render.Display, webServer web.Server) *App {
	return &App{Store: store, Display: display, Web: webServer, Logger: NoopLogger{}, exitCh: make(chan error, 1)}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs until ctx is done or Exit is called. A display that fails to
// start is logged and skipped; the API keeps serving.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Store == nil {
		app.Store = state.NewStore()
	}
	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}

	if err := app.Web.Start(ctx); err != nil {
		app.Logger.Errorf("app", "web server start error: %v", err)
		return err
	}
	defer func() { _ = app.Web.Stop() }()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	if app.Display != nil {
		if err := app.Display.Start(loopCtx); err != nil {
			app.Logger.Errorf("app", "display start error, continuing without it: %v", err)
		} else {
			defer func() { _ = app.Display.Stop() }()
			if app.Console {
				_ = system.EnterGraphicsMode(app.Logger)
				defer func() { _ = system.LeaveGraphicsMode(app.Logger) }()
				system.WatchKeys(loopCtx, app.Logger, app.keyBindings())
			}
			app.Display.RedrawWithState(app.Store.Snapshot())
			wg.Add(1)
			go func() {
				defer wg.Done()
				app.Display.RunLoop(loopCtx, app.Store)
			}()
		}
	}

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	cancel()
	wg.Wait()
	return err
}

func (app *App) keyBindings() map[uint16]func() {
	return map[uint16]func(){
		system.KeyF4:  func() { app.Exit(nil) },
		system.KeyF5:  app.Store.ClearLast,
		system.KeyEsc: app.Store.ClearLast,
	}
}
