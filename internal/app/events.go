package app

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/log"
)

// ReadinessMsg reports a fresh server status.
type ReadinessMsg struct {
	Readiness chat.Readiness
}

// WatchStatus polls the server status every interval until it reports ready,
// publishing each change on the events channel. Polling only stops once the
// ready event has been delivered.
func (app *App) WatchStatus(interval time.Duration, last chat.Readiness) {
	if last == chat.ReadinessReady {
		return
	}
	ctx, cancel := context.WithCancel(app.globalCtx)
	app.addCleanup(func() error {
		cancel()
		app.eventsWG.Wait()
		return nil
	})

	app.eventsWG.Add(1)
	go func() {
		defer app.eventsWG.Done()
		defer log.RecoverPanic("app.WatchStatus", nil)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Debug("Status watcher cancelled")
				return
			case <-ticker.C:
			}

			r := app.CheckStatus(ctx)
			if r == last {
				continue
			}
			select {
			case app.events <- ReadinessMsg{Readiness: r}:
				last = r
			case <-time.After(app.publishTimeout):
				// last is unchanged, so the next tick publishes again.
				slog.Warn("Status update dropped due to slow consumer")
				continue
			case <-ctx.Done():
				return
			}
			if r == chat.ReadinessReady {
				slog.Debug("Server ready, status watcher stopping")
				return
			}
		}
	}()
}

// Subscribe forwards background events to the TUI until the app shuts down.
func (app *App) Subscribe(program *tea.Program) {
	defer log.RecoverPanic("app.Subscribe", func() {
		slog.Info("TUI subscription panic: attempting graceful shutdown")
		program.Quit()
	})

	tuiCtx, tuiCancel := context.WithCancel(app.globalCtx)
	app.tuiWG.Add(1)
	app.addCleanup(func() error {
		slog.Debug("Cancelling TUI message handler")
		tuiCancel()
		app.tuiWG.Wait()
		return nil
	})
	defer app.tuiWG.Done()

	for {
		select {
		case <-tuiCtx.Done():
			slog.Debug("TUI message handler shutting down")
			return
		case msg, ok := <-app.events:
			if !ok {
				return
			}
			program.Send(msg)
		}
	}
}
