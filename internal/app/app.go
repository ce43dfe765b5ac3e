package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/chasedut/docchat/internal/api"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/config"
	"github.com/chasedut/docchat/internal/db"
	"github.com/chasedut/docchat/internal/identity"
	"github.com/hashicorp/go-multierror"
)

// StatusInterval is how often readiness is re-checked while the server is not
// ready.
const StatusInterval = 15 * time.Second

// turnGrace is added to the request timeout so a turn only expires after its
// request has had the chance to fail on its own.
const turnGrace = 15 * time.Second

// App wires the chat state to the service and local storage. Network methods
// never touch State; callers apply their results on the goroutine that owns
// it.
type App struct {
	State  *chat.State
	Client *api.Client

	store  *db.Queries
	config *config.Config

	events         chan tea.Msg
	eventsWG       sync.WaitGroup
	tuiWG          sync.WaitGroup
	publishTimeout time.Duration

	globalCtx    context.Context
	cleanupMu    sync.Mutex
	cleanupFuncs []func() error
}

// New initializes a new application instance. conn is owned by the app and
// closed on Shutdown.
func New(ctx context.Context, conn *sql.DB, cfg *config.Config) *App {
	app := &App{
		State: chat.NewState(chat.WithTurnTimeout(turnTimeout(cfg.RequestTimeout.Std()))),
		Client: api.NewClient(cfg.ServerURL,
			api.WithTimeout(cfg.RequestTimeout.Std()),
		),
		store:          db.New(conn),
		config:         cfg,
		events:         make(chan tea.Msg, 16),
		publishTimeout: 2 * time.Second,
		globalCtx:      ctx,
	}
	app.addCleanup(conn.Close)
	return app
}

// turnTimeout is how long a turn may wait for its reply. Without a request
// timeout turns still expire after chat.DefaultTurnTimeout.
func turnTimeout(request time.Duration) time.Duration {
	if request <= 0 {
		return chat.DefaultTurnTimeout
	}
	return request + turnGrace
}

// Config returns the application configuration.
func (app *App) Config() *config.Config {
	return app.config
}

// Session is what a client starts from: its identity, the restored history
// and the server readiness.
type Session struct {
	ClientID  string
	History   chat.History
	Restored  bool
	Readiness chat.Readiness
}

// LoadSession loads or creates the client identity and fetches the
// server-side session. Only a storage failure is returned; the session and
// status checks are best effort. State is not touched.
func (app *App) LoadSession(ctx context.Context) (Session, error) {
	id, err := identity.Ensure(ctx, app.store)
	if err != nil {
		return Session{}, err
	}
	slog.Info("Client identity ready", "client_id", id)

	sess := Session{ClientID: id}
	if h, err := app.FetchSession(ctx, id); err != nil {
		slog.Warn("Failed to restore session", "client_id", id, "error", err)
	} else {
		sess.History = h
		sess.Restored = true
		slog.Info("Session restored", "messages", h.Len())
	}
	sess.Readiness = app.CheckStatus(ctx)
	return sess, nil
}

// ApplySession moves State to its initialized form.
func (app *App) ApplySession(sess Session) {
	if sess.Restored {
		app.State.RestoreHistory(sess.History)
	}
	app.State.SetReadiness(sess.Readiness)
	app.State.Initialize(sess.ClientID)
}

// Bootstrap loads and applies the session on the calling goroutine.
func (app *App) Bootstrap(ctx context.Context) error {
	sess, err := app.LoadSession(ctx)
	if err != nil {
		return err
	}
	app.ApplySession(sess)
	return nil
}

// ClientID returns the stored identity, creating it if needed.
func (app *App) ClientID(ctx context.Context) (string, error) {
	return identity.Ensure(ctx, app.store)
}

// FetchSession asks the server for the stored history of clientID.
func (app *App) FetchSession(ctx context.Context, clientID string) (chat.History, error) {
	sess, err := app.Client.GetSession(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return sess.History(), nil
}

// CheckStatus maps the server status to a readiness. A transport failure is
// Offline; any answer that is not "online with models loaded" is Loading.
func (app *App) CheckStatus(ctx context.Context) chat.Readiness {
	st, err := app.Client.Status(ctx)
	if err != nil {
		if _, ok := api.IsApplicationError(err); ok {
			return chat.ReadinessLoading
		}
		slog.Debug("Status check failed", "error", err)
		return chat.ReadinessOffline
	}
	return st.Readiness()
}

// Dispatch sends a turn to the endpoint for its channel and classifies the
// outcome. It never fails: errors become failed results.
func (app *App) Dispatch(ctx context.Context, clientID string, turn chat.Turn) chat.TurnResult {
	res := chat.TurnResult{Turn: turn}
	if turn.Local {
		res.Answer = chat.MsgUploadFirst
		return res
	}

	var (
		resp *api.ChatResponse
		err  error
	)
	switch turn.Channel {
	case chat.ChannelDocument:
		resp, err = app.Client.Chat(ctx, api.ChatRequest{Message: turn.Text, DocID: turn.DocID, ClientID: clientID})
	case chat.ChannelAssistant:
		resp, err = app.Client.AIChat(ctx, api.AIChatRequest{Message: turn.Text, ClientID: clientID})
	default:
		err = fmt.Errorf("unknown channel %q", turn.Channel)
	}
	if err != nil {
		res.Failed = true
		if apiErr, ok := api.IsApplicationError(err); ok {
			res.Reason = apiErr.Reason
			slog.Warn("Chat request rejected", "channel", turn.Channel, "turn", turn.ID, "reason", apiErr.Reason)
		} else {
			res.Network = true
			slog.Error("Chat request failed", "channel", turn.Channel, "turn", turn.ID, "error", err)
		}
		return res
	}

	res.Answer = resp.Answer
	res.Chunks = resp.RelevantChunks
	return res
}

// Ask submits text on channel and waits for the reply. It is meant for one-shot
// use from the command line, where the caller owns State.
func (app *App) Ask(ctx context.Context, channel chat.Channel, text string) ([]chat.Message, error) {
	if !app.State.Initialized() {
		return nil, errors.New("client is not initialized")
	}
	app.State.SwitchChannel(channel)
	turn, ok := app.State.Submit(text)
	if !ok {
		return nil, errors.New("message is empty")
	}
	if turn.Local {
		msgs := app.State.Messages(channel)
		return msgs[len(msgs)-1:], nil
	}
	return app.State.ResolveTurn(app.Dispatch(ctx, app.State.ClientID(), turn)), nil
}

// Events returns the channel background watchers publish on.
func (app *App) Events() <-chan tea.Msg {
	return app.events
}

// Shutdown stops background work and releases storage. All cleanup steps run;
// their errors are combined.
func (app *App) Shutdown() error {
	app.cleanupMu.Lock()
	defer app.cleanupMu.Unlock()

	var result *multierror.Error
	for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
		if err := app.cleanupFuncs[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	app.cleanupFuncs = nil
	return result.ErrorOrNil()
}

func (app *App) addCleanup(f func() error) {
	app.cleanupMu.Lock()
	defer app.cleanupMu.Unlock()
	app.cleanupFuncs = append(app.cleanupFuncs, f)
}
