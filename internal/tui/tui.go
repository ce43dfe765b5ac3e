package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/chasedut/docchat/internal/app"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/render"
	cmpChat "github.com/chasedut/docchat/internal/tui/components/chat"
	"github.com/chasedut/docchat/internal/tui/components/dialogs"
	"github.com/chasedut/docchat/internal/tui/components/dialogs/blocks"
	"github.com/chasedut/docchat/internal/tui/components/dialogs/prompt"
	"github.com/chasedut/docchat/internal/tui/components/dialogs/quit"
	"github.com/chasedut/docchat/internal/tui/components/upload"
	"github.com/chasedut/docchat/internal/tui/loading"
	"github.com/chasedut/docchat/internal/tui/styles"
	"github.com/chasedut/docchat/internal/tui/util"
)

const (
	uploadDialogID      dialogs.DialogID = "upload"
	findDialogID        dialogs.DialogID = "find"
	findResultsDialogID dialogs.DialogID = "find-results"

	typingInterval = 400 * time.Millisecond
)

type sessionLoadedMsg struct {
	session app.Session
	err     error
}

type turnResultMsg struct {
	result chat.TurnResult
}

type uploadResultMsg struct {
	result chat.UploadResult
}

type (
	uploadTickMsg struct{}
	typingTickMsg struct{}
)

// appModel owns the chat state for the lifetime of the program. Every state
// change happens in Update; commands only carry results back.
type appModel struct {
	wWidth, wHeight int
	width, height   int
	keyMap          KeyMap

	ctx context.Context
	app *app.App

	chat   *cmpChat.ChatCmp
	upload *upload.UploadCmp
	dialog *dialogs.DialogCmp

	help            help.Model
	showingFullHelp bool
	info            util.InfoMsg

	isLoading     bool
	loadingScreen *loading.SimpleLoadingScreen
	typing        bool

	err error
}

// Init requests the terminal size and starts restoring the session behind the
// loading screen.
func (a *appModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return tea.RequestWindowSize() },
		a.loadingScreen.Init(),
		a.loadSession(),
	)
}

func (a *appModel) loadSession() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		sess, err := a.app.LoadSession(ctx)
		return sessionLoadedMsg{session: sess, err: err}
	}
}

func (a *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.isLoading {
		switch msg := msg.(type) {
		case tea.WindowSizeMsg:
			a.wWidth, a.wHeight = msg.Width, msg.Height
			a.loadingScreen.SetSize(msg.Width, msg.Height)
			return a, nil
		case tea.KeyPressMsg:
			if key.Matches(msg, a.keyMap.Quit) {
				return a, tea.Quit
			}
			return a, nil
		case sessionLoadedMsg:
			if msg.err != nil {
				a.err = msg.err
				return a, tea.Quit
			}
			a.isLoading = false
			a.app.ApplySession(msg.session)
			a.app.WatchStatus(app.StatusInterval, msg.session.Readiness)
			return a, tea.Batch(
				a.chat.Init(),
				a.handleWindowResize(a.wWidth, a.wHeight),
			)
		default:
			var cmd tea.Cmd
			a.loadingScreen, cmd = a.loadingScreen.Update(msg)
			return a, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.wWidth, a.wHeight = msg.Width, msg.Height
		return a, a.handleWindowResize(msg.Width, msg.Height)

	case tea.KeyPressMsg:
		return a, a.handleKeyPressMsg(msg)

	case dialogs.OpenDialogMsg, dialogs.CloseDialogMsg:
		return a, a.dialog.Update(msg)

	case prompt.SubmittedMsg:
		switch msg.ID {
		case uploadDialogID:
			return a, a.startUpload(msg.Value)
		case findDialogID:
			return a, a.showMatches(msg.Value)
		}
		return a, nil

	case turnResultMsg:
		a.app.State.ResolveTurn(msg.result)
		return a, a.refresh()

	case uploadTickMsg:
		if !a.app.State.Uploading() {
			return a, nil
		}
		a.app.State.TickUpload()
		return a, tea.Batch(a.refresh(), uploadTick())

	case uploadResultMsg:
		a.app.State.CompleteUpload(msg.result)
		cmds := []tea.Cmd{a.refresh()}
		if doc := a.app.State.Document(); msg.result.Success && doc.Present() {
			cmds = append(cmds, a.rememberDocument(doc))
		}
		return a, tea.Batch(cmds...)

	case typingTickMsg:
		var refresh tea.Cmd
		if expired := a.app.State.ExpireTurns(); len(expired) > 0 {
			slog.Warn("Gave up waiting for replies", "count", len(expired))
			refresh = a.refresh()
		}
		if a.pendingTurns() == 0 {
			a.typing = false
			return a, refresh
		}
		a.chat.Typing()
		return a, tea.Batch(refresh, typingTick())

	case app.ReadinessMsg:
		a.app.State.SetReadiness(msg.Readiness)
		return a, nil

	case util.InfoMsg:
		a.info = msg
		return a, util.ClearAfter(msg.TTL)

	case util.ClearStatusMsg:
		a.info = util.InfoMsg{}
		return a, nil
	}

	if a.dialog.HasDialogs() {
		return a, a.dialog.Update(msg)
	}
	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return a, cmd
}

func (a *appModel) handleWindowResize(width, height int) tea.Cmd {
	a.width, a.height = width, height
	a.help.ShowAll = a.showingFullHelp
	cmds := []tea.Cmd{
		a.dialog.Update(tea.WindowSizeMsg{Width: width, Height: height}),
		a.refresh(),
	}
	return tea.Batch(cmds...)
}

// handleKeyPressMsg processes keyboard input and routes to appropriate handlers.
func (a *appModel) handleKeyPressMsg(msg tea.KeyPressMsg) tea.Cmd {
	if key.Matches(msg, a.keyMap.Quit) {
		if a.dialog.ActiveDialogID() == quit.QuitDialogID {
			return tea.Quit
		}
		return util.CmdHandler(dialogs.OpenDialogMsg{Model: quit.NewQuitDialog()})
	}
	if a.dialog.HasDialogs() {
		return a.dialog.Update(msg)
	}

	state := a.app.State
	switch {
	case key.Matches(msg, a.keyMap.Help):
		a.showingFullHelp = !a.showingFullHelp
		return a.handleWindowResize(a.wWidth, a.wHeight)

	case key.Matches(msg, a.keyMap.Switch):
		state.SwitchChannel(state.Active().Other())
		return tea.Batch(a.refresh(), a.startTyping())

	case key.Matches(msg, a.keyMap.Send):
		return a.submit()

	case key.Matches(msg, a.keyMap.Upload):
		if state.Uploading() {
			return util.ReportWarn("An upload is already in progress")
		}
		return util.CmdHandler(dialogs.OpenDialogMsg{
			Model: prompt.New(uploadDialogID, "Upload PDF", "/path/to/document.pdf", "PDF files up to 16 MB"),
		})

	case key.Matches(msg, a.keyMap.Remove):
		if !state.Document().Present() {
			return nil
		}
		if err := state.RemoveDocument(); err != nil {
			return util.ReportWarn("Wait for the upload to finish")
		}
		return tea.Batch(a.refresh(), a.forgetDocument())

	case key.Matches(msg, a.keyMap.Context):
		return a.showContext()

	case key.Matches(msg, a.keyMap.Find):
		return util.CmdHandler(dialogs.OpenDialogMsg{
			Model: prompt.New(findDialogID, "Find in "+render.HeaderFor(state.Active()).Title, "search text", ""),
		})

	case key.Matches(msg, a.keyMap.CopyReply):
		return a.copyReply()
	}

	var cmd tea.Cmd
	a.chat, cmd = a.chat.Update(msg)
	return cmd
}

func (a *appModel) submit() tea.Cmd {
	state := a.app.State
	if !state.ActiveInputEnabled() {
		return nil
	}
	turn, ok := state.Submit(a.chat.Value())
	if !ok {
		return nil
	}
	a.chat.Reset()

	cmds := []tea.Cmd{a.refresh()}
	if !turn.Local {
		cmds = append(cmds, a.dispatch(turn), a.startTyping())
	}
	return tea.Batch(cmds...)
}

func (a *appModel) dispatch(turn chat.Turn) tea.Cmd {
	ctx, clientID := a.ctx, a.app.State.ClientID()
	return func() tea.Msg {
		return turnResultMsg{result: a.app.Dispatch(ctx, clientID, turn)}
	}
}

// startTyping starts the tick that animates the typing indicator and expires
// stuck turns. It keeps running while any channel has a turn outstanding.
func (a *appModel) startTyping() tea.Cmd {
	if a.typing || a.pendingTurns() == 0 {
		return nil
	}
	a.typing = true
	return typingTick()
}

func (a *appModel) pendingTurns() int {
	n := 0
	for _, c := range chat.Channels {
		n += a.app.State.Pending(c)
	}
	return n
}

func (a *appModel) startUpload(path string) tea.Cmd {
	f, err := app.PrepareFile(path)
	if err != nil {
		return util.ReportError(err)
	}
	if err := a.app.State.BeginUpload(f); err != nil {
		slog.Debug("Upload rejected locally", "file", f.Name, "error", err)
		return a.refresh()
	}

	ctx := a.ctx
	return tea.Batch(
		a.refresh(),
		uploadTick(),
		func() tea.Msg {
			return uploadResultMsg{result: a.app.PerformUpload(ctx, f)}
		},
	)
}

func (a *appModel) rememberDocument(doc chat.Document) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if err := a.app.RememberDocument(ctx, doc); err != nil {
			slog.Warn("Failed to remember document", "doc_id", doc.DocID, "error", err)
		}
		return nil
	}
}

func (a *appModel) forgetDocument() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if err := a.app.ForgetDocument(ctx); err != nil {
			slog.Warn("Failed to forget document", "error", err)
		}
		return util.InfoMsg{Type: util.InfoTypeInfo, Msg: "Document removed"}
	}
}

func (a *appModel) showContext() tea.Cmd {
	v := render.Project(a.app.State, a.chat.Options())
	var pages []blocks.Page
	for _, item := range v.Items {
		if !item.HasContext() {
			continue
		}
		pages = append(pages, blocks.Page{
			Heading: fmt.Sprintf("Answer %d", len(pages)+1),
			Blocks:  render.ContextBlocks(item.Chunks),
		})
	}
	if len(pages) == 0 {
		return util.ReportInfo("No retrieved context in this chat")
	}
	return util.CmdHandler(dialogs.OpenDialogMsg{
		Model: blocks.New(blocks.ContextDialogID, "Retrieved Context", pages, len(pages)-1),
	})
}

func (a *appModel) showMatches(pattern string) tea.Cmd {
	matches := render.Find(a.app.State.Messages(a.app.State.Active()), pattern)
	if len(matches) == 0 {
		return util.ReportInfo(fmt.Sprintf("No messages match %q", pattern))
	}
	page := blocks.Page{Heading: fmt.Sprintf("%d matches", len(matches))}
	for _, m := range matches {
		page.Blocks = append(page.Blocks, render.ContextBlock{
			Title: fmt.Sprintf("#%d %s · %s", m.Index+1, m.Message.Role, m.Message.Time().Format("Jan 2 15:04")),
			Body:  m.Message.Text,
		})
	}
	return util.CmdHandler(dialogs.OpenDialogMsg{
		Model: blocks.New(findResultsDialogID, "Find: "+pattern, []blocks.Page{page}, 0),
	})
}

func (a *appModel) copyReply() tea.Cmd {
	text, ok := render.LastReply(a.app.State.Messages(a.app.State.Active()))
	if !ok {
		return util.ReportInfo("Nothing to copy yet")
	}
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return util.InfoMsg{Type: util.InfoTypeError, Msg: "Clipboard unavailable: " + err.Error()}
		}
		return util.InfoMsg{Type: util.InfoTypeInfo, Msg: "Reply copied to clipboard"}
	}
}

// refresh re-projects the state into the chat pane and lays it out.
func (a *appModel) refresh() tea.Cmd {
	a.upload.SetWidth(a.width)
	uploadView := a.upload.View(a.app.State.Upload(), a.app.State.Document())
	used := 1 + lipgloss.Height(a.statusView())
	if uploadView != "" {
		used += lipgloss.Height(uploadView)
	}
	a.chat.SetSize(a.width, max(a.height-used, 6))
	return a.chat.SetView(render.Project(a.app.State, a.chat.Options()))
}

func (a *appModel) tabsView() string {
	t := styles.CurrentTheme()
	s := t.S()
	state := a.app.State

	var tabs []string
	for _, c := range chat.Channels {
		label := render.HeaderFor(c).Title
		if n := len(state.Messages(c)); n > 0 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		if c == state.Active() {
			tabs = append(tabs, s.Selected.Render(label))
		} else {
			tabs = append(tabs, s.Button.Render(label))
		}
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs[0], " ", tabs[1])

	dot := s.Muted
	switch state.Readiness() {
	case chat.ReadinessReady:
		dot = s.Success
	case chat.ReadinessLoading:
		dot = s.Base.Foreground(t.Warning)
	case chat.ReadinessOffline:
		dot = s.Error
	}
	right := dot.Render("●") + " " + s.Muted.Render(state.Readiness().String())

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + lipgloss.NewStyle().Width(gap).Render("") + right
}

func (a *appModel) statusView() string {
	s := styles.CurrentTheme().S()
	if a.info.Msg != "" {
		st := s.Base
		switch a.info.Type {
		case util.InfoTypeWarn:
			st = s.Base.Foreground(styles.CurrentTheme().Warning)
		case util.InfoTypeError:
			st = s.Error
		}
		return st.Padding(0, 1).Render(a.info.Msg)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(a.help.View(a.keyMap))
}

func (a *appModel) View() tea.View {
	var view tea.View
	t := styles.CurrentTheme()
	view.BackgroundColor = t.BgBase

	if a.wWidth == 0 || a.wHeight == 0 {
		view.Layer = lipgloss.NewCanvas()
		return view
	}

	if a.isLoading {
		view.Layer = lipgloss.NewCanvas(lipgloss.NewLayer(a.loadingScreen.View()))
		return view
	}

	if a.wWidth < 40 || a.wHeight < 15 {
		view.Layer = lipgloss.NewCanvas(
			lipgloss.NewLayer(
				t.S().Base.Width(a.wWidth).Height(a.wHeight).
					Align(lipgloss.Center, lipgloss.Center).
					Render(
						t.S().Dialog.Padding(1, 4).Render("Window too small!"),
					),
			),
		)
		return view
	}

	components := []string{a.tabsView(), a.chat.View()}
	if u := a.upload.View(a.app.State.Upload(), a.app.State.Document()); u != "" {
		components = append(components, u)
	}
	components = append(components, a.statusView())

	layers := []*lipgloss.Layer{
		lipgloss.NewLayer(lipgloss.JoinVertical(lipgloss.Left, components...)),
	}
	if a.dialog.HasDialogs() {
		layers = append(layers, a.dialog.GetLayers()...)
	}
	view.Layer = lipgloss.NewCanvas(layers...)
	return view
}

// Err returns the error that ended the program, if any.
func (a *appModel) Err() error {
	return a.err
}

func uploadTick() tea.Cmd {
	return tea.Tick(chat.ProgressInterval, func(time.Time) tea.Msg {
		return uploadTickMsg{}
	})
}

func typingTick() tea.Cmd {
	return tea.Tick(typingInterval, func(time.Time) tea.Msg {
		return typingTickMsg{}
	})
}

// New creates the TUI model. ctx bounds every request the TUI makes.
func New(ctx context.Context, a *app.App) tea.Model {
	return NewWithSize(ctx, a, 80, 24)
}

// NewWithSize creates the TUI model with an initial terminal size.
func NewWithSize(ctx context.Context, a *app.App, width, height int) tea.Model {
	loadingScreen := loading.NewSimple()
	loadingScreen.SetSize(width, height)

	return &appModel{
		ctx:    ctx,
		app:    a,
		keyMap: DefaultKeyMap(),

		chat:   cmpChat.New(a.Config().RenderMarkdown),
		upload: upload.New(),
		dialog: dialogs.NewDialogCmp(),
		help:   help.New(),

		isLoading:     true,
		loadingScreen: loadingScreen,

		wWidth:  width,
		wHeight: height,
		width:   width,
		height:  height,
	}
}
