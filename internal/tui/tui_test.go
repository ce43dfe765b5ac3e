package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chasedut/docchat/internal/app"
	"github.com/chasedut/docchat/internal/chat"
	"github.com/chasedut/docchat/internal/config"
	"github.com/chasedut/docchat/internal/db"
	"github.com/chasedut/docchat/internal/tui/components/dialogs"
	"github.com/chasedut/docchat/internal/tui/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*appModel, *app.App) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	conn, err := db.Connect(ctx, dir)
	require.NoError(t, err)

	a := app.New(ctx, conn, &config.Config{ServerURL: "http://127.0.0.1:1", DataDirectory: dir})
	t.Cleanup(func() { _ = a.Shutdown() })

	return NewWithSize(ctx, a, 100, 30).(*appModel), a
}

func loaded(t *testing.T) (*appModel, *app.App) {
	t.Helper()
	m, a := newTestModel(t)
	m.Update(sessionLoadedMsg{session: app.Session{
		ClientID:  "cli-1-2",
		Restored:  true,
		Readiness: chat.ReadinessReady,
		History: chat.History{
			chat.ChannelDocument: {
				{Role: chat.RoleUser, Text: "what grew?", Timestamp: 1700000000000},
				{Role: chat.RoleAssistant, Text: "Revenue.", Chunks: []string{"revenue grew 10%"}, Timestamp: 1700000001000},
			},
		},
	}})
	return m, a
}

func TestSessionLoaded(t *testing.T) {
	m, a := loaded(t)

	assert.False(t, m.isLoading)
	assert.True(t, a.State.Initialized())
	assert.Equal(t, "cli-1-2", a.State.ClientID())
	assert.Len(t, a.State.Messages(chat.ChannelDocument), 2)
	assert.Equal(t, chat.ReadinessReady, a.State.Readiness())
	assert.NotPanics(t, func() { m.View() })
}

func TestSessionLoadFailureQuits(t *testing.T) {
	m, _ := newTestModel(t)
	boom := errors.New("boom")

	_, cmd := m.Update(sessionLoadedMsg{err: boom})
	require.NotNil(t, cmd)
	assert.True(t, m.isLoading)
	assert.Equal(t, boom, m.Err())
}

func TestTurnResultAppendsReply(t *testing.T) {
	m, a := loaded(t)
	require.True(t, a.State.SwitchChannel(chat.ChannelAssistant))

	turn, ok := a.State.Submit("hello?")
	require.True(t, ok)
	require.False(t, turn.Local)
	assert.Equal(t, 1, a.State.Pending(chat.ChannelAssistant))

	m.Update(turnResultMsg{result: chat.TurnResult{Turn: turn, Answer: "hi there"}})

	msgs := a.State.Messages(chat.ChannelAssistant)
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hi there", msgs[1].Text)
	assert.Zero(t, a.State.Pending(chat.ChannelAssistant))
}

func TestShowContext(t *testing.T) {
	m, a := loaded(t)

	msg := m.showContext()()
	open, ok := msg.(dialogs.OpenDialogMsg)
	require.True(t, ok)
	assert.Equal(t, dialogs.DialogID("context"), open.Model.ID())

	require.True(t, a.State.SwitchChannel(chat.ChannelAssistant))
	info, ok := m.showContext()().(util.InfoMsg)
	require.True(t, ok)
	assert.Equal(t, util.InfoTypeInfo, info.Type)
}

func TestShowMatches(t *testing.T) {
	m, _ := loaded(t)

	_, ok := m.showMatches("grew")().(dialogs.OpenDialogMsg)
	assert.True(t, ok)

	_, ok = m.showMatches("zzzz")().(util.InfoMsg)
	assert.True(t, ok)
}

func TestStartUploadMissingFile(t *testing.T) {
	m, a := loaded(t)

	info, ok := m.startUpload("/does/not/exist.pdf")().(util.InfoMsg)
	require.True(t, ok)
	assert.Equal(t, util.InfoTypeError, info.Type)
	assert.False(t, a.State.Uploading())
}

func TestReadinessMsg(t *testing.T) {
	m, a := loaded(t)
	m.Update(app.ReadinessMsg{Readiness: chat.ReadinessOffline})
	assert.Equal(t, chat.ReadinessOffline, a.State.Readiness())
}

func TestTypingTickExpiresStuckTurns(t *testing.T) {
	m, a := newTestModel(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a.State = chat.NewState(chat.WithClock(func() time.Time { return now }), chat.WithTurnTimeout(time.Minute))
	m.Update(sessionLoadedMsg{session: app.Session{ClientID: "cli-1-2", Readiness: chat.ReadinessReady}})
	require.True(t, a.State.SwitchChannel(chat.ChannelAssistant))

	_, ok := a.State.Submit("first")
	require.True(t, ok)
	second, ok := a.State.Submit("second")
	require.True(t, ok)
	m.Update(turnResultMsg{result: chat.TurnResult{Turn: second, Answer: "two"}})
	assert.Len(t, a.State.Messages(chat.ChannelAssistant), 2)

	m.typing = true
	now = now.Add(2 * time.Minute)
	m.Update(typingTickMsg{})

	msgs := a.State.Messages(chat.ChannelAssistant)
	require.Len(t, msgs, 4)
	assert.Equal(t, chat.MsgNetworkError, msgs[2].Text)
	assert.Equal(t, "two", msgs[3].Text)
	assert.Zero(t, a.State.Pending(chat.ChannelAssistant))
	assert.False(t, m.typing)
}
