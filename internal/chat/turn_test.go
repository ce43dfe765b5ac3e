package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitBlankIsNoop(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, ok := s.Submit(text)
		assert.False(t, ok)
	}
	assert.Zero(t, s.History().Len())
	assert.Zero(t, s.Pending(ChannelAssistant))
}

func TestSubmitAppendsUserBeforeReply(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)

	turn, ok := s.Submit("  Hello ")
	require.True(t, ok)
	assert.False(t, turn.Local)
	assert.Empty(t, turn.DocID)
	assert.Equal(t, "Hello", turn.Text)
	assert.NotEmpty(t, turn.ID)

	msgs := s.Messages(ChannelAssistant)
	require.Len(t, msgs, 1)
	assert.Equal(t, Message{Role: RoleUser, Text: "Hello", Timestamp: msgs[0].Timestamp}, msgs[0])
	assert.Equal(t, 1, s.Pending(ChannelAssistant))

	appended := s.ResolveTurn(TurnResult{Turn: turn, Answer: "Hi there"})
	require.Len(t, appended, 1)
	msgs = s.Messages(ChannelAssistant)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Hi there", msgs[1].Text)
	assert.Zero(t, s.Pending(ChannelAssistant))
}

func TestSubmitDocumentWithoutUploadAnswersLocally(t *testing.T) {
	s := newTestState()

	turn, ok := s.Submit("what is this about?")
	require.True(t, ok)
	assert.True(t, turn.Local)

	msgs := s.Messages(ChannelDocument)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, MsgUploadFirst, msgs[1].Text)
	assert.Zero(t, s.Pending(ChannelDocument))
}

func TestSubmitDocumentCarriesDocID(t *testing.T) {
	s := newTestState()
	uploadDoc(t, s, "d1", "report.pdf", 4)

	turn, ok := s.Submit("summary?")
	require.True(t, ok)
	assert.Equal(t, "d1", turn.DocID)

	s.ResolveTurn(TurnResult{Turn: turn, Answer: "It is a report.", Chunks: []string{"p1", "p2"}})
	msgs := s.Messages(ChannelDocument)
	last := msgs[len(msgs)-1]
	assert.Equal(t, []string{"p1", "p2"}, last.Chunks)
}

func TestAssistantRepliesNeverCarryChunks(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)
	turn, _ := s.Submit("hi")
	s.ResolveTurn(TurnResult{Turn: turn, Answer: "hello", Chunks: []string{"stray"}})
	msgs := s.Messages(ChannelAssistant)
	assert.Nil(t, msgs[len(msgs)-1].Chunks)
}

func TestApplicationErrorIsRecorded(t *testing.T) {
	s := newTestState()
	uploadDoc(t, s, "d1", "report.pdf", 4)
	before := len(s.Messages(ChannelDocument))

	turn, _ := s.Submit("question")
	s.ResolveTurn(TurnResult{Turn: turn, Failed: true, Reason: "timeout"})

	msgs := s.Messages(ChannelDocument)
	require.Len(t, msgs, before+2)
	last := msgs[len(msgs)-1]
	assert.Equal(t, RoleAssistant, last.Role)
	assert.Contains(t, last.Text, "timeout")
	assert.Nil(t, last.Chunks)
}

func TestNetworkErrorIsRecorded(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)
	turn, _ := s.Submit("question")
	s.ResolveTurn(TurnResult{Turn: turn, Failed: true, Network: true})

	msgs := s.Messages(ChannelAssistant)
	assert.Equal(t, MsgNetworkError, msgs[len(msgs)-1].Text)
}

func TestRepliesAppliedInSubmissionOrder(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)

	first, _ := s.Submit("one")
	second, _ := s.Submit("two")
	third, _ := s.Submit("three")
	assert.Equal(t, 3, s.Pending(ChannelAssistant))

	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: third, Answer: "3"}))
	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: second, Answer: "2"}))
	assert.Equal(t, 3, s.Pending(ChannelAssistant))

	appended := s.ResolveTurn(TurnResult{Turn: first, Answer: "1"})
	require.Len(t, appended, 3)
	assert.Zero(t, s.Pending(ChannelAssistant))

	var texts []string
	for _, m := range s.Messages(ChannelAssistant) {
		texts = append(texts, m.Text)
	}
	assert.Equal(t, []string{"one", "two", "three", "1", "2", "3"}, texts)
}

func TestDuplicateAndStaleResultsAreDropped(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)
	turn, _ := s.Submit("one")

	require.Len(t, s.ResolveTurn(TurnResult{Turn: turn, Answer: "a"}), 1)
	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: turn, Answer: "again"}))

	bogus := Turn{Channel: ChannelAssistant, Seq: 99}
	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: bogus, Answer: "x"}))
	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: Turn{Channel: "images", Seq: 1}}))
	assert.Len(t, s.Messages(ChannelAssistant), 2)
}

func TestChannelsAreIsolated(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)
	turn, _ := s.Submit("general question")
	s.ResolveTurn(TurnResult{Turn: turn, Answer: "general answer"})
	snapshot := append([]Message(nil), s.Messages(ChannelAssistant)...)

	s.SwitchChannel(ChannelDocument)
	assert.Empty(t, s.Messages(ChannelDocument))
	s.Submit("doc question")

	s.SwitchChannel(ChannelAssistant)
	assert.Equal(t, snapshot, s.Messages(ChannelAssistant))
}

func TestSequencingIsPerChannel(t *testing.T) {
	s := newTestState()
	uploadDoc(t, s, "d1", "a.pdf", 1)

	docTurn, _ := s.Submit("doc")
	s.SwitchChannel(ChannelAssistant)
	aiTurn, _ := s.Submit("ai")

	require.Len(t, s.ResolveTurn(TurnResult{Turn: aiTurn, Answer: "ai answer"}), 1)
	assert.Equal(t, 1, s.Pending(ChannelDocument))
	require.Len(t, s.ResolveTurn(TurnResult{Turn: docTurn, Answer: "doc answer"}), 1)
}

func TestExpireTurnsReleasesHeldReplies(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewState(WithClock(func() time.Time { return now }), WithTurnTimeout(time.Minute))
	s.Initialize("cli-1-1")
	s.SwitchChannel(ChannelAssistant)

	first, ok := s.Submit("first")
	require.True(t, ok)
	second, ok := s.Submit("second")
	require.True(t, ok)

	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: second, Answer: "two"}))
	assert.Equal(t, 2, s.Pending(ChannelAssistant))

	now = now.Add(30 * time.Second)
	assert.Empty(t, s.ExpireTurns())
	assert.Equal(t, 2, s.Pending(ChannelAssistant))

	now = now.Add(time.Minute)
	appended := s.ExpireTurns()
	require.Len(t, appended, 2)
	assert.Equal(t, MsgNetworkError, appended[0].Text)
	assert.Equal(t, "two", appended[1].Text)
	assert.Zero(t, s.Pending(ChannelAssistant))

	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: first, Answer: "late"}))
	msgs := s.Messages(ChannelAssistant)
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"first", "second", MsgNetworkError, "two"},
		[]string{msgs[0].Text, msgs[1].Text, msgs[2].Text, msgs[3].Text})
}

func TestExpireTurnsKeepsRecentTurns(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewState(WithClock(func() time.Time { return now }), WithTurnTimeout(time.Minute))
	s.Initialize("cli-1-1")
	s.SwitchChannel(ChannelAssistant)

	first, _ := s.Submit("first")
	now = now.Add(45 * time.Second)
	second, _ := s.Submit("second")

	now = now.Add(30 * time.Second)
	appended := s.ExpireTurns()
	require.Len(t, appended, 1)
	assert.Equal(t, MsgNetworkError, appended[0].Text)
	assert.Equal(t, 1, s.Pending(ChannelAssistant))

	assert.Empty(t, s.ResolveTurn(TurnResult{Turn: first, Answer: "late"}))
	appended = s.ResolveTurn(TurnResult{Turn: second, Answer: "two"})
	require.Len(t, appended, 1)
	assert.Equal(t, "two", appended[0].Text)
}
