package render

import (
	"strings"
	"testing"
	"time"

	"github.com/chasedut/docchat/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestProjectEmptyChannels(t *testing.T) {
	s := chat.NewState(chat.WithClock(fixedClock()))
	s.Initialize("cli-1-1")

	v := Project(s, Options{})
	assert.Equal(t, chat.ChannelDocument, v.Channel)
	assert.True(t, v.Empty)
	assert.Equal(t, "Welcome to RAG AI Assistant!", v.Placeholder.Title)
	assert.False(t, v.InputEnabled)
	assert.Equal(t, "AI Document Assistant", v.Header.Title)

	s.SwitchChannel(chat.ChannelAssistant)
	v = Project(s, Options{})
	assert.True(t, v.Empty)
	assert.Equal(t, "Ask general-purpose questions.", v.Placeholder.Body)
	assert.True(t, v.InputEnabled)
	assert.Equal(t, "Ask general questions to the AI Chatbot...", v.Header.Placeholder)
}

func TestProjectMessages(t *testing.T) {
	s := chat.NewState(chat.WithClock(fixedClock()))
	s.Initialize("cli-1-1")
	require.NoError(t, s.BeginUpload(chat.File{Name: "report.pdf", Size: 10, MediaType: "application/pdf"}))
	s.CompleteUpload(chat.UploadResult{Success: true, DocID: "d1", Filename: "report.pdf", ChunksCount: 3})

	turn, ok := s.Submit("What is **this**?")
	require.True(t, ok)

	v := Project(s, Options{})
	assert.True(t, v.Typing)
	assert.True(t, v.InputEnabled)
	require.Len(t, v.Items, 3)
	assert.Equal(t, KindSystem, v.Items[0].Kind)
	assert.Equal(t, KindAssistant, v.Items[1].Kind)
	assert.Equal(t, KindUser, v.Items[2].Kind)
	assert.Equal(t, "What is **this**?", v.Items[2].Text)

	s.ResolveTurn(chat.TurnResult{Turn: turn, Answer: "## Answer\nIt is **bold**.", Chunks: []string{"a", "b"}})
	v = Project(s, Options{})
	assert.False(t, v.Typing)
	require.Len(t, v.Items, 4)
	last := v.Items[3]
	assert.Equal(t, "Answer\nIt is bold.", last.Text)
	assert.True(t, last.HasContext())
	assert.Equal(t, 3, last.Index)
	assert.True(t, fixedClock()().Equal(last.Time))
	assert.False(t, v.Items[2].HasContext())
}

func TestProjectIsRepeatable(t *testing.T) {
	s := chat.NewState(chat.WithClock(fixedClock()))
	s.Initialize("c")
	s.SwitchChannel(chat.ChannelAssistant)
	turn, _ := s.Submit("hi")
	s.ResolveTurn(chat.TurnResult{Turn: turn, Answer: "hello"})

	assert.Equal(t, Project(s, Options{}), Project(s, Options{}))
	assert.Len(t, s.Messages(chat.ChannelAssistant), 2)
}

func TestProjectCustomFormat(t *testing.T) {
	msgs := []chat.Message{
		{Role: chat.RoleUser, Text: "q"},
		{Role: chat.RoleAssistant, Text: "a"},
	}
	v := Messages(chat.ChannelAssistant, msgs, Options{Format: strings.ToUpper})
	assert.Equal(t, "q", v.Items[0].Text)
	assert.Equal(t, "A", v.Items[1].Text)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "a **b** and __c__", "a b and c"},
		{"italic", "an *emphasis* and _this_", "an emphasis and this"},
		{"header", "# Title\n### Sub\ntext", "Title\nSub\ntext"},
		{"code fence", "```go\nx := 1\n```", "x := 1"},
		{"inline code", "call `f()` now", "call f() now"},
		{"link", "see [docs](https://example.com)", "see docs"},
		{"identifiers kept", "use snake_case_name here", "use snake_case_name here"},
		{"plain", "nothing to do", "nothing to do"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkdown(tt.in))
		})
	}
}

func TestContextBlocks(t *testing.T) {
	blocks := ContextBlocks([]string{" first ", "second"})
	require.Len(t, blocks, 2)
	assert.Equal(t, ContextBlock{Title: "Chunk 1", Body: "first"}, blocks[0])
	assert.Equal(t, "Chunk 2", blocks[1].Title)
	assert.Empty(t, ContextBlocks(nil))
}

func TestFind(t *testing.T) {
	msgs := []chat.Message{
		{Role: chat.RoleUser, Text: "what is the revenue"},
		{Role: chat.RoleAssistant, Text: "Revenue grew 10%"},
		{Role: chat.RoleUser, Text: "thanks"},
	}
	got := Find(msgs, "revenue")
	require.Len(t, got, 2)
	for _, m := range got {
		assert.Contains(t, strings.ToLower(m.Message.Text), "revenue")
	}
	assert.Empty(t, Find(msgs, ""))
	assert.Empty(t, Find(msgs, "zzzz"))
}

func TestLastReply(t *testing.T) {
	_, ok := LastReply(nil)
	assert.False(t, ok)

	text, ok := LastReply([]chat.Message{
		{Role: chat.RoleAssistant, Text: "one"},
		{Role: chat.RoleAssistant, Text: "two"},
		{Role: chat.RoleUser, Text: "q"},
	})
	assert.True(t, ok)
	assert.Equal(t, "two", text)
}
