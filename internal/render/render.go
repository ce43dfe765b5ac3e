// Package render projects chat state into what the interface shows. Nothing
// here mutates state, so a view can be rebuilt from state at any time.
package render

import (
	"time"

	"github.com/chasedut/docchat/internal/chat"
)

// Header is the banner above a channel's conversation.
type Header struct {
	Title       string
	Subtitle    string
	Placeholder string
}

var headers = map[chat.Channel]Header{
	chat.ChannelDocument: {
		Title:       "AI Document Assistant",
		Subtitle:    "Ask questions about your uploaded PDF document",
		Placeholder: "Ask a question about your document...",
	},
	chat.ChannelAssistant: {
		Title:       "AI Chatbot",
		Subtitle:    "General-purpose assistant",
		Placeholder: "Ask general questions to the AI Chatbot...",
	},
}

func HeaderFor(c chat.Channel) Header {
	return headers[c]
}

// Placeholder is shown instead of messages when a channel has none.
type Placeholder struct {
	Title string
	Body  string
}

var placeholders = map[chat.Channel]Placeholder{
	chat.ChannelDocument: {
		Title: "Welcome to RAG AI Assistant!",
		Body:  "Upload a PDF document to get started. Once uploaded, you can ask any questions about the document content.",
	},
	chat.ChannelAssistant: {
		Title: "AI Chatbot",
		Body:  "Ask general-purpose questions.",
	},
}

func PlaceholderFor(c chat.Channel) Placeholder {
	return placeholders[c]
}

type Kind int

const (
	KindUser Kind = iota
	KindAssistant
	KindSystem
)

func kindOf(r chat.Role) Kind {
	switch r {
	case chat.RoleUser:
		return KindUser
	case chat.RoleSystem:
		return KindSystem
	default:
		return KindAssistant
	}
}

// Item is one rendered message.
type Item struct {
	// Index is the message position in the channel history.
	Index int
	Kind  Kind
	Text  string
	Time  time.Time
	// Chunks backs the "View Context" control. Empty means no control.
	Chunks []string
}

// HasContext reports whether the item offers a "View Context" control.
func (i Item) HasContext() bool {
	return len(i.Chunks) > 0
}

// View is the full projection of one channel.
type View struct {
	Channel      chat.Channel
	Header       Header
	Empty        bool
	Placeholder  Placeholder
	Items        []Item
	InputEnabled bool
	Typing       bool

	Document  chat.Document
	Upload    chat.Upload
	Readiness chat.Readiness
}

// Options control how message text is turned into display text.
type Options struct {
	// Format is applied to assistant and system text. User text is always
	// shown as typed. Nil means StripMarkdown.
	Format func(string) string
}

// Project builds the view of the active channel.
func Project(s *chat.State, opts Options) View {
	return ProjectChannel(s, s.Active(), opts)
}

// ProjectChannel builds the view of channel c.
func ProjectChannel(s *chat.State, c chat.Channel, opts Options) View {
	v := Messages(c, s.Messages(c), opts)
	v.InputEnabled = s.InputEnabled(c)
	v.Typing = s.Pending(c) > 0
	v.Document = s.Document()
	v.Upload = s.Upload()
	v.Readiness = s.Readiness()
	return v
}

// Messages projects a message list on its own. Input and upload fields are
// left at their zero values.
func Messages(c chat.Channel, msgs []chat.Message, opts Options) View {
	format := opts.Format
	if format == nil {
		format = StripMarkdown
	}

	v := View{
		Channel: c,
		Header:  HeaderFor(c),
	}
	if len(msgs) == 0 {
		v.Empty = true
		v.Placeholder = PlaceholderFor(c)
		return v
	}

	v.Items = make([]Item, 0, len(msgs))
	for i, m := range msgs {
		item := Item{
			Index: i,
			Kind:  kindOf(m.Role),
			Text:  m.Text,
			Time:  m.Time(),
		}
		if item.Kind != KindUser {
			item.Text = format(m.Text)
		}
		if m.HasContext() {
			item.Chunks = append([]string(nil), m.Chunks...)
		}
		v.Items = append(v.Items, item)
	}
	return v
}

// LastReply returns the raw text of the most recent assistant message.
func LastReply(msgs []chat.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleAssistant {
			return msgs[i].Text, true
		}
	}
	return "", false
}
