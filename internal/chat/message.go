package chat

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single entry in a channel transcript.
type Message struct {
	Role Role
	Text string
	// Chunks are the retrieved passages backing a document answer. Nil when
	// absent, never empty.
	Chunks []string
	// Timestamp is in Unix milliseconds.
	Timestamp int64
}

// NewMessage builds a message, dropping an empty chunk list.
func NewMessage(role Role, text string, chunks []string, at time.Time) Message {
	m := Message{
		Role:      role,
		Text:      text,
		Timestamp: at.UnixMilli(),
	}
	if len(chunks) > 0 {
		m.Chunks = append([]string(nil), chunks...)
	}
	return m
}

// HasContext reports whether the message carries retrieved passages.
func (m Message) HasContext() bool {
	return len(m.Chunks) > 0
}

// Time returns the timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

// History maps each channel to its ordered transcript.
type History map[Channel][]Message

// NewHistory returns a history with an empty transcript for every channel.
func NewHistory() History {
	h := make(History, len(Channels))
	for _, c := range Channels {
		h[c] = []Message{}
	}
	return h
}

// Clone returns a deep copy of h that always has both channels present.
func (h History) Clone() History {
	out := NewHistory()
	for c, msgs := range h {
		if !c.Valid() {
			continue
		}
		cp := make([]Message, len(msgs))
		for i, m := range msgs {
			cp[i] = m
			if m.Chunks != nil {
				cp[i].Chunks = append([]string(nil), m.Chunks...)
			}
		}
		out[c] = cp
	}
	return out
}

// Len returns the total number of messages across all channels.
func (h History) Len() int {
	n := 0
	for _, msgs := range h {
		n += len(msgs)
	}
	return n
}
