package chat

import "strings"

// Channel identifies one of the two independent conversations.
type Channel string

const (
	// ChannelDocument is the document-grounded conversation.
	ChannelDocument Channel = "document"
	// ChannelAssistant is the general-purpose assistant conversation.
	ChannelAssistant Channel = "assistant"
)

// Channels lists every channel in display order.
var Channels = []Channel{ChannelDocument, ChannelAssistant}

// ParseChannel accepts both the local names and the names the server uses in
// session payloads ("pdf" and "ai").
func ParseChannel(s string) (Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "doc", "pdf":
		return ChannelDocument, true
	case "assistant", "ai":
		return ChannelAssistant, true
	}
	return "", false
}

// Valid reports whether c is one of the defined channels.
func (c Channel) Valid() bool {
	return c == ChannelDocument || c == ChannelAssistant
}

// WireName is the key the server uses for this channel in a session payload.
func (c Channel) WireName() string {
	if c == ChannelAssistant {
		return "ai"
	}
	return "pdf"
}

// Other returns the channel that is not c.
func (c Channel) Other() Channel {
	if c == ChannelDocument {
		return ChannelAssistant
	}
	return ChannelDocument
}
