package api

import (
	"math"

	"github.com/chasedut/docchat/internal/chat"
)

type StatusResponse struct {
	Status       string `json:"status"`
	ModelsLoaded bool   `json:"models_loaded"`
}

// Readiness maps the status payload to the readiness indicator.
func (s StatusResponse) Readiness() chat.Readiness {
	if s.Status == "online" && s.ModelsLoaded {
		return chat.ReadinessReady
	}
	return chat.ReadinessLoading
}

type SessionMessage struct {
	Role   string   `json:"role"`
	Text   string   `json:"text"`
	Time   float64  `json:"time,omitempty"`
	DocID  string   `json:"doc_id,omitempty"`
	Chunks []string `json:"chunks,omitempty"`
}

// Session is keyed by the server's channel names ("pdf", "ai").
type Session map[string][]SessionMessage

type SessionResponse struct {
	Success bool    `json:"success"`
	Session Session `json:"session,omitempty"`
	Error   string  `json:"error,omitempty"`
}

type UploadResponse struct {
	Success     bool   `json:"success"`
	DocID       string `json:"doc_id,omitempty"`
	Filename    string `json:"filename,omitempty"`
	ChunksCount int    `json:"chunks_count,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

type ChatRequest struct {
	Message  string `json:"message"`
	DocID    string `json:"doc_id"`
	ClientID string `json:"client_id"`
}

type AIChatRequest struct {
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

type ChatResponse struct {
	Success        bool     `json:"success"`
	Answer         string   `json:"answer,omitempty"`
	RelevantChunks []string `json:"relevant_chunks,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// History converts the wire session into a local history. Only the server's
// channel keys ("pdf" and "ai") are read; other keys and unknown roles are
// skipped.
func (s Session) History() chat.History {
	h := chat.NewHistory()
	for _, c := range chat.Channels {
		for _, m := range s[c.WireName()] {
			role, ok := parseRole(m.Role)
			if !ok {
				continue
			}
			msg := chat.Message{
				Role:      role,
				Text:      m.Text,
				Timestamp: toMillis(m.Time),
			}
			if len(m.Chunks) > 0 {
				msg.Chunks = append([]string(nil), m.Chunks...)
			}
			h[c] = append(h[c], msg)
		}
	}
	return h
}

func parseRole(s string) (chat.Role, bool) {
	switch chat.Role(s) {
	case chat.RoleUser, chat.RoleAssistant, chat.RoleSystem:
		return chat.Role(s), true
	}
	return "", false
}

// toMillis accepts both float seconds (what the server stores) and
// milliseconds (what browser clients store).
func toMillis(t float64) int64 {
	if t <= 0 {
		return 0
	}
	if t > 1e11 {
		return int64(t)
	}
	return int64(math.Round(t * 1000))
}
