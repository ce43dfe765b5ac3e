package chat

import "time"

// Readiness is the server readiness reported by the status endpoint.
type Readiness int

const (
	ReadinessUnknown Readiness = iota
	ReadinessReady
	ReadinessLoading
	ReadinessOffline
)

func (r Readiness) String() string {
	switch r {
	case ReadinessReady:
		return "Models Ready"
	case ReadinessLoading:
		return "Loading Models..."
	case ReadinessOffline:
		return "API Offline"
	default:
		return "Connecting..."
	}
}

// State is the whole client-side model. It is owned by a single goroutine;
// nothing in it is safe for concurrent use.
type State struct {
	clientID    string
	initialized bool
	active      Channel
	history     History
	document    Document
	upload      Upload
	readiness   Readiness
	turns       map[Channel]*sequencer
	turnTimeout time.Duration

	now func() time.Time
}

// DefaultTurnTimeout is how long a turn may wait for its reply before
// ExpireTurns gives up on it.
const DefaultTurnTimeout = 2 * time.Minute

type Option func(*State)

// WithClock overrides the clock used to stamp messages.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// WithTurnTimeout overrides DefaultTurnTimeout. Non-positive values are
// ignored.
func WithTurnTimeout(d time.Duration) Option {
	return func(s *State) {
		if d > 0 {
			s.turnTimeout = d
		}
	}
}

// NewState returns an empty state with the document channel active.
func NewState(opts ...Option) *State {
	s := &State{
		active:  ChannelDocument,
		history: NewHistory(),
		turns: map[Channel]*sequencer{
			ChannelDocument:  newSequencer(),
			ChannelAssistant: newSequencer(),
		},
		turnTimeout: DefaultTurnTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize records the client identity and marks the state ready for input.
func (s *State) Initialize(clientID string) {
	s.clientID = clientID
	s.initialized = true
}

func (s *State) ClientID() string {
	return s.clientID
}

func (s *State) Initialized() bool {
	return s.initialized
}

// Active returns the channel currently shown.
func (s *State) Active() Channel {
	return s.active
}

// SwitchChannel makes target the active channel. Unknown channels are
// ignored. It reports whether target is valid.
func (s *State) SwitchChannel(target Channel) bool {
	if !target.Valid() {
		return false
	}
	s.active = target
	return true
}

// InputEnabled reports whether the input for channel c accepts messages.
func (s *State) InputEnabled(c Channel) bool {
	switch c {
	case ChannelDocument:
		return s.document.Present()
	case ChannelAssistant:
		return s.initialized
	}
	return false
}

// ActiveInputEnabled is InputEnabled for the active channel.
func (s *State) ActiveInputEnabled() bool {
	return s.InputEnabled(s.active)
}

// History returns a copy of every transcript.
func (s *State) History() History {
	return s.history.Clone()
}

// Messages returns the transcript of channel c. The slice must not be
// modified.
func (s *State) Messages(c Channel) []Message {
	return s.history[c]
}

// RestoreHistory replaces every transcript with h. Channels missing from h
// become empty.
func (s *State) RestoreHistory(h History) {
	s.history = h.Clone()
}

func (s *State) SetReadiness(r Readiness) {
	s.readiness = r
}

func (s *State) Readiness() Readiness {
	return s.readiness
}

func (s *State) append(c Channel, m Message) {
	s.history[c] = append(s.history[c], m)
}
