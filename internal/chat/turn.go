package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Turn is one submitted user message awaiting its reply.
type Turn struct {
	ID      string
	Channel Channel
	Seq     uint64
	Text    string
	// DocID is the document the question is about. Empty on the assistant
	// channel.
	DocID string
	// Local turns were answered without a network call.
	Local bool
}

// TurnResult is the outcome of dispatching a turn.
type TurnResult struct {
	Turn   Turn
	Answer string
	Chunks []string
	// Failed is set on application or transport failure.
	Failed bool
	// Reason is the server-provided failure reason.
	Reason string
	// Network is set when the request itself failed.
	Network bool
}

// Reply returns the assistant message text for the result.
func (r TurnResult) Reply() string {
	switch {
	case r.Network:
		return MsgNetworkError
	case r.Failed:
		return ErrorText(r.Reason)
	}
	return r.Answer
}

// Submit appends text as a user message on the active channel and returns the
// turn to dispatch. Blank text is a no-op and returns false.
//
// A document-channel turn with no uploaded document is answered locally right
// away; the returned turn has Local set and must not be dispatched.
func (s *State) Submit(text string) (Turn, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, false
	}
	c := s.active
	s.append(c, NewMessage(RoleUser, text, nil, s.now()))

	turn := Turn{
		ID:      uuid.NewString(),
		Channel: c,
		Seq:     s.turns[c].issue(s.now()),
		Text:    text,
	}
	if c == ChannelDocument {
		if !s.document.Present() {
			turn.Local = true
			s.ResolveTurn(TurnResult{Turn: turn, Answer: MsgUploadFirst})
			return turn, true
		}
		turn.DocID = s.document.DocID
	}
	return turn, true
}

// ResolveTurn records the outcome of a turn. Replies are appended strictly in
// submission order per channel: a result that arrives ahead of an earlier
// outstanding turn is held until that turn resolves. It returns the messages
// appended by this call, which may be none or several.
func (s *State) ResolveTurn(res TurnResult) []Message {
	c := res.Turn.Channel
	seq, ok := s.turns[c]
	if !ok {
		return nil
	}
	return s.appendReplies(c, seq.resolve(res))
}

// ExpireTurns gives up on every turn that has waited longer than the turn
// timeout. Each one is answered with the network error message, which also
// releases any replies held behind it. A reply that arrives later for an
// expired turn is dropped.
func (s *State) ExpireTurns() []Message {
	cutoff := s.now().Add(-s.turnTimeout)
	var appended []Message
	for _, c := range Channels {
		appended = append(appended, s.appendReplies(c, s.turns[c].expire(c, cutoff))...)
	}
	return appended
}

func (s *State) appendReplies(c Channel, results []TurnResult) []Message {
	var appended []Message
	for _, r := range results {
		var chunks []string
		if c == ChannelDocument && !r.Failed {
			chunks = r.Chunks
		}
		m := NewMessage(RoleAssistant, r.Reply(), chunks, s.now())
		s.append(c, m)
		appended = append(appended, m)
	}
	return appended
}

// Pending reports how many turns on channel c have no reply appended yet.
// The typing placeholder is shown while this is non-zero.
func (s *State) Pending(c Channel) int {
	seq, ok := s.turns[c]
	if !ok {
		return 0
	}
	return seq.pending()
}

// sequencer hands out per-channel sequence numbers and releases results in
// that order.
type sequencer struct {
	next    uint64
	applied uint64
	held    map[uint64]TurnResult
	issued  map[uint64]time.Time
}

func newSequencer() *sequencer {
	return &sequencer{
		next:    1,
		applied: 1,
		held:    make(map[uint64]TurnResult),
		issued:  make(map[uint64]time.Time),
	}
}

func (q *sequencer) issue(at time.Time) uint64 {
	n := q.next
	q.next++
	q.issued[n] = at
	return n
}

func (q *sequencer) pending() int {
	return int(q.next - q.applied)
}

// resolve stores r and returns every result that is now releasable, in order.
// Results for unknown or already released sequence numbers are dropped.
func (q *sequencer) resolve(r TurnResult) []TurnResult {
	n := r.Turn.Seq
	if n < q.applied || n >= q.next {
		return nil
	}
	if _, dup := q.held[n]; dup {
		return nil
	}
	q.held[n] = r
	delete(q.issued, n)
	return q.release()
}

// expire fails every outstanding turn issued before cutoff and returns what
// that releases.
func (q *sequencer) expire(c Channel, cutoff time.Time) []TurnResult {
	expired := false
	for n, at := range q.issued {
		if !at.Before(cutoff) {
			continue
		}
		q.held[n] = TurnResult{
			Turn:    Turn{Channel: c, Seq: n},
			Failed:  true,
			Network: true,
		}
		delete(q.issued, n)
		expired = true
	}
	if !expired {
		return nil
	}
	return q.release()
}

func (q *sequencer) release() []TurnResult {
	var out []TurnResult
	for {
		next, ok := q.held[q.applied]
		if !ok {
			break
		}
		delete(q.held, q.applied)
		q.applied++
		out = append(out, next)
	}
	return out
}
