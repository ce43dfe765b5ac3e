package render

import (
	"github.com/chasedut/docchat/internal/chat"
	"github.com/sahilm/fuzzy"
)

// Match is a message that matched a search.
type Match struct {
	Index   int
	Message chat.Message
	// Positions are the byte offsets of matched characters in the text.
	Positions []int
	Score     int
}

// Find fuzzy-matches pattern against the texts of msgs, best match first.
func Find(msgs []chat.Message, pattern string) []Match {
	if pattern == "" || len(msgs) == 0 {
		return nil
	}
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}

	found := fuzzy.Find(pattern, texts)
	out := make([]Match, 0, len(found))
	for _, f := range found {
		out = append(out, Match{
			Index:     f.Index,
			Message:   msgs[f.Index],
			Positions: f.MatchedIndexes,
			Score:     f.Score,
		})
	}
	return out
}
