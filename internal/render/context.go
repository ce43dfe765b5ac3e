package render

import (
	"fmt"
	"strings"
)

// ContextBlock is one retrieved chunk in the context detail view.
type ContextBlock struct {
	Title string
	Body  string
}

// ContextBlocks numbers chunks from 1 in the order given.
func ContextBlocks(chunks []string) []ContextBlock {
	blocks := make([]ContextBlock, 0, len(chunks))
	for i, c := range chunks {
		blocks = append(blocks, ContextBlock{
			Title: fmt.Sprintf("Chunk %d", i+1),
			Body:  strings.TrimSpace(c),
		})
	}
	return blocks
}
