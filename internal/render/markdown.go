package render

import (
	"regexp"
	"strings"
)

var (
	reCodeFence  = regexp.MustCompile("(?s)```[^\\n]*\\n?(.*?)```")
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reBold       = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	reItalic     = regexp.MustCompile(`\*([^*\n]+)\*|\b_([^_\n]+)_\b`)
	reHeader     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
)

// StripMarkdown removes common markdown markup and keeps the text it wraps.
// Code blocks keep their body; links keep their label.
func StripMarkdown(s string) string {
	s = reCodeFence.ReplaceAllString(s, "$1")
	s = reInlineCode.ReplaceAllString(s, "$1")
	s = reBold.ReplaceAllString(s, "$1$2")
	s = reItalic.ReplaceAllString(s, "$1$2")
	s = reHeader.ReplaceAllString(s, "")
	s = reLink.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
