package util

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
)

type InfoType int

const (
	InfoTypeInfo InfoType = iota
	InfoTypeWarn
	InfoTypeError
)

// InfoMsg is shown in the status bar until TTL elapses.
type InfoMsg struct {
	Type InfoType
	Msg  string
	TTL  time.Duration
}

type ClearStatusMsg struct{}

const defaultTTL = 5 * time.Second

func CmdHandler(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

func ReportInfo(info string) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeInfo, Msg: info, TTL: defaultTTL})
}

func ReportWarn(warn string) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeWarn, Msg: warn, TTL: defaultTTL})
}

func ReportError(err error) tea.Cmd {
	return CmdHandler(InfoMsg{Type: InfoTypeError, Msg: err.Error(), TTL: defaultTTL})
}

// ClearAfter clears the status bar once ttl elapses.
func ClearAfter(ttl time.Duration) tea.Cmd {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return tea.Tick(ttl, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
