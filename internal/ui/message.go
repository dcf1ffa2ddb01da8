package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplaying/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFrame MsgKind = iota
	MsgProgressUpdate
	MsgUpdatesClosed
)

// frameMsg is the constructor for [MsgFrame]
func frameMsg(t time.Time) Msg {
	return Msg{kind: MsgFrame, data: t}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

func updatesClosedMsg() Msg {
	return Msg{kind: MsgUpdatesClosed}
}
