package ui

import (
	tea "github.com/charmbracelet/bubbletea"
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
	MsgCallbackReceived MsgKind = iota
	MsgBrowserOpened
)

type callbackResult struct {
	code string
	err  error
}

// callbackMsg is the constructor for [MsgCallbackReceived]
func callbackMsg(code string, err error) Msg {
	return Msg{kind: MsgCallbackReceived, data: callbackResult{code: code, err: err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}
