// Package ui implements the terminal screens of mcontrol using bubbletea's Elm architecture.
//
//  1. [WaitModel] : shown by `mcontrol login --tui` while the loopback listener waits for the browser
//  2. [HistoryModel] : browse recorded sign-in attempts with `mcontrol history --tui`
//
// Both models implement bubbletea's Init/Update/View pattern. The wait screen receives its result through the
// [Msg] union; the blocking wait runs as a [tea.Cmd] so the spinner keeps ticking.
//
// Keyboard bindings use charmbracelet/bubbles/key with contextual help from charmbracelet/bubbles/help.
package ui
