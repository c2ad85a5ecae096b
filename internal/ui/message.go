package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/movieweb/internal/models"
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
	MsgUserLoaded MsgKind = iota
	MsgEntriesLoaded
	MsgEntryRemoved
)

type userLoaded struct {
	user *models.User
	err  error
}

type entriesLoaded struct {
	status  models.WatchStatus
	entries []models.UserMovieEntry
	err     error
}

type entryRemoved struct {
	entry models.UserMovieEntry
	err   error
}

// userLoadedMsg is the constructor for [MsgUserLoaded]
func userLoadedMsg(user *models.User, err error) Msg {
	return Msg{kind: MsgUserLoaded, data: userLoaded{user, err}}
}

// entriesLoadedMsg is the constructor for [MsgEntriesLoaded]
func entriesLoadedMsg(status models.WatchStatus, entries []models.UserMovieEntry, err error) Msg {
	return Msg{kind: MsgEntriesLoaded, data: entriesLoaded{status, entries, err}}
}

// entryRemovedMsg is the constructor for [MsgEntryRemoved]
func entryRemovedMsg(entry models.UserMovieEntry, err error) Msg {
	return Msg{kind: MsgEntryRemoved, data: entryRemoved{entry, err}}
}
