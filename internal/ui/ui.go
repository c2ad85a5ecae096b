package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/movieweb/internal/catalog"
	"github.com/desertthunder/movieweb/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	ConfirmView
)

// statusFilters is the cycle order for the tab key; "" shows every entry.
var statusFilters = append([]models.WatchStatus{""}, models.WatchStatuses...)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	catalog *catalog.Manager
	logger  *log.Logger
	userID  int64
	user    *models.User
	view    ViewState
	filter  int
	width   int
	height  int
	list    list.Model
	pending *models.UserMovieEntry
	notice  string
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a TUI model browsing the catalog of userID. A nil logger discards output.
func NewModel(ctx context.Context, c *catalog.Manager, userID int64, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowHelp(false)

	return &Model{
		ctx:     ctx,
		catalog: c,
		logger:  logger,
		userID:  userID,
		view:    ListView,
		list:    l,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Status returns the active status filter, "" meaning all entries.
func (m *Model) Status() models.WatchStatus {
	return statusFilters[m.filter]
}

// Err returns the error that ended the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Init loads the user and their catalog.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchUser(), m.fetchEntries())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgUserLoaded:
		data := msg.data.(userLoaded)
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		m.user = data.user
		m.list.Title = m.title()

	case MsgEntriesLoaded:
		data := msg.data.(entriesLoaded)
		if data.status != m.Status() {
			return m, nil
		}
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		cmd := m.list.SetItems(entryItems(data.entries))
		m.list.Title = m.title()
		return m, cmd

	case MsgEntryRemoved:
		data := msg.data.(entryRemoved)
		if data.err != nil {
			m.logger.Warn("failed to remove entry", "user", m.userID, "movie", data.entry.MovieID, "error", data.err)
			m.notice = styles.err.Render(fmt.Sprintf("Could not remove %s: %v", data.entry.Name, data.err))
		} else {
			m.notice = styles.ok.Render(fmt.Sprintf("Removed %s", data.entry.Name))
		}
		return m, m.fetchEntries()
	}
	return m, nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.filter):
		m.filter = (m.filter + 1) % len(statusFilters)
		m.notice = ""
		m.list.Title = m.title()
		return m, m.fetchEntries()
	case key.Matches(msg, m.keys.refresh):
		m.notice = ""
		return m, m.fetchEntries()
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.list.SelectedItem().(entryItem); ok {
			entry := item.entry
			m.pending = &entry
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		entry := *m.pending
		m.pending = nil
		m.view = ListView
		return m, m.removeEntry(entry)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.pending = nil
		m.view = ListView
	}
	return m, nil
}

func (m *Model) fetchUser() tea.Cmd {
	return func() tea.Msg {
		user, err := m.catalog.GetUser(m.ctx, m.userID)
		return userLoadedMsg(user, err)
	}
}

func (m *Model) fetchEntries() tea.Cmd {
	status := m.Status()
	return func() tea.Msg {
		var (
			entries []models.UserMovieEntry
			err     error
		)
		if status == "" {
			entries, err = m.catalog.ListUserMovies(m.ctx, m.userID)
		} else {
			entries, err = m.catalog.ListUserMoviesByStatus(m.ctx, m.userID, status)
		}
		return entriesLoadedMsg(status, entries, err)
	}
}

func (m *Model) removeEntry(entry models.UserMovieEntry) tea.Cmd {
	return func() tea.Msg {
		err := m.catalog.RemoveAssociation(m.ctx, m.userID, entry.MovieID)
		return entryRemovedMsg(entry, err)
	}
}

func (m *Model) title() string {
	name := fmt.Sprintf("User %d", m.userID)
	if m.user != nil {
		name = m.user.UserName
	}

	filter := "all"
	if s := m.Status(); s != "" {
		filter = s.String()
	}
	return fmt.Sprintf("%s's Movies (%s)", name, filter)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ListView:
		return m.renderList()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.filter, m.keys.remove, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.notice == "" {
		return fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.list.View(), m.notice, helpView)
}

func (m *Model) renderConfirm() string {
	if m.pending == nil {
		return ""
	}

	title := styles.title.Render(fmt.Sprintf("Remove '%s' from your catalog?", m.pending.Name))
	info := styles.help.Render("The movie stays available to other users.")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
