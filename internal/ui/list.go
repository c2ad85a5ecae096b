package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/movieweb/internal/models"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.UserMovieEntry] to implement [list.Item].
type entryItem struct {
	entry models.UserMovieEntry
}

func (i entryItem) FilterValue() string { return i.entry.Name }
func (i entryItem) Title() string       { return i.entry.Name }
func (i entryItem) Description() string {
	desc := "no status"
	if i.entry.Status != "" {
		desc = styles.status(i.entry.Status).Render(i.entry.Status.String())
	}
	if i.entry.Rating != nil {
		desc = fmt.Sprintf("%s • rated %d", desc, *i.entry.Rating)
	}
	return desc
}

func entryItems(entries []models.UserMovieEntry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	return items
}
