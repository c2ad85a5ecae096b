// Package ui implements an interactive terminal browser for one user's movie catalog using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [ListView] : Browse the user's entries, filtered by watch status
//  2. [ConfirmView] : Confirm removal of the selected entry
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Catalog reads and writes run as [tea.Cmd] functions against a [catalog.Manager] so the view never blocks.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, d, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
