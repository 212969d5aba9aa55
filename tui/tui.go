// Package tui is the terminal reader. It lays out the narrated fragments of a
// chapter page by page, answers the playback engine's bridge commands and
// runs the engine on the Bubble Tea event loop.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/samber/mo"
)

// Options encapsulates the runtime configuration for the terminal reader.
type Options struct {
	Book *overlay.Book
	// Texts returns the text of the given fragments of a chapter, keyed by
	// fragment id.
	Texts func(chapter int, fragments []string) map[string]string

	// Chapter is laid out first. Restore is applied to it once it is shown.
	Chapter int
	Restore mo.Option[overlay.Progress]

	PageSize int
	ShowHelp bool
	// Continuous moves on to the next narrated chapter when one ends.
	Continuous bool
}

// Run shows the reader until the user quits. The reader must be attached to
// an engine first.
func Run(reader *Reader) error {
	defer reader.Close()

	_, err := tea.NewProgram(reader, tea.WithAltScreen()).Run()
	return err
}
