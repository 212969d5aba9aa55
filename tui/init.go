package tui

import tea "github.com/charmbracelet/bubbletea"

// layoutMsg lays out chapter.
type layoutMsg struct {
	chapter int
}

// Init lays out the first chapter and starts listening for posted functions.
func (r *Reader) Init() tea.Cmd {
	chapter := r.options.Chapter
	if p, ok := r.options.Restore.Get(); ok {
		chapter = p.ChapterIndex
	}

	return tea.Batch(
		r.waitForPost(),
		r.spinnerC.Tick,
		func() tea.Msg { return layoutMsg{chapter: chapter} },
	)
}
