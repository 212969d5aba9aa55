package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// seekStep is how far the seek keys move, in seconds.
const seekStep = 10

func (r *Reader) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := r.update(msg)
	return r, r.flush(cmd)
}

func (r *Reader) update(msg tea.Msg) tea.Cmd {
	if cmd := r.notifier.Update(msg); cmd != nil {
		r.pending = append(r.pending, cmd)
	}

	switch msg := msg.(type) {
	case postMsg:
		msg.fn()
		return r.waitForPost()
	case timerMsg:
		return r.fire(msg.id)
	case layoutMsg:
		r.layout(msg.chapter)
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spinnerC, cmd = r.spinnerC.Update(msg)
		return cmd
	case tea.WindowSizeMsg:
		r.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, r.keymap.forceQuit) {
			return r.quit()
		}
	}

	switch r.state {
	case chaptersState:
		return r.updateChapters(msg)
	default:
		return r.updateRead(msg)
	}
}

// quit stops narration, which records the position reached, and releases
// the audio.
func (r *Reader) quit() tea.Cmd {
	r.engine.Stop()
	r.engine.Dispose()
	return tea.Quit
}

func (r *Reader) updateRead(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(keyMsg, r.keymap.quit):
		return r.quit()
	case key.Matches(keyMsg, r.keymap.playPause):
		r.engine.Toggle()
	case key.Matches(keyMsg, r.keymap.next):
		r.engine.Next()
	case key.Matches(keyMsg, r.keymap.previous):
		r.engine.Previous()
	case key.Matches(keyMsg, r.keymap.stop):
		r.engine.Stop()
	case key.Matches(keyMsg, r.keymap.narration):
		r.engine.SetEnabled(!r.engine.Enabled())
	case key.Matches(keyMsg, r.keymap.seekForward):
		r.engine.Seek(r.status.Position + seekStep)
	case key.Matches(keyMsg, r.keymap.seekBackward):
		r.engine.Seek(r.status.Position - seekStep)
	case key.Matches(keyMsg, r.keymap.pageDown):
		r.turnPage(1)
	case key.Matches(keyMsg, r.keymap.pageUp):
		r.turnPage(-1)
	case key.Matches(keyMsg, r.keymap.nextChapter):
		if r.chapter+1 < len(r.options.Book.Chapters) {
			r.layout(r.chapter + 1)
		}
	case key.Matches(keyMsg, r.keymap.prevChapter):
		if r.chapter > 0 {
			r.layout(r.chapter - 1)
		}
	case key.Matches(keyMsg, r.keymap.chapters):
		r.chaptersC.Select(r.chapter)
		r.setState(chaptersState)
	case key.Matches(keyMsg, r.keymap.showHelp):
		r.helpC.ShowAll = !r.helpC.ShowAll
	}

	return nil
}

func (r *Reader) updateChapters(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && r.chaptersC.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, r.keymap.confirm):
			r.setState(readState)
			if item, ok := r.chaptersC.SelectedItem().(*chapterItem); ok {
				r.layout(item.chapter.Index)
			}
			return nil
		case key.Matches(msg, r.keymap.back) && r.chaptersC.FilterState() == list.Unfiltered:
			r.setState(readState)
			return nil
		case key.Matches(msg, r.keymap.quit):
			return r.quit()
		}
	}

	var cmd tea.Cmd
	r.chaptersC, cmd = r.chaptersC.Update(msg)
	return cmd
}
