package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/readalong-cli/readalong/color"
	"github.com/readalong-cli/readalong/style"
)

// readerKeymap defines the keyboard interactions available within each reader state.
type readerKeymap struct {
	state state

	quit, forceQuit,
	confirm, back,
	up, down, top, bottom, filter,
	playPause, next, previous, stop, narration,
	seekForward, seekBackward,
	pageDown, pageUp,
	chapters, nextChapter, prevChapter,
	showHelp key.Binding
}

func (k *readerKeymap) setState(newState state) {
	k.state = newState
}

func newReaderKeymap() *readerKeymap {
	return &readerKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "top"),
		),
		bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		next: key.NewBinding(
			key.WithKeys("n", "right", "l"),
			key.WithHelp("n", "next"),
		),
		previous: key.NewBinding(
			key.WithKeys("p", "left", "h"),
			key.WithHelp("p", "previous"),
		),
		stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		narration: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "narration on/off"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("f", "shift+right"),
			key.WithHelp("f", "+10s"),
		),
		seekBackward: key.NewBinding(
			key.WithKeys("b", "shift+left"),
			key.WithHelp("b", "-10s"),
		),
		pageDown: key.NewBinding(
			key.WithKeys("pgdown", "J"),
			key.WithHelp("pgdn", "next page"),
		),
		pageUp: key.NewBinding(
			key.WithKeys("pgup", "K"),
			key.WithHelp("pgup", "previous page"),
		),
		chapters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chapters"),
		),
		nextChapter: key.NewBinding(
			key.WithKeys("N", "]"),
			key.WithHelp("]", "next chapter"),
		),
		prevChapter: key.NewBinding(
			key.WithKeys("P", "["),
			key.WithHelp("[", "previous chapter"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *readerKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case readState:
		return h(k.playPause, k.next, k.previous, k.chapters, k.showHelp, k.quit),
			h(k.playPause, k.next, k.previous, k.stop, k.narration,
				k.seekForward, k.seekBackward, k.pageDown, k.pageUp,
				k.chapters, k.nextChapter, k.prevChapter, k.showHelp, k.quit)
	case chaptersState:
		return h(k.confirm, k.back), h(k.confirm, k.filter, k.back, k.forceQuit)
	default:
		return h(), h()
	}
}

func (k *readerKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *readerKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *readerKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.pageDown,
		PrevPage:             k.pageUp,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		Filter:               k.filter,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}
