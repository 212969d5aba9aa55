package tui

import (
	"errors"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/internal/ui"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/lo"
)

const defaultPageSize = 8

// Reader is the Bubble Tea model of the terminal reader. It is the engine's
// rendering surface (bridge.Surface) and its owner context
// (overlay.Scheduler).
type Reader struct {
	state  state
	keymap *readerKeymap

	helpC     help.Model
	spinnerC  spinner.Model
	progressC progress.Model
	chaptersC list.Model

	engine  *overlay.Engine
	options Options

	// the laid out chapter
	chapter   int
	fragments []string
	texts     map[string]string
	top       int
	active    string
	status    bridge.State
	restored  bool

	posts     chan func()
	done      chan struct{}
	closeOnce sync.Once
	timers    map[int]timer
	nextTimer int
	// commands raised while a message is handled, flushed by Update
	pending []tea.Cmd

	width, height int
	notifier      *ui.Model
}

// New creates a reader. Attach an engine before running it.
func New(options Options) *Reader {
	if options.Book == nil {
		options.Book = &overlay.Book{}
	}
	if options.PageSize <= 0 {
		options.PageSize = defaultPageSize
	}

	reader := &Reader{
		state:    readState,
		keymap:   newReaderKeymap(),
		options:  options,
		chapter:  options.Chapter,
		posts:    make(chan func(), 16),
		done:     make(chan struct{}),
		timers:   make(map[int]timer),
		notifier: &ui.Model{},
	}

	reader.helpC = help.New()

	reader.spinnerC = spinner.New()
	reader.spinnerC.Spinner = spinner.Dot
	reader.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	reader.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	reader.chaptersC = list.New(reader.chapterItems(), delegate, 0, 0)
	reader.chaptersC.Title = "Chapters"
	reader.chaptersC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.Peach).Padding(0, 1)
	reader.chaptersC.KeyMap = reader.keymap.forList()
	reader.chaptersC.AdditionalShortHelpKeys = func() []bubblesKey.Binding {
		return []bubblesKey.Binding{reader.keymap.confirm, reader.keymap.back}
	}
	reader.chaptersC.SetStatusBarItemName("chapter", "chapters")
	reader.chaptersC.SetShowPagination(false)

	if w, h, err := util.TerminalSize(); err == nil {
		reader.resize(w, h)
	}

	return reader
}

// Attach binds the engine the reader renders for. The engine must have been
// created with this reader as its surface and scheduler.
func (r *Reader) Attach(engine *overlay.Engine) {
	r.engine = engine
	engine.OnNotify(r.notify)
}

// Close releases goroutines waiting on the reader. Functions posted
// afterwards are dropped.
func (r *Reader) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Reader) setState(s state) {
	r.state = s
	r.keymap.setState(s)
}

// resize propagates terminal dimension changes to all child component models.
func (r *Reader) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	r.width = width - x
	r.height = height - y

	r.chaptersC.SetSize(width-xx, height-yy)
	r.chaptersC.Help.Width = width - xx
	r.helpC.Width = r.width
	r.progressC.Width = util.Clamp(r.width-30, 10, 60)
}

// layout shows chapter. The surface is reported unready while the fragments
// are replaced, so that the engine only highlights what is laid out.
func (r *Reader) layout(chapter int) {
	r.engine.SurfaceReady(false)
	r.engine.LoadChapter(chapter)

	r.chapter = r.engine.Chapter()
	r.fragments = timeline.Fragments(r.engine.Segments())
	r.texts = nil
	if r.options.Texts != nil && len(r.fragments) > 0 {
		r.texts = r.options.Texts(r.chapter, r.fragments)
	}
	r.top = 0
	r.active = ""

	if !r.restored {
		r.restored = true
		if p, ok := r.options.Restore.Get(); ok {
			r.engine.SetPendingRestore(p)
		}
	}

	r.engine.SurfaceReady(true)
	r.chaptersC.SetItems(r.chapterItems())
}

// nextNarrated returns the first narrated chapter after the current one.
func (r *Reader) nextNarrated() (int, bool) {
	return lo.Find(r.options.Book.Narrated(), func(i int) bool {
		return i > r.chapter
	})
}

func (r *Reader) notify(n overlay.Notification) {
	color := style.Subtext
	switch n.Kind {
	case overlay.Warning:
		color = style.WarningColor
	case overlay.Error:
		color = style.ErrorColor
	}
	r.pending = append(r.pending, r.notifier.Show(ui.NotificationMsg{Text: n.Message, Color: color}))

	if r.options.Continuous && errors.Is(n, overlay.ErrEndOfContent) {
		if next, ok := r.nextNarrated(); ok {
			// outside of the engine call that raised n
			r.Post(func() {
				r.layout(next)
				r.engine.Play()
			})
		}
	}
}

// flush batches cmd with the commands raised while handling a message.
func (r *Reader) flush(cmd tea.Cmd) tea.Cmd {
	cmds := append(r.pending, cmd)
	r.pending = nil
	return tea.Batch(cmds...)
}
