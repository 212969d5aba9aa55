package overlay

import (
	"time"

	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/constant"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	// DefaultTickInterval is how often the open clip is checked for its end.
	DefaultTickInterval = 120 * time.Millisecond

	// seekTolerance is how far before a clip begin the audio may report
	// itself and still count as inside the clip.
	seekTolerance = 0.25
)

// Options tune an Engine. Zero values select the defaults.
type Options struct {
	// ActiveClass and PlayingClass are used when the book does not declare
	// its own highlight classes.
	ActiveClass  string
	PlayingClass string
	TickInterval time.Duration
}

// Engine is the narration state machine of one opened book.
//
// Engine is not safe for concurrent use: every method must be called on the
// owner context of its Scheduler.
type Engine struct {
	book      *Book
	player    *audio.Service
	bridge    bridge.Bridge
	scheduler Scheduler

	activeClass  string
	playingClass string
	tickInterval time.Duration

	enabled      bool
	playing      bool
	surfaceReady bool
	disposed     bool

	chapter  int
	segments []timeline.Segment
	index    int
	duration mo.Option[float64]

	clipBegin float64
	clipEnd   mo.Option[float64]

	seekOffset     mo.Option[float64]
	lastPosition   mo.Option[float64]
	seekPending    bool
	seekTo         float64
	restoring      bool
	pendingRestore mo.Option[Progress]

	stopTimer   func()
	highlighted string
	// direction is the paging hint for the highlight deferred by a seek.
	direction  bridge.Direction
	lastPushed int

	lastProgress      mo.Option[Progress]
	progressListeners []func(Progress)
	notifyListeners   []func(Notification)
}

// New creates an engine for book. It starts disabled on the first chapter;
// call LoadChapter to pick another one.
func New(book *Book, player *audio.Service, surface bridge.Bridge, scheduler Scheduler, options Options) *Engine {
	if book == nil {
		book = &Book{}
	}

	e := &Engine{
		book:      book,
		player:    player,
		bridge:    surface,
		scheduler: scheduler,
		activeClass: book.Metadata.ActiveClass.OrElse(
			lo.CoalesceOrEmpty(options.ActiveClass, constant.DefaultActiveClass),
		),
		playingClass: book.Metadata.PlayingClass.OrElse(
			lo.CoalesceOrEmpty(options.PlayingClass, constant.DefaultPlayingClass),
		),
		tickInterval: lo.Ternary(options.TickInterval > 0, options.TickInterval, DefaultTickInterval),
		lastPushed:   -1,
		direction:    bridge.Forward,
	}

	player.OnEnded(func(generation uint64) {
		scheduler.Post(func() { e.ended(generation) })
	})

	if book.Supported() && len(book.Chapters) > 0 {
		e.loadSegments(0)
	}

	return e
}

// State is the externally visible phase of the engine.
type State int

const (
	Unsupported State = iota
	Disabled
	Idle
	Playing
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	default:
		return "unsupported"
	}
}

func (e *Engine) State() State {
	switch {
	case !e.book.Supported() || e.disposed:
		return Unsupported
	case !e.enabled:
		return Disabled
	case e.playing:
		return Playing
	default:
		return Idle
	}
}

// SeekPending reports whether the engine waits for the audio to reach the
// clip it seeked to.
func (e *Engine) SeekPending() bool { return e.seekPending }

// Restoring reports whether a restored position is being applied.
func (e *Engine) Restoring() bool { return e.restoring }

// Enabled reports whether narration is switched on.
func (e *Engine) Enabled() bool { return e.enabled }

// Chapter returns the index of the loaded chapter.
func (e *Engine) Chapter() int { return e.chapter }

// Index returns the index of the current segment.
func (e *Engine) Index() int { return e.clampedIndex() }

// Segments returns the segments of the loaded chapter.
func (e *Engine) Segments() []timeline.Segment { return e.segments }

// Duration returns the narration length of the loaded chapter.
func (e *Engine) Duration() mo.Option[float64] { return e.duration }

// Classes returns the active and playing highlight classes in use.
func (e *Engine) Classes() (active, playing string) {
	return e.activeClass, e.playingClass
}

// usable guards public operations: a disposed engine ignores calls silently,
// a book without narration answers with a notification.
func (e *Engine) usable() bool {
	if e.disposed {
		return false
	}
	if !e.book.Supported() {
		e.notify(Info, ErrUnsupported, "")
		return false
	}
	return true
}

// SetEnabled switches narration on or off.
func (e *Engine) SetEnabled(enabled bool) {
	if !e.usable() || e.enabled == enabled {
		return
	}

	e.enabled = enabled
	if !enabled {
		e.Stop()
		return
	}

	if len(e.segments) == 0 {
		e.notify(Info, ErrNoSegments, "")
	} else if e.surfaceReady {
		e.highlight(bridge.Forward)
	}

	e.pushState()
	e.emitProgress()
}

// LoadChapter stops playback and switches to chapter i. A pending restore for
// that chapter is applied right away when the surface is ready.
func (e *Engine) LoadChapter(i int) {
	if !e.usable() {
		return
	}
	if i < 0 || i >= len(e.book.Chapters) {
		log.With(log.Fields{"book": e.book.ID}).Warnf("chapter %d out of range", i)
		return
	}

	e.stopSession()
	if e.highlighted != "" {
		e.bridge.ClearHighlight(e.activeClass, e.playingClass)
	}
	e.loadSegments(i)

	if e.ApplyPendingRestore() {
		return
	}

	if e.enabled && e.surfaceReady && len(e.segments) > 0 {
		e.highlight(bridge.Forward)
	}
	e.pushState()
	e.emitProgress()
}

func (e *Engine) loadSegments(i int) {
	e.chapter = i
	e.segments = e.book.Segments(i)
	e.duration = timeline.CalculateDuration(e.segments)
	e.index = 0
	e.seekOffset = mo.None[float64]()
	e.lastPosition = mo.None[float64]()
	e.highlighted = ""
	e.lastPushed = -1

	log.With(log.Fields{"book": e.book.ID, "chapter": i}).Debugf("loaded %d segments", len(e.segments))
}

// SurfaceReady tells the engine whether the rendering surface has the
// current chapter laid out and can answer visibility queries.
func (e *Engine) SurfaceReady(ready bool) {
	if e.disposed {
		return
	}

	e.surfaceReady = ready
	if !ready || !e.book.Supported() {
		return
	}

	if e.ApplyPendingRestore() {
		return
	}

	if e.enabled && len(e.segments) > 0 {
		e.highlight(bridge.Forward)
	}
	e.pushState()
}

// Dispose stops everything and releases the audio backend. The engine
// ignores every call afterwards.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}

	e.stopSession()
	if e.highlighted != "" {
		e.bridge.ClearHighlight(e.activeClass, e.playingClass)
		e.highlighted = ""
	}
	e.player.Dispose()

	e.disposed = true
	e.pendingRestore = mo.None[Progress]()
	e.progressListeners = nil
	e.notifyListeners = nil
}

func (e *Engine) highlight(direction bridge.Direction) {
	if len(e.segments) == 0 {
		return
	}

	fragment := e.segments[e.clampedIndex()].Fragment
	e.bridge.Highlight(fragment, e.activeClass, e.playingClass)
	e.bridge.EnsureVisible(fragment, direction)
	e.highlighted = fragment
}

func (e *Engine) clearHighlight() {
	e.bridge.ClearHighlight(e.activeClass, e.playingClass)
	e.highlighted = ""
}

func (e *Engine) pushState() {
	position := e.position().OrElse(0)
	e.lastPushed = int(position)

	e.bridge.PushState(bridge.State{
		Enabled:      e.enabled,
		Playing:      e.playing,
		SegmentIndex: e.clampedIndex(),
		SegmentCount: len(e.segments),
		ChapterTitle: e.chapterTitle(),
		Duration:     e.duration.OrElse(0),
		Position:     position,
	})
}

func (e *Engine) chapterTitle() string {
	if e.chapter < 0 || e.chapter >= len(e.book.Chapters) {
		return ""
	}
	return e.book.Chapters[e.chapter].Title
}
