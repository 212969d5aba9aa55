package overlay

import (
	"math"

	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/mo"
)

// Progress is the restorable reading position. Position is measured on the
// chapter timeline, the sum of the clip lengths before the point.
type Progress struct {
	Enabled      bool               `json:"enabled"`
	ChapterIndex int                `json:"chapterIndex"`
	SegmentIndex int                `json:"segmentIndex"`
	Position     mo.Option[float64] `json:"positionSeconds"`
	Fragment     mo.Option[string]  `json:"fragmentId"`
}

// Snapshot returns the current position, or None when the book has no
// narration.
func (e *Engine) Snapshot() mo.Option[Progress] {
	if !e.book.Supported() {
		return mo.None[Progress]()
	}

	p := Progress{
		Enabled:      e.enabled,
		ChapterIndex: e.chapter,
		SegmentIndex: e.clampedIndex(),
		Position:     e.position(),
		Fragment:     mo.None[string](),
	}
	if len(e.segments) > 0 {
		p.Fragment = mo.Some(e.segments[p.SegmentIndex].Fragment)
	}
	return mo.Some(p)
}

// OnProgress registers fn to receive snapshots whenever they change. It is
// not called while a restored position is being applied.
func (e *Engine) OnProgress(fn func(Progress)) {
	e.progressListeners = append(e.progressListeners, fn)
}

func (e *Engine) emitProgress() {
	if e.restoring {
		return
	}

	p, ok := e.Snapshot().Get()
	if !ok {
		return
	}
	if last, ok := e.lastProgress.Get(); ok && last == p {
		return
	}

	e.lastProgress = mo.Some(p)
	for _, fn := range e.progressListeners {
		fn(p)
	}
}

func (e *Engine) clampedIndex() int {
	if len(e.segments) == 0 {
		return 0
	}
	return util.Clamp(e.index, 0, len(e.segments)-1)
}

// position is the live chapter time when the open audio is inside the
// current clip, otherwise the last known one.
func (e *Engine) position() mo.Option[float64] {
	if live, ok := e.livePosition(); ok {
		return mo.Some(live)
	}
	return e.lastPosition
}

func (e *Engine) livePosition() (float64, bool) {
	if len(e.segments) == 0 || e.seekPending || !e.player.IsOpen() || e.duration.IsAbsent() {
		return 0, false
	}

	seg := e.segments[e.clampedIndex()]
	if !e.isOpen(seg) {
		return 0, false
	}

	pos := e.player.Position()
	if math.IsNaN(pos) {
		return 0, false
	}

	begin := seg.Audio().ClipBegin.OrElse(0)
	if pos < begin-seekTolerance {
		return 0, false
	}
	// a playing clip may overshoot its end until the next tick advances it
	if end, ok := e.inferClipEnd(e.clampedIndex()).Get(); ok && pos >= end && (!e.playing || pos >= end+seekTolerance) {
		return 0, false
	}

	intra := math.Max(0, pos-begin)
	if length, ok := seg.Length().Get(); ok {
		intra = math.Min(intra, length)
	}
	return timeline.Offset(e.segments, e.clampedIndex()) + intra, true
}

// isOpen reports whether the open audio session plays seg's resource.
func (e *Engine) isOpen(seg timeline.Segment) bool {
	resource, ok := e.book.Resources.Lookup(seg.Audio().Src)
	return ok && e.player.IsOpen() && audio.Normalize(e.player.ID()) == audio.Normalize(resource.Path)
}

// startOf returns the chapter time of segment i, when it is meaningful.
func (e *Engine) startOf(i int) mo.Option[float64] {
	if e.duration.IsAbsent() {
		return mo.None[float64]()
	}
	return mo.Some(timeline.Offset(e.segments, i))
}
