package overlay

import (
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/mo"
)

// SetPendingRestore stores a position to return to. It is applied as soon as
// the surface is ready and its chapter is loaded; until then it waits for
// LoadChapter or SurfaceReady. Restoring never starts playback.
func (e *Engine) SetPendingRestore(p Progress) {
	if !e.usable() {
		return
	}

	e.pendingRestore = mo.Some(p)
	e.ApplyPendingRestore()
}

// PendingRestore returns the stored position not yet applied.
func (e *Engine) PendingRestore() mo.Option[Progress] {
	return e.pendingRestore
}

// ApplyPendingRestore applies the stored position if the surface is ready
// and the position belongs to the loaded chapter. It reports whether it did.
func (e *Engine) ApplyPendingRestore() bool {
	p, ok := e.pendingRestore.Get()
	if !ok || e.disposed || !e.surfaceReady || p.ChapterIndex != e.chapter {
		return false
	}

	e.pendingRestore = mo.None[Progress]()
	e.restoring = true
	defer func() { e.restoring = false }()

	e.enabled = p.Enabled
	e.stopSession()

	if len(e.segments) > 0 {
		index, offset := e.anchor(p)
		e.index = index
		e.seekOffset = offset
		if start, ok := e.startOf(index).Get(); ok {
			e.lastPosition = mo.Some(start + offset.OrElse(0))
		} else {
			e.lastPosition = mo.None[float64]()
		}
	}

	if e.enabled && len(e.segments) > 0 {
		e.highlight(bridge.Forward)
	} else {
		e.clearHighlight()
	}
	e.pushState()

	e.lastProgress = e.Snapshot()
	log.With(log.Fields{"book": e.book.ID, "chapter": e.chapter, "segment": e.index}).Infof("restored position")
	return true
}

// anchor maps a stored position onto the loaded segments. The chapter time
// wins when it can be mapped; the fragment corrects it when the time lands
// on a neighbouring segment. Otherwise the fragment, then the raw index, is
// used.
func (e *Engine) anchor(p Progress) (int, mo.Option[float64]) {
	fragmentIndex, hasFragment := -1, false
	if fragment, ok := p.Fragment.Get(); ok {
		fragmentIndex, hasFragment = timeline.IndexOfFragment(e.segments, fragment)
	}

	if position, ok := p.Position.Get(); ok {
		if total, ok := e.duration.Get(); ok && position > total {
			position = total
		}
		if index, offset, ok := timeline.Locate(e.segments, position); ok {
			if !hasFragment || fragmentIndex == index {
				return index, mo.Some(offset)
			}

			start := timeline.Offset(e.segments, fragmentIndex)
			length := e.segments[fragmentIndex].Length().OrElse(0)
			if position >= start && position <= start+length {
				return fragmentIndex, mo.Some(position - start)
			}
			return fragmentIndex, mo.None[float64]()
		}
	}

	if hasFragment {
		return fragmentIndex, mo.None[float64]()
	}
	return util.Clamp(p.SegmentIndex, 0, len(e.segments)-1), mo.None[float64]()
}
