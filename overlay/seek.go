package overlay

import (
	"math"

	"github.com/readalong-cli/readalong/timeline"
	"github.com/samber/mo"
)

// Seek starts narrating at chapter time seconds. Times past the end are
// clamped to it. When no segment exposes clip bounds the last segment is
// started from its beginning.
func (e *Engine) Seek(seconds float64) {
	if !e.usable() {
		return
	}
	if len(e.segments) == 0 {
		e.notify(Info, ErrNoSegments, "")
		return
	}
	if !e.enabled {
		e.enabled = true
	}

	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if total, ok := e.duration.Get(); ok && seconds > total {
		seconds = total
	}

	index, offset, ok := timeline.Locate(e.segments, seconds)
	if ok {
		e.seekOffset = mo.Some(offset)
		e.lastPosition = mo.Some(timeline.Offset(e.segments, index) + offset)
	} else {
		index = len(e.segments) - 1
		e.seekOffset = mo.None[float64]()
		e.lastPosition = mo.None[float64]()
	}

	e.startSegment(index, true, false)
}
