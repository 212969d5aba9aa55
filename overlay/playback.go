package overlay

import (
	"math"

	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/samber/mo"
)

// Play starts narrating, enabling narration first when needed. It starts at
// the current segment when that is on the visible page, otherwise at the
// first visible segment.
func (e *Engine) Play() {
	if !e.usable() {
		return
	}
	if !e.enabled {
		e.SetEnabled(true)
	}
	if len(e.segments) == 0 {
		e.notify(Info, ErrNoSegments, "")
		return
	}
	if e.playing && e.player.IsPlaying() {
		return
	}

	start := e.startIndex()
	e.startSegment(start, e.seekOffset.IsPresent(), false)
}

func (e *Engine) startIndex() int {
	current := e.clampedIndex()
	if !e.surfaceReady {
		return current
	}

	fragments := timeline.Fragments(e.segments)
	position, ok := e.bridge.VisiblePosition(fragments[current], fragments)
	if !ok || position.Visible() {
		return current
	}

	for i, fragment := range fragments {
		if i == current {
			continue
		}
		if position, ok := e.bridge.VisiblePosition(fragment, fragments); ok && position.Visible() {
			e.seekOffset = mo.None[float64]()
			return i
		}
	}

	return current
}

// Pause suspends playback and keeps the audio open, so that Play continues
// from the same point.
func (e *Engine) Pause() {
	if !e.usable() || !e.playing {
		return
	}

	e.cancelTimer()
	if live, ok := e.livePosition(); ok {
		e.lastPosition = mo.Some(live)
	}
	e.player.Pause()
	e.playing = false

	e.pushState()
	e.emitProgress()
}

// Toggle pauses while playing and plays otherwise.
func (e *Engine) Toggle() {
	if e.playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// StartSegment starts narrating segment i. forceSeek moves the audio to the
// clip begin even when it is already positioned inside the clip, and
// preferPreviousPage hints the surface to page backwards.
func (e *Engine) StartSegment(i int, forceSeek, preferPreviousPage bool) {
	if !e.usable() {
		return
	}
	if i < 0 || i >= len(e.segments) {
		log.With(log.Fields{"book": e.book.ID, "chapter": e.chapter}).Warnf("segment %d out of range", i)
		return
	}
	if !e.enabled {
		e.enabled = true
	}

	e.startSegment(i, forceSeek, preferPreviousPage)
}

func (e *Engine) startSegment(i int, forceSeek, preferPreviousPage bool) {
	e.playing = true

	seg := e.segments[i]
	clip := seg.Audio()

	resource, ok := e.book.Resources.Lookup(clip.Src)
	if !ok {
		e.index = i
		e.notify(Warning, ErrResourceMissing, "no audio for %s, skipping", clip.Src)
		e.Next()
		return
	}

	// committed only once the audio is open
	begin, end := clip.ClipBegin.OrElse(0), e.inferClipEnd(i)

	if !e.isOpen(seg) {
		e.cancelTimer()
		if !e.player.Open(resource.Path, resource.Data) {
			e.playing = false
			e.seekPending = false
			e.notify(Error, ErrBackend, "could not open %s", resource.Path)
			e.pushState()
			return
		}
		forceSeek = true
	}
	e.index = i
	e.clipBegin = begin
	e.clipEnd = end

	if target, ok := e.seekTarget(forceSeek).Get(); ok {
		e.player.Seek(target)
		e.seekPending = true
		e.seekTo = target
		// highlight again once the seek lands
		e.highlighted = ""
	} else {
		e.seekPending = false
	}
	e.seekOffset = mo.None[float64]()

	if !e.player.IsPlaying() {
		e.player.Play()
	}
	e.startTimer()

	e.direction = bridge.Forward
	if preferPreviousPage {
		e.direction = bridge.Backward
	}
	if !e.seekPending {
		e.highlight(e.direction)
	}

	e.pushState()
	e.emitProgress()
}

// inferClipEnd returns the clip end of segment i. A missing end is taken
// from the next segment's begin when both play the same resource.
func (e *Engine) inferClipEnd(i int) mo.Option[float64] {
	clip := e.segments[i].Audio()
	if clip.ClipEnd.IsPresent() || i+1 >= len(e.segments) {
		return clip.ClipEnd
	}

	next := e.segments[i+1].Audio()
	if audio.Normalize(next.Src) != audio.Normalize(clip.Src) {
		return clip.ClipEnd
	}

	begin := clip.ClipBegin.OrElse(0)
	if nextBegin, ok := next.ClipBegin.Get(); ok && nextBegin > begin {
		return mo.Some(nextBegin)
	}
	return clip.ClipEnd
}

// seekTarget decides where the audio must jump to before narrating the
// current clip. None leaves it where it is.
func (e *Engine) seekTarget(force bool) mo.Option[float64] {
	if offset, ok := e.seekOffset.Get(); ok {
		return mo.Some(e.clipBegin + offset)
	}
	if force {
		return mo.Some(e.clipBegin)
	}

	pos := e.player.Position()
	if math.IsNaN(pos) || pos < e.clipBegin-seekTolerance {
		return mo.Some(e.clipBegin)
	}
	if end, ok := e.clipEnd.Get(); ok && pos >= end {
		return mo.Some(e.clipBegin)
	}
	return mo.None[float64]()
}

// Next moves to the following segment, finishing the chapter after the last.
func (e *Engine) Next() {
	if !e.usable() {
		return
	}
	if len(e.segments) == 0 {
		e.notify(Info, ErrNoSegments, "")
		return
	}
	if e.index >= len(e.segments)-1 {
		e.finishDocument()
		return
	}

	e.index++
	e.seekOffset = mo.None[float64]()
	e.lastPosition = e.startOf(e.index)

	if e.playing {
		e.startSegment(e.index, true, false)
		return
	}

	if e.enabled {
		e.highlight(bridge.Forward)
	}
	e.pushState()
	e.emitProgress()
}

// Previous moves to the preceding segment.
func (e *Engine) Previous() {
	if !e.usable() {
		return
	}
	if len(e.segments) == 0 {
		e.notify(Info, ErrNoSegments, "")
		return
	}
	if e.index <= 0 {
		e.index = 0
		e.notify(Info, ErrFirstSegment, "")
		return
	}

	e.index--
	e.seekOffset = mo.None[float64]()
	e.lastPosition = e.startOf(e.index)

	if e.playing {
		e.startSegment(e.index, true, true)
		return
	}

	if e.enabled {
		e.highlight(bridge.Backward)
	}
	e.pushState()
	e.emitProgress()
}

// Stop ends playback, closes the audio and clears the highlight. Calling it
// repeatedly has the same effect as calling it once.
func (e *Engine) Stop() {
	if !e.usable() {
		return
	}

	e.stopSession()
	e.clearHighlight()
	e.pushState()
	e.emitProgress()
}

// stopSession closes the audio without touching the surface. The position
// reached is kept for snapshots.
func (e *Engine) stopSession() {
	e.cancelTimer()
	if live, ok := e.livePosition(); ok {
		e.lastPosition = mo.Some(live)
	}

	e.player.Close()
	e.playing = false
	e.seekPending = false
}

func (e *Engine) finishDocument() {
	e.Stop()
	e.notify(Info, ErrEndOfContent, "")
}

func (e *Engine) startTimer() {
	if e.stopTimer != nil {
		return
	}
	e.stopTimer = e.scheduler.Every(e.tickInterval, e.tick)
}

func (e *Engine) cancelTimer() {
	if e.stopTimer != nil {
		e.stopTimer()
		e.stopTimer = nil
	}
}

// tick follows the audio through the current clip.
func (e *Engine) tick() {
	if e.disposed || e.stopTimer == nil || !e.player.IsOpen() || len(e.segments) == 0 {
		return
	}

	pos := e.player.Position()
	if math.IsNaN(pos) {
		return
	}

	end, bounded := e.clipEnd.Get()
	if e.seekPending {
		landed := pos >= e.clipBegin-seekTolerance && (!bounded || pos < end || math.Abs(pos-e.seekTo) <= seekTolerance)
		if !landed {
			return
		}
		e.seekPending = false
	}

	if e.highlighted != e.segments[e.clampedIndex()].Fragment {
		e.highlight(e.direction)
		e.direction = bridge.Forward
	}

	if second := int(e.position().OrElse(0)); second != e.lastPushed {
		e.pushState()
		e.emitProgress()
	}

	if bounded && pos >= end {
		e.autoAdvance()
	}
}

// ended handles the audio reaching the end of its resource.
func (e *Engine) ended(generation uint64) {
	if e.disposed || !e.playing || e.player.Generation() != generation {
		return
	}
	e.autoAdvance()
}

// autoAdvance moves on to the next segment once the current clip is over,
// turning the page first when the current fragment was the last visible one.
func (e *Engine) autoAdvance() {
	if e.index >= len(e.segments)-1 {
		e.finishDocument()
		return
	}

	if e.surfaceReady {
		fragments := timeline.Fragments(e.segments)
		if position, ok := e.bridge.VisiblePosition(fragments[e.index], fragments); ok && position.Last() {
			e.bridge.NextPage()
		}
	}

	e.startSegment(e.index+1, false, false)
}
