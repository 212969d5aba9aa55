package overlay

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func twoChapters() *Book {
	return newBook([]clip{
		{fragment: "p1", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "0", end: "4"},
		{fragment: "p2", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "4", end: "8"},
		{fragment: "q1", chapter: "ch2.xhtml", src: "audio/b.mp3", begin: "0", end: "3"},
		{fragment: "q2", chapter: "ch2.xhtml", src: "audio/b.mp3", begin: "3", end: "7"},
		{fragment: "q3", chapter: "ch2.xhtml", src: "audio/b.mp3", begin: "7", end: "10"},
	}, []string{"ch1.xhtml", "ch2.xhtml"}, "audio/a.mp3", "audio/b.mp3")
}

func TestRestoreWaits(t *testing.T) {
	Convey("Given an engine whose surface is not ready", t, func() {
		h := newHarness(twoChapters())
		h.engine.SurfaceReady(false)

		saved := Progress{Enabled: true, ChapterIndex: 1, SegmentIndex: 1, Fragment: mo.Some("q2")}
		h.engine.SetPendingRestore(saved)

		Convey("The restore waits for the surface", func() {
			So(h.engine.PendingRestore().IsPresent(), ShouldBeTrue)
			So(h.engine.Enabled(), ShouldBeFalse)

			Convey("and for its chapter", func() {
				h.engine.SurfaceReady(true)
				So(h.engine.PendingRestore().IsPresent(), ShouldBeTrue)

				h.engine.LoadChapter(1)
				So(h.engine.PendingRestore().IsPresent(), ShouldBeFalse)
				So(h.engine.Chapter(), ShouldEqual, 1)
				So(h.engine.Index(), ShouldEqual, 1)
				So(h.engine.State(), ShouldEqual, Idle)
				So(h.bridge.highlights(), ShouldResemble, []string{"q2"})
				So(h.backend.events, ShouldBeEmpty)
			})
		})

		Convey("Loading the chapter first applies it once the surface is ready", func() {
			h.engine.LoadChapter(1)
			So(h.engine.PendingRestore().IsPresent(), ShouldBeTrue)

			h.engine.SurfaceReady(true)
			So(h.engine.PendingRestore().IsPresent(), ShouldBeFalse)
			So(h.engine.Index(), ShouldEqual, 1)
		})
	})
}

func TestRestoreAnchoring(t *testing.T) {
	Convey("Given a ready engine on segments [0,5), [5,12) and [12,20)", t, func() {
		h := newHarness(threeSegments())
		emitted := len(h.progress)

		Convey("The position maps to a segment and offset", func() {
			h.engine.SetPendingRestore(Progress{Enabled: true, Position: mo.Some(9.0), Fragment: mo.Some("p2")})

			So(h.engine.Index(), ShouldEqual, 1)
			So(h.engine.State(), ShouldEqual, Idle)
			So(h.engine.Snapshot().MustGet().Position.MustGet(), ShouldEqual, 9)
			So(len(h.progress), ShouldEqual, emitted)

			Convey("and Play resumes exactly there", func() {
				h.engine.Play()
				So(h.backend.current().position, ShouldEqual, 9)
			})
		})

		Convey("The fragment anchors when there is no position", func() {
			h.engine.SetPendingRestore(Progress{Enabled: true, Fragment: mo.Some("p3")})
			So(h.engine.Index(), ShouldEqual, 2)
			So(h.bridge.highlights(), ShouldResemble, []string{"p3"})
		})

		Convey("The fragment corrects a position on a segment boundary", func() {
			h.engine.SetPendingRestore(Progress{Enabled: true, Position: mo.Some(12.0), Fragment: mo.Some("p2")})
			So(h.engine.Index(), ShouldEqual, 1)
		})

		Convey("An unknown fragment falls back to the clamped raw index", func() {
			h.engine.SetPendingRestore(Progress{Enabled: true, SegmentIndex: 42, Fragment: mo.Some("gone")})
			So(h.engine.Index(), ShouldEqual, 2)

			h.engine.SetPendingRestore(Progress{Enabled: true, SegmentIndex: -4})
			So(h.engine.Index(), ShouldEqual, 0)
		})

		Convey("A disabled snapshot clears the highlight", func() {
			h.engine.SetEnabled(true)
			h.engine.SetPendingRestore(Progress{Enabled: false, SegmentIndex: 1})

			So(h.engine.State(), ShouldEqual, Disabled)
			So(h.bridge.calls[len(h.bridge.calls)-1], ShouldEqual, "clear")
		})

		Convey("Restoring stops playback without resuming it", func() {
			h.engine.Play()
			h.advanceTo(1)

			h.engine.SetPendingRestore(Progress{Enabled: true, Fragment: mo.Some("p3")})

			So(h.engine.State(), ShouldEqual, Idle)
			So(h.backend.current().closed, ShouldBeTrue)
			So(h.engine.Restoring(), ShouldBeFalse)
		})

		Convey("Progress resumes after the restore", func() {
			h.engine.SetPendingRestore(Progress{Enabled: true, Fragment: mo.Some("p1")})
			h.engine.Next()

			So(len(h.progress), ShouldEqual, emitted+1)
			So(h.progress[len(h.progress)-1].Fragment, ShouldResemble, mo.Some("p2"))
		})
	})

	Convey("A snapshot taken mid-chapter restores the same segment in a new session", t, func() {
		first := newHarness(threeSegments())
		first.engine.Play()
		first.advanceTo(0)
		first.advanceTo(5)
		first.advanceTo(9)
		first.engine.Stop()

		saved := first.engine.Snapshot().MustGet()
		So(saved.Fragment, ShouldResemble, mo.Some("p2"))

		second := newHarness(threeSegments())
		second.engine.SetPendingRestore(saved)

		So(second.engine.Index(), ShouldEqual, 1)
		So(second.engine.Snapshot().MustGet(), ShouldResemble, saved)
		So(second.backend.events, ShouldBeEmpty)
	})

	Convey("Given a paused engine whose audio stays open", t, func() {
		first := newHarness(threeSegments())
		first.engine.Play()
		first.advanceTo(1)

		Convey("Stepping back snapshots the start of the earlier segment", func() {
			first.advanceTo(6)
			first.advanceTo(10)
			first.engine.Pause()
			first.engine.Previous()

			So(first.backend.current().closed, ShouldBeFalse)
			saved := first.engine.Snapshot().MustGet()
			So(saved.SegmentIndex, ShouldEqual, 0)
			So(saved.Fragment, ShouldResemble, mo.Some("p1"))
			So(saved.Position, ShouldResemble, mo.Some(0.0))

			Convey("and stopping keeps that position", func() {
				first.engine.Stop()
				So(first.engine.Snapshot().MustGet().Position, ShouldResemble, mo.Some(0.0))
			})

			Convey("and a new session narrates that segment from its start", func() {
				second := newHarness(threeSegments())
				second.engine.SetPendingRestore(saved)
				second.engine.Play()
				second.scheduler.tick()

				So(second.backend.events, ShouldResemble, []string{
					"open OEBPS/audio/a.mp3",
					"seek OEBPS/audio/a.mp3 0",
					"play OEBPS/audio/a.mp3",
				})
				So(second.engine.Index(), ShouldEqual, 0)
				So(second.engine.State(), ShouldEqual, Playing)
			})
		})

		Convey("Stepping forward snapshots the start of the next segment", func() {
			first.engine.Pause()
			first.engine.Next()

			saved := first.engine.Snapshot().MustGet()
			So(saved.Fragment, ShouldResemble, mo.Some("p2"))
			So(saved.Position, ShouldResemble, mo.Some(5.0))

			second := newHarness(threeSegments())
			second.engine.SetPendingRestore(saved)
			second.engine.Play()
			second.scheduler.tick()

			So(second.backend.current().position, ShouldEqual, 5)
			So(second.engine.Index(), ShouldEqual, 1)
		})
	})
}
