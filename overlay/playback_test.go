package overlay

import (
	"testing"

	"github.com/readalong-cli/readalong/audio"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPlay(t *testing.T) {
	Convey("Given a disabled engine on three segments", t, func() {
		h := newHarness(threeSegments())

		Convey("Play enables, opens the resource and waits for the seek", func() {
			h.engine.Play()

			So(h.engine.State(), ShouldEqual, Playing)
			So(h.backend.events, ShouldResemble, []string{
				"open OEBPS/audio/a.mp3",
				"seek OEBPS/audio/a.mp3 0",
				"play OEBPS/audio/a.mp3",
			})
			So(h.engine.SeekPending(), ShouldBeTrue)
			So(h.scheduler.active(), ShouldEqual, 1)

			Convey("The first tick inside the clip highlights it", func() {
				h.bridge.reset()
				h.advanceTo(0.1)

				So(h.engine.SeekPending(), ShouldBeFalse)
				So(h.bridge.calls, ShouldResemble, []string{"highlight p1", "ensure p1 next"})

				Convey("Later ticks do not repeat the highlight", func() {
					h.advanceTo(0.5)
					h.advanceTo(0.9)
					So(h.bridge.count("highlight p1"), ShouldEqual, 1)
				})
			})

			Convey("Playing again while playing changes nothing", func() {
				events := len(h.backend.events)
				h.engine.Play()
				So(len(h.backend.events), ShouldEqual, events)
			})
		})

		Convey("Play starts at the first visible segment when the current one is off the page", func() {
			h.bridge.visible = map[string]bool{"p2": true, "p3": true}
			h.engine.Play()

			So(h.engine.Index(), ShouldEqual, 1)
			So(h.backend.current().position, ShouldEqual, 5)
		})

		Convey("Play keeps the current segment when the surface cannot tell", func() {
			h.engine.Play()
			So(h.engine.Index(), ShouldEqual, 0)
		})
	})
}

func TestPauseAndResume(t *testing.T) {
	Convey("Given a playing engine", t, func() {
		h := newHarness(threeSegments())
		h.engine.Play()
		h.advanceTo(3)

		Convey("Pause keeps the audio open and stops the timer", func() {
			h.engine.Pause()

			So(h.engine.State(), ShouldEqual, Idle)
			So(h.backend.current().closed, ShouldBeFalse)
			So(h.backend.current().playing, ShouldBeFalse)
			So(h.scheduler.active(), ShouldEqual, 0)

			Convey("Play continues from the same point without seeking", func() {
				seeks := h.backend.count("seek")
				h.engine.Play()

				So(h.engine.State(), ShouldEqual, Playing)
				So(h.backend.count("seek"), ShouldEqual, seeks)
				So(h.backend.count("open"), ShouldEqual, 1)
				So(h.backend.current().position, ShouldEqual, 3)
			})

			Convey("Toggle resumes", func() {
				h.engine.Toggle()
				So(h.engine.State(), ShouldEqual, Playing)

				h.engine.Toggle()
				So(h.engine.State(), ShouldEqual, Idle)
			})
		})
	})
}

func TestAutoAdvance(t *testing.T) {
	Convey("Given a playing engine", t, func() {
		h := newHarness(threeSegments())
		h.engine.Play()
		h.advanceTo(0)

		Convey("Crossing the clip end starts the next segment on the same resource", func() {
			h.bridge.reset()
			h.advanceTo(5)

			So(h.engine.Index(), ShouldEqual, 1)
			So(h.backend.count("open"), ShouldEqual, 1)
			So(h.backend.count("seek"), ShouldEqual, 1)
			So(h.bridge.highlights(), ShouldResemble, []string{"p2"})
			So(h.bridge.count("nextPage"), ShouldEqual, 0)
		})

		Convey("The page turns first when the segment was the last one visible", func() {
			h.bridge.visible = map[string]bool{"p1": true}
			h.bridge.reset()
			h.advanceTo(5.1)

			So(h.bridge.calls, ShouldResemble, []string{"nextPage", "highlight p2", "ensure p2 next"})
		})

		Convey("The page stays when more visible segments follow", func() {
			h.bridge.visible = map[string]bool{"p1": true, "p2": true}
			h.advanceTo(5)
			So(h.bridge.count("nextPage"), ShouldEqual, 0)
		})

		Convey("The end of the last clip finishes the chapter", func() {
			h.advanceTo(5)
			h.advanceTo(12)
			h.advanceTo(20)

			So(h.engine.State(), ShouldEqual, Idle)
			So(h.notified(ErrEndOfContent), ShouldEqual, 1)
			So(h.bridge.calls[len(h.bridge.calls)-1], ShouldEqual, "clear")
			So(h.scheduler.active(), ShouldEqual, 0)
		})

		Convey("The audio ending advances as well", func() {
			h.backend.current().ended()
			So(h.engine.Index(), ShouldEqual, 1)

			Convey("but an ended signal of a closed stream is ignored", func() {
				stale := h.backend.current().ended
				h.engine.Stop()
				h.engine.Play()
				index := h.engine.Index()

				stale()
				So(h.engine.Index(), ShouldEqual, index)
			})
		})
	})

	Convey("An ended signal carries the generation of the stream that ended", t, func() {
		backend := &fakeBackend{failing: map[string]bool{}}
		player := audio.NewService(backend)
		// another owner reopens the audio before the engine hears of the end
		player.OnEnded(func(uint64) { player.Open("OEBPS/audio/a.mp3", nil) })

		engine := New(threeSegments(), player, &fakeBridge{}, newManualScheduler(), Options{})
		engine.SurfaceReady(true)
		engine.Play()

		backend.current().ended()

		So(player.IsOpen(), ShouldBeTrue)
		So(engine.Index(), ShouldEqual, 0)
		So(engine.State(), ShouldEqual, Playing)
	})

	Convey("Missing clip ends are inferred from the next clip on the same resource", t, func() {
		h := newHarness(newBook([]clip{
			{fragment: "p1", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "0"},
			{fragment: "p2", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "4", end: "9"},
		}, []string{"ch1.xhtml"}, "audio/a.mp3"))

		h.engine.Play()
		h.advanceTo(3.9)
		So(h.engine.Index(), ShouldEqual, 0)

		h.advanceTo(4)
		So(h.engine.Index(), ShouldEqual, 1)
	})
}

func TestNextPrevious(t *testing.T) {
	Convey("Given an enabled idle engine", t, func() {
		h := newHarness(threeSegments())
		h.engine.SetEnabled(true)
		h.bridge.reset()

		Convey("Next and Previous only move the highlight", func() {
			h.engine.Next()
			So(h.engine.Index(), ShouldEqual, 1)
			So(h.bridge.calls, ShouldResemble, []string{"highlight p2", "ensure p2 next"})

			h.engine.Previous()
			So(h.engine.Index(), ShouldEqual, 0)
			So(h.bridge.calls[2:], ShouldResemble, []string{"highlight p1", "ensure p1 previous"})

			So(h.backend.events, ShouldBeEmpty)
		})

		Convey("Previous at the first segment notifies and stays", func() {
			h.engine.Previous()

			So(h.notified(ErrFirstSegment), ShouldEqual, 1)
			So(h.engine.Index(), ShouldEqual, 0)
			So(h.bridge.calls, ShouldBeEmpty)
		})

		Convey("Next from the last segment ends the chapter without wrapping", func() {
			h.engine.Next()
			h.engine.Next()
			So(h.engine.Index(), ShouldEqual, 2)

			So(h.engine.Next, ShouldNotPanic)
			So(h.engine.Index(), ShouldEqual, 2)
			So(h.notified(ErrEndOfContent), ShouldEqual, 1)
		})

		Convey("Next moves the snapshot position to the segment start", func() {
			h.engine.Next()
			So(h.engine.Snapshot().MustGet().Position.MustGet(), ShouldEqual, 5)
		})
	})

	Convey("Given a playing engine", t, func() {
		h := newHarness(threeSegments())
		h.engine.Play()
		h.advanceTo(1)

		Convey("Next seeks to the following clip without reopening", func() {
			h.engine.Next()

			So(h.engine.Index(), ShouldEqual, 1)
			So(h.backend.current().position, ShouldEqual, 5)
			So(h.backend.count("open"), ShouldEqual, 1)
			So(h.engine.State(), ShouldEqual, Playing)
		})

		Convey("Previous pages backwards once the seek lands", func() {
			h.engine.Next()
			h.advanceTo(5)
			h.bridge.reset()

			h.engine.Previous()
			So(h.backend.current().position, ShouldEqual, 0)

			h.advanceTo(0)
			So(h.bridge.calls, ShouldResemble, []string{"highlight p1", "ensure p1 previous"})
		})
	})
}

func TestResources(t *testing.T) {
	twoResources := func() *Book {
		return newBook([]clip{
			{fragment: "p1", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "0", end: "5"},
			{fragment: "p2", chapter: "ch1.xhtml", src: "audio/b.mp3", begin: "0", end: "6"},
		}, []string{"ch1.xhtml"}, "audio/a.mp3", "audio/b.mp3")
	}

	Convey("Starting a segment on another resource closes the old session before opening", t, func() {
		h := newHarness(twoResources())
		h.engine.Play()
		h.advanceTo(1)
		h.backend.events = nil

		h.engine.Next()

		So(h.backend.events, ShouldResemble, []string{
			"close OEBPS/audio/a.mp3",
			"open OEBPS/audio/b.mp3",
			"seek OEBPS/audio/b.mp3 0",
			"play OEBPS/audio/b.mp3",
		})
	})

	Convey("A segment without audio is skipped once", t, func() {
		h := newHarness(newBook([]clip{
			{fragment: "p1", chapter: "ch1.xhtml", src: "audio/missing.mp3", begin: "0", end: "5"},
			{fragment: "p2", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "5", end: "9"},
		}, []string{"ch1.xhtml"}, "audio/a.mp3"))

		So(h.engine.Play, ShouldNotPanic)

		So(h.notified(ErrResourceMissing), ShouldEqual, 1)
		So(h.engine.Index(), ShouldEqual, 1)
		So(h.engine.State(), ShouldEqual, Playing)
		So(h.backend.count("open"), ShouldEqual, 1)
	})

	Convey("A backend failure aborts the start", t, func() {
		h := newHarness(twoResources())
		h.backend.failing["OEBPS/audio/a.mp3"] = true

		h.engine.Play()

		So(h.notified(ErrBackend), ShouldEqual, 1)
		So(h.notifications[0].Kind, ShouldEqual, Error)
		So(h.engine.State(), ShouldEqual, Idle)
		So(h.engine.Index(), ShouldEqual, 0)
		So(h.scheduler.active(), ShouldEqual, 0)
	})

	Convey("A failed open keeps the segment and clip that were playing", t, func() {
		h := newHarness(twoResources())
		h.engine.Play()
		h.advanceTo(1)
		h.backend.failing["OEBPS/audio/b.mp3"] = true

		h.engine.StartSegment(1, false, false)

		So(h.notified(ErrBackend), ShouldEqual, 1)
		So(h.engine.State(), ShouldEqual, Idle)
		So(h.engine.Index(), ShouldEqual, 0)
		So(h.engine.clipBegin, ShouldEqual, 0)
		So(h.engine.clipEnd, ShouldResemble, mo.Some(5.0))
	})
}

func TestTickThrottle(t *testing.T) {
	Convey("UI state is pushed at most once per second while playing", t, func() {
		h := newHarness(threeSegments())
		h.engine.Play()
		h.advanceTo(1.0)
		h.bridge.reset()

		h.advanceTo(1.2)
		h.advanceTo(1.5)
		h.advanceTo(1.9)
		So(h.bridge.states, ShouldBeEmpty)

		h.advanceTo(2.1)
		So(len(h.bridge.states), ShouldEqual, 1)
		So(h.bridge.lastState().Position, ShouldAlmostEqual, 2.1)
	})
}
