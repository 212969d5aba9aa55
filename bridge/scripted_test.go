package bridge

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type recordingSurface struct {
	scripts []string
	reply   string
	err     error
}

func (r *recordingSurface) Evaluate(script string) (string, error) {
	r.scripts = append(r.scripts, script)
	return r.reply, r.err
}

func (r *recordingSurface) last() Command {
	cmd, err := DecodeCommand(r.scripts[len(r.scripts)-1])
	So(err, ShouldBeNil)
	return cmd
}

func TestScripted(t *testing.T) {
	Convey("Given a scripted bridge", t, func() {
		surface := &recordingSurface{}
		b := NewScripted(surface)

		Convey("Highlight serializes its arguments", func() {
			b.Highlight("p1", "active", "playing")

			cmd := surface.last()
			So(cmd.Op, ShouldEqual, OpHighlight)

			var args HighlightArgs
			So(cmd.Decode(&args), ShouldBeNil)
			So(args, ShouldResemble, HighlightArgs{Fragment: "p1", ActiveClass: "active", PlayingClass: "playing"})
		})

		Convey("EnsureVisible carries the direction hint", func() {
			b.EnsureVisible("p2", Backward)

			var args EnsureVisibleArgs
			So(surface.last().Decode(&args), ShouldBeNil)
			So(args.Direction, ShouldEqual, Backward)
		})

		Convey("NextPage has no arguments", func() {
			b.NextPage()
			So(surface.scripts[0], ShouldEqual, `{"op":"nextPage"}`)
		})

		Convey("PushState sends the state verbatim", func() {
			b.PushState(State{Enabled: true, Playing: true, SegmentIndex: 2, SegmentCount: 5, ChapterTitle: "One", Duration: 20, Position: 9})

			var state State
			So(surface.last().Decode(&state), ShouldBeNil)
			So(state.SegmentCount, ShouldEqual, 5)
			So(state.Position, ShouldEqual, 9)
		})

		Convey("VisiblePosition", func() {
			Convey("Parses a well-formed reply", func() {
				surface.reply = `{"index":2,"count":3}`
				pos, ok := b.VisiblePosition("p3", []string{"p1", "p2", "p3"})

				So(ok, ShouldBeTrue)
				So(pos, ShouldResemble, Position{Index: 2, Count: 3})
				So(pos.Last(), ShouldBeTrue)

				var args QueryPositionArgs
				So(surface.last().Decode(&args), ShouldBeNil)
				So(args.All, ShouldResemble, []string{"p1", "p2", "p3"})
			})

			Convey("Treats malformed replies as no information", func() {
				for _, reply := range []string{"", "null", "garbage", `{"index":1}`, `{"index":"x","count":2}`, `{"index":0,"count":-1}`} {
					surface.reply = reply
					_, ok := b.VisiblePosition("p1", []string{"p1"})
					So(ok, ShouldBeFalse)
				}
			})

			Convey("Treats surface failures as no information", func() {
				surface.reply = `{"index":0,"count":1}`
				surface.err = errors.New("surface gone")

				_, ok := b.VisiblePosition("p1", []string{"p1"})
				So(ok, ShouldBeFalse)
			})
		})

		Convey("Fire-and-forget calls swallow surface failures", func() {
			surface.err = errors.New("surface gone")
			So(func() {
				b.Highlight("p1", "a", "b")
				b.ClearHighlight("a", "b")
				b.NextPage()
			}, ShouldNotPanic)
			So(len(surface.scripts), ShouldEqual, 3)
		})
	})
}

func TestParseReply(t *testing.T) {
	Convey("ParseReply", t, func() {
		Convey("Accepts one level of string quoting", func() {
			pos, err := ParseReply(`"{\"index\":-1,\"count\":4}"`)
			So(err, ShouldBeNil)
			So(pos, ShouldResemble, Position{Index: -1, Count: 4})
			So(pos.Visible(), ShouldBeFalse)
		})

		Convey("Reports an empty reply", func() {
			_, err := ParseReply("  ")
			So(errors.Is(err, ErrNoReply), ShouldBeTrue)
		})
	})
}

func TestSurfaceFunc(t *testing.T) {
	Convey("SurfaceFunc adapts a function", t, func() {
		var got string
		b := NewScripted(SurfaceFunc(func(script string) (string, error) {
			got = script
			return "", nil
		}))

		b.ClearHighlight("a", "b")
		So(got, ShouldEqual, `{"op":"clearHighlight","args":{"activeClass":"a","playingClass":"b"}}`)
	})
}
