package console

import (
	"bytes"
	"testing"

	"github.com/readalong-cli/readalong/bridge"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSurface(t *testing.T) {
	Convey("Given a console surface behind a scripted bridge", t, func() {
		var out bytes.Buffer
		surface := New(&out, 40)
		surface.SetChapter("Chapter One", map[string]string{
			"s1": "The first sentence.",
			"s2": "The second sentence is a good deal longer and has to wrap across lines.",
		})
		b := bridge.NewScripted(surface)

		Convey("Highlighting prints the fragment text once", func() {
			out.Reset()
			b.Highlight("s1", "a", "p")
			b.Highlight("s1", "a", "p")

			So(out.String(), ShouldEqual, "  The first sentence.\n")
		})

		Convey("Long fragments are wrapped", func() {
			out.Reset()
			b.Highlight("s2", "a", "p")
			So(bytes.Count(out.Bytes(), []byte("\n")), ShouldBeGreaterThan, 1)
		})

		Convey("Every fragment is visible", func() {
			pos, ok := b.VisiblePosition("s2", []string{"s1", "s2"})
			So(ok, ShouldBeTrue)
			So(pos, ShouldResemble, bridge.Position{Index: 1, Count: 2})
		})

		Convey("State changes are reported on transitions only", func() {
			out.Reset()
			b.PushState(bridge.State{Enabled: true, Playing: true, SegmentIndex: 0, SegmentCount: 2, Duration: 20})
			b.PushState(bridge.State{Enabled: true, Playing: true, SegmentIndex: 0, SegmentCount: 2, Position: 3, Duration: 20})

			So(out.String(), ShouldContainSubstring, "1/2")
			So(bytes.Count(out.Bytes(), []byte("\n")), ShouldEqual, 1)
		})

		Convey("Malformed commands are rejected", func() {
			_, err := surface.Evaluate("{")
			So(err, ShouldNotBeNil)
		})
	})
}
