package smil

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseClock(t *testing.T) {
	Convey("ParseClock", t, func() {
		seconds := func(v string) float64 {
			return ParseClock(v).OrElse(-1)
		}

		Convey("Full and partial clock values", func() {
			So(seconds("00:01:30"), ShouldEqual, 90)
			So(seconds("1:00:00"), ShouldEqual, 3600)
			So(seconds("02:05"), ShouldEqual, 125)
			So(seconds("00:00:01.5"), ShouldAlmostEqual, 1.5)
			So(seconds("01:02.250"), ShouldAlmostEqual, 62.25)
		})

		Convey("Timecounts with units", func() {
			So(seconds("1500ms"), ShouldAlmostEqual, 1.5)
			So(seconds("2min"), ShouldEqual, 120)
			So(seconds("1.5h"), ShouldEqual, 5400)
			So(seconds("12.345s"), ShouldAlmostEqual, 12.345)
			So(seconds("3MIN"), ShouldEqual, 180)
			So(seconds("250 ms"), ShouldAlmostEqual, 0.25)
		})

		Convey("Bare numbers count seconds", func() {
			So(seconds("90"), ShouldEqual, 90)
			So(seconds("4.75"), ShouldAlmostEqual, 4.75)
		})

		Convey("Invalid input is unknown", func() {
			for _, v := range []string{"", "   ", "abc", "-5", "1:2:3:4", "a:30", "10days", "NaN", "Inf", "1e3"} {
				So(ParseClock(v).IsAbsent(), ShouldBeTrue)
			}
		})
	})
}

func TestFormatClock(t *testing.T) {
	Convey("FormatClock", t, func() {
		So(FormatClock(0), ShouldEqual, "0:00")
		So(FormatClock(90.7), ShouldEqual, "1:30")
		So(FormatClock(3725), ShouldEqual, "1:02:05")
		So(FormatClock(-3), ShouldEqual, "0:00")
	})
}
