package query

import (
	"errors"
	"testing"

	"github.com/readalong-cli/readalong/overlay"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestChapter(t *testing.T) {
	Convey("Given a table of contents", t, func() {
		chapters := lo.Map([]string{"Prologue", "The Storm", "Stormy Night", "Epilogue"}, func(title string, i int) overlay.Chapter {
			return overlay.Chapter{Index: i, Title: title}
		})

		Convey("Numbers count from one", func() {
			i, err := Chapter(chapters, "2")
			So(err, ShouldBeNil)
			So(i, ShouldEqual, 1)
		})

		Convey("Numbers outside the book fail", func() {
			_, err := Chapter(chapters, "0")
			So(err, ShouldNotBeNil)
			_, err = Chapter(chapters, "9")
			So(err, ShouldNotBeNil)
		})

		Convey("Titles match fuzzily and case-insensitively", func() {
			i, err := Chapter(chapters, "prolog")
			So(err, ShouldBeNil)
			So(i, ShouldEqual, 0)

			i, err = Chapter(chapters, "NIGHT")
			So(err, ShouldBeNil)
			So(i, ShouldEqual, 2)
		})

		Convey("The closest of several matches wins", func() {
			i, err := Chapter(chapters, "storm")
			So(err, ShouldBeNil)
			So(i, ShouldEqual, 1)
		})

		Convey("No match suggests the closest title", func() {
			_, err := Chapter(chapters, "zzz")
			So(errors.Is(err, ErrNoMatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `did you mean "Prologue"`)
		})

		Convey("An empty query fails", func() {
			_, err := Chapter(chapters, "  ")
			So(errors.Is(err, ErrNoMatch), ShouldBeTrue)
		})
	})
}

func TestSuggest(t *testing.T) {
	Convey("Suggest picks the nearest candidate", t, func() {
		So(Suggest("tick_intervl", []string{"overlay.tick_interval", "tick_interval"}).MustGet(), ShouldEqual, "tick_interval")
		So(Suggest("x", nil).IsAbsent(), ShouldBeTrue)
	})
}
