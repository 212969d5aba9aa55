package timeline

import (
	"testing"

	"github.com/readalong-cli/readalong/smil"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func par(id, text string, audio mo.Option[smil.AudioRef]) *smil.Parallel {
	p := &smil.Parallel{ID: id, Text: mo.None[smil.TextRef](), Audio: audio}
	if text != "" {
		p.Text = mo.Some(smil.SplitRef(text))
	}
	return p
}

func clip(begin, end mo.Option[float64]) mo.Option[smil.AudioRef] {
	return mo.Some(smil.AudioRef{Src: "audio/book.mp3", ClipBegin: begin, ClipEnd: end})
}

func bounded(begin, end float64) mo.Option[smil.AudioRef] {
	return clip(mo.Some(begin), mo.Some(end))
}

func document(nodes ...*smil.Parallel) *smil.Document {
	doc := &smil.Document{ID: "mo", Nodes: nodes}
	doc.Associate("OEBPS/text/Chapter_01.xhtml")
	return doc
}

func TestBuildSegments(t *testing.T) {
	Convey("Given an overlay spanning two chapters", t, func() {
		doc := document(
			par("a", "OEBPS/text/chapter_01.xhtml#p1", bounded(0, 5)),
			par("b", "OEBPS/text/chapter_02.xhtml#p1", bounded(5, 9)),
			par("c", "OEBPS/text/CHAPTER_01.XHTML#p2", bounded(9, 12)),
			par("d", "OEBPS/text/chapter_01.xhtml", bounded(12, 14)),
			par("e", "OEBPS/text/chapter_01.xhtml#p4", mo.None[smil.AudioRef]()),
			par("f", "", bounded(14, 20)),
			par("g", "other/dir/chapter_01.xhtml#p5", bounded(20, 25)),
		)

		segments := BuildSegments(doc, "text/chapter_01.xhtml")

		Convey("Only complete nodes of the chapter become segments, in order", func() {
			So(Fragments(segments), ShouldResemble, []string{"p1", "p2", "p5"})
			for _, s := range segments {
				So(s.Fragment, ShouldNotBeEmpty)
				So(s.Node.Audio.IsPresent(), ShouldBeTrue)
			}
		})

		Convey("Segments expose their references", func() {
			So(segments[1].Node.ID, ShouldEqual, "c")
			So(segments[1].Text().Fragment, ShouldEqual, "p2")
			So(segments[1].Audio().Src, ShouldEqual, "audio/book.mp3")
			So(segments[1].Length().MustGet(), ShouldEqual, 3)
		})

		Convey("Fragments can be looked up", func() {
			i, ok := IndexOfFragment(segments, "p5")
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 2)
			_, ok = IndexOfFragment(segments, "p9")
			So(ok, ShouldBeFalse)
		})

		Convey("A nil document has no segments", func() {
			So(BuildSegments(nil, "chapter_01.xhtml"), ShouldBeEmpty)
		})
	})
}

func TestResolveDocumentForChapter(t *testing.T) {
	Convey("ResolveDocumentForChapter", t, func() {
		first := document()
		second := &smil.Document{ID: "mo2"}
		second.Associate("OEBPS/text/chapter_02.xhtml")
		docs := []*smil.Document{first, second}

		So(ResolveDocumentForChapter(docs, "chapter_02.xhtml").MustGet(), ShouldEqual, second)
		So(ResolveDocumentForChapter(docs, "CHAPTER_01.xhtml").MustGet(), ShouldEqual, first)
		So(ResolveDocumentForChapter(docs, "chapter_03.xhtml").IsAbsent(), ShouldBeTrue)
		So(ResolveDocumentForChapter(nil, "chapter_01.xhtml").IsAbsent(), ShouldBeTrue)
	})
}

func TestDurationAndLocate(t *testing.T) {
	Convey("Given three contiguous segments", t, func() {
		segments := BuildSegments(document(
			par("a", "chapter_01.xhtml#s1", bounded(0, 5)),
			par("b", "chapter_01.xhtml#s2", bounded(5, 12)),
			par("c", "chapter_01.xhtml#s3", bounded(12, 20)),
		), "chapter_01.xhtml")

		Convey("The duration sums the clips", func() {
			So(CalculateDuration(segments).MustGet(), ShouldEqual, 20)
		})

		Convey("Offsets accumulate", func() {
			So(Offset(segments, 0), ShouldEqual, 0)
			So(Offset(segments, 2), ShouldEqual, 12)
			So(Offset(segments, 9), ShouldEqual, 20)
		})

		Convey("Locate finds the covering segment", func() {
			i, off, ok := Locate(segments, 9)
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 1)
			So(off, ShouldEqual, 4)

			i, off, _ = Locate(segments, 5)
			So(i, ShouldEqual, 1)
			So(off, ShouldEqual, 0)

			i, off, _ = Locate(segments, -3)
			So(i, ShouldEqual, 0)
			So(off, ShouldEqual, 0)
		})

		Convey("The last segment absorbs overflow", func() {
			i, off, ok := Locate(segments, 25)
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 2)
			So(off, ShouldEqual, 13)
		})
	})

	Convey("Given segments with unknown lengths", t, func() {
		unknown := clip(mo.Some(3.0), mo.None[float64]())
		segments := BuildSegments(document(
			par("a", "chapter_01.xhtml#s1", bounded(0, 4)),
			par("b", "chapter_01.xhtml#s2", unknown),
			par("c", "chapter_01.xhtml#s3", bounded(10, 16)),
		), "chapter_01.xhtml")

		Convey("They are skipped by the duration and the walk", func() {
			So(CalculateDuration(segments).MustGet(), ShouldEqual, 10)
			i, off, ok := Locate(segments, 5)
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 2)
			So(off, ShouldEqual, 1)
		})

		Convey("Without any known length nothing can be located", func() {
			blind := BuildSegments(document(par("x", "chapter_01.xhtml#s1", unknown)), "chapter_01.xhtml")
			So(CalculateDuration(blind).IsAbsent(), ShouldBeTrue)
			_, _, ok := Locate(blind, 1)
			So(ok, ShouldBeFalse)
			_, _, ok = Locate(nil, 1)
			So(ok, ShouldBeFalse)
		})
	})
}
