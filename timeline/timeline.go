// Package timeline turns media overlays into the ordered narration segments
// of a single chapter.
package timeline

import (
	"path"
	"strings"

	"github.com/readalong-cli/readalong/smil"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Segment is one playable (text fragment, audio clip) pair of a chapter.
type Segment struct {
	Node     *smil.Parallel
	Fragment string
}

// Text returns the segment's text reference.
func (s Segment) Text() smil.TextRef {
	return s.Node.Text.MustGet()
}

// Audio returns the segment's audio reference.
func (s Segment) Audio() smil.AudioRef {
	return s.Node.Audio.MustGet()
}

// Length is the clip duration when both clip bounds are known.
func (s Segment) Length() mo.Option[float64] {
	return s.Audio().Length()
}

// BuildSegments selects the nodes of doc that narrate chapterFile, keeping
// document order. Chapter files are matched by file name, ignoring case.
func BuildSegments(doc *smil.Document, chapterFile string) []Segment {
	if doc == nil {
		return nil
	}

	name := path.Base(chapterFile)
	return lo.FilterMap(doc.Nodes, func(par *smil.Parallel, _ int) (Segment, bool) {
		text, _, ok := par.Narration()
		if !ok || !strings.EqualFold(text.File(), name) {
			return Segment{}, false
		}
		return Segment{Node: par, Fragment: text.Fragment}, true
	})
}

// ResolveDocumentForChapter finds the overlay associated with chapterFile.
func ResolveDocumentForChapter(docs []*smil.Document, chapterFile string) mo.Option[*smil.Document] {
	doc, ok := lo.Find(docs, func(d *smil.Document) bool {
		return d.Narrates(chapterFile)
	})
	if !ok {
		return mo.None[*smil.Document]()
	}
	return mo.Some(doc)
}

// CalculateDuration sums the known clip lengths. It is None only when no
// segment has a usable length.
func CalculateDuration(segments []Segment) mo.Option[float64] {
	total, known := 0.0, false
	for _, s := range segments {
		if length, ok := s.Length().Get(); ok {
			total += length
			known = true
		}
	}

	if !known {
		return mo.None[float64]()
	}
	return mo.Some(total)
}

// Offset returns the chapter time at which segment index starts. Segments of
// unknown length count as empty.
func Offset(segments []Segment, index int) float64 {
	offset := 0.0
	for i := 0; i < index && i < len(segments); i++ {
		offset += segments[i].Length().OrElse(0)
	}
	return offset
}

// Locate maps chapter time t to a segment index and an offset into that
// segment's clip. Segments of unknown length count as empty, except that the
// final segment absorbs any overflow. ok is false when no segment exposes a
// length, since chapter time is then meaningless.
func Locate(segments []Segment, t float64) (index int, offset float64, ok bool) {
	if len(segments) == 0 || CalculateDuration(segments).IsAbsent() {
		return 0, 0, false
	}

	if t < 0 {
		t = 0
	}

	start := 0.0
	last := len(segments) - 1
	for i, s := range segments {
		length := s.Length().OrElse(0)
		if t < start+length || i == last {
			return i, t - start, true
		}
		start += length
	}

	return last, 0, false
}

// Fragments lists the fragment identifiers of segments in order.
func Fragments(segments []Segment) []string {
	return lo.Map(segments, func(s Segment, _ int) string { return s.Fragment })
}

// IndexOfFragment finds the segment anchored at fragment.
func IndexOfFragment(segments []Segment, fragment string) (int, bool) {
	_, index, ok := lo.FindIndexOf(segments, func(s Segment) bool { return s.Fragment == fragment })
	return index, ok
}
