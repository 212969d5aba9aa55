// Package overlay drives narrated reading: it plays the narration of a
// chapter segment by segment, keeps the rendering surface highlighting the
// fragment being read, and exposes a snapshot of the position so that
// reading can resume in a later session.
package overlay

import (
	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/timeline"
)

// Chapter is a spine entry of the book.
type Chapter struct {
	Index int
	// Href is the content document path inside the publication.
	Href  string
	Title string
}

// Book is everything the engine needs from an opened publication.
type Book struct {
	ID        string
	Title     string
	Documents []*smil.Document
	Resources *audio.Library
	Chapters  []Chapter
	Metadata  smil.Metadata
}

// Supported reports whether the book carries any media overlay.
func (b *Book) Supported() bool {
	return b != nil && len(b.Documents) > 0
}

// Segments builds the narration segments of chapter i. It returns nil for
// chapters without narration.
func (b *Book) Segments(i int) []timeline.Segment {
	if b == nil || i < 0 || i >= len(b.Chapters) {
		return nil
	}

	href := b.Chapters[i].Href
	doc, ok := timeline.ResolveDocumentForChapter(b.Documents, href).Get()
	if !ok {
		return nil
	}
	return timeline.BuildSegments(doc, href)
}

// Narrated lists the indexes of chapters that have narration.
func (b *Book) Narrated() []int {
	var narrated []int
	for i := range b.Chapters {
		if len(b.Segments(i)) > 0 {
			narrated = append(narrated, i)
		}
	}
	return narrated
}
