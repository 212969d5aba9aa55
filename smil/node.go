// Package smil parses EPUB 3 Media Overlay documents, the SMIL subset that
// pairs text fragments of a chapter with clips of narration audio.
package smil

import (
	"net/url"
	"path"
	"strings"

	"github.com/samber/mo"
)

// Node is an element of a timing document body. It is implemented only by
// *Sequence and *Parallel.
type Node interface {
	node()
}

// Sequence is an ordered container of nodes (body and seq elements).
type Sequence struct {
	ID   string
	Type string
	// TextRef is the epub:textref attribute, resolved against the document path.
	TextRef  string
	Children []Node
}

// Parallel is a single synchronized text and audio unit (par element).
type Parallel struct {
	ID    string
	Type  string
	Text  mo.Option[TextRef]
	Audio mo.Option[AudioRef]
}

func (*Sequence) node() {}
func (*Parallel) node() {}

// TextRef points at a fragment of a content document.
type TextRef struct {
	Src      string
	Fragment string
}

// File returns the file name of the referenced content document.
func (t TextRef) File() string {
	return path.Base(t.Src)
}

// String joins the reference back into its "path#fragment" form.
func (t TextRef) String() string {
	if t.Fragment == "" {
		return t.Src
	}
	return t.Src + "#" + t.Fragment
}

// AudioRef points at a clip of an audio resource. Unknown bounds are None.
type AudioRef struct {
	Src       string
	ClipBegin mo.Option[float64]
	ClipEnd   mo.Option[float64]
}

// Length is the clip duration in seconds, present only when both bounds are
// known and the clip is not empty.
func (a AudioRef) Length() mo.Option[float64] {
	begin, ok := a.ClipBegin.Get()
	if !ok {
		return mo.None[float64]()
	}
	end, ok := a.ClipEnd.Get()
	if !ok || end <= begin {
		return mo.None[float64]()
	}
	return mo.Some(end - begin)
}

// Narration returns the text and audio of p when p can be played as a
// segment: both children present and the text reference carries a fragment.
func (p *Parallel) Narration() (TextRef, AudioRef, bool) {
	text, hasText := p.Text.Get()
	audio, hasAudio := p.Audio.Get()
	if !hasText || !hasAudio || text.Fragment == "" {
		return TextRef{}, AudioRef{}, false
	}
	return text, audio, true
}

// Walk visits n and its descendants in pre-order, reporting each node's depth.
func Walk(n Node, fn func(n Node, depth int)) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int)) {
	fn(n, depth)
	if seq, ok := n.(*Sequence); ok {
		for _, child := range seq.Children {
			walk(child, depth+1, fn)
		}
	}
}

// Flatten lists the parallel nodes below root in document order.
func Flatten(root Node) []*Parallel {
	var nodes []*Parallel
	Walk(root, func(n Node, _ int) {
		if par, ok := n.(*Parallel); ok {
			nodes = append(nodes, par)
		}
	})
	return nodes
}

// SplitRef splits a "path#fragment" reference.
func SplitRef(ref string) TextRef {
	src, fragment, _ := strings.Cut(ref, "#")
	return TextRef{Src: src, Fragment: fragment}
}

// Resolve interprets ref relative to the directory of base, the way hrefs
// inside a publication are resolved against the referencing file.
func Resolve(base, ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ref
	}

	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}

	if strings.HasPrefix(ref, "/") {
		return path.Clean(strings.TrimPrefix(ref, "/"))
	}

	return path.Clean(path.Join(path.Dir(base), ref))
}
