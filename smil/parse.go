package smil

import (
	"bytes"
	"encoding/xml"

	"github.com/readalong-cli/readalong/log"
	"github.com/samber/mo"
)

// element is a generic view of an XML element used to walk the overlay tree.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e *element) attr(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (e *element) child(local string) (*element, bool) {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == local {
			return &e.Children[i], true
		}
	}
	return nil, false
}

// Parse decodes the overlay at path (its location inside the publication,
// used to resolve relative references) into a Document.
func Parse(id, path string, data []byte) (*Document, error) {
	var root element
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	body, ok := &root, root.XMLName.Local == "body"
	if !ok {
		body, ok = root.child("body")
	}
	if !ok {
		return nil, &ParseError{Path: path, Err: ErrMissingBody}
	}

	p := parser{path: path}
	seq := p.sequence(body)

	doc := &Document{
		ID:    id,
		Path:  path,
		Body:  seq,
		Nodes: Flatten(seq),
	}

	log.With(log.Fields{"overlay": path}).Debugf("parsed %d parallel nodes", len(doc.Nodes))
	return doc, nil
}

type parser struct {
	path string
}

func (p parser) sequence(e *element) *Sequence {
	seq := &Sequence{
		ID:      e.attr("id"),
		Type:    e.attr("type"),
		TextRef: Resolve(p.path, e.attr("textref")),
	}

	for i := range e.Children {
		child := &e.Children[i]
		switch child.XMLName.Local {
		case "seq":
			seq.Children = append(seq.Children, p.sequence(child))
		case "par":
			seq.Children = append(seq.Children, p.parallel(child))
		}
	}

	return seq
}

func (p parser) parallel(e *element) *Parallel {
	par := &Parallel{
		ID:    e.attr("id"),
		Type:  e.attr("type"),
		Text:  mo.None[TextRef](),
		Audio: mo.None[AudioRef](),
	}

	if text, ok := e.child("text"); ok {
		if src := text.attr("src"); src != "" {
			ref := SplitRef(src)
			ref.Src = Resolve(p.path, ref.Src)
			par.Text = mo.Some(ref)
		}
	}

	if audio, ok := e.child("audio"); ok {
		if src := audio.attr("src"); src != "" {
			par.Audio = mo.Some(p.audio(audio, src))
		}
	}

	return par
}

func (p parser) audio(e *element, src string) AudioRef {
	ref := AudioRef{
		Src:       Resolve(p.path, src),
		ClipBegin: ParseClock(e.attr("clipBegin")),
		ClipEnd:   ParseClock(e.attr("clipEnd")),
	}

	begin, hasBegin := ref.ClipBegin.Get()
	end, hasEnd := ref.ClipEnd.Get()
	if hasBegin && hasEnd && end < begin {
		log.With(log.Fields{"overlay": p.path, "src": src}).
			Warnf("clipEnd %s precedes clipBegin %s, ignoring clipEnd", FormatClock(end), FormatClock(begin))
		ref.ClipEnd = mo.None[float64]()
	}

	return ref
}
