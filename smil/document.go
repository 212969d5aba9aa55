package smil

import (
	"path"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Document is a parsed media overlay.
type Document struct {
	// ID is the manifest id of the overlay.
	ID string
	// Path is the location of the overlay inside the publication.
	Path string
	Body *Sequence
	// Nodes holds every parallel node of Body in document order.
	Nodes []*Parallel

	associated []string
}

// Associate records href as a content document narrated by d.
func (d *Document) Associate(href string) {
	if href == "" || lo.Contains(d.associated, href) {
		return
	}
	d.associated = append(d.associated, href)
}

// Associated lists the content documents narrated by d in association order.
func (d *Document) Associated() []string {
	return append([]string(nil), d.associated...)
}

// Narrates reports whether d is associated with a content document whose
// file name matches file, ignoring case.
func (d *Document) Narrates(file string) bool {
	name := path.Base(file)
	return lo.ContainsBy(d.associated, func(href string) bool {
		return strings.EqualFold(path.Base(href), name)
	})
}

// Duration sums the clip lengths of the narrating nodes of d. It is None
// when no node has both clip bounds.
func (d *Document) Duration() mo.Option[float64] {
	total, known := 0.0, false
	for _, node := range d.Nodes {
		_, audio, ok := node.Narration()
		if !ok {
			continue
		}
		if length, ok := audio.Length().Get(); ok {
			total += length
			known = true
		}
	}

	if !known {
		return mo.None[float64]()
	}
	return mo.Some(total)
}
