package smil

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// MediaType is the manifest media type of media overlay documents.
const MediaType = "application/smil+xml"

// ManifestItem is the subset of a package manifest entry used to load and
// associate overlays. Href is resolved against the publication root.
type ManifestItem struct {
	ID           string
	Href         string
	MediaType    string
	MediaOverlay string
}

// IsOverlay reports whether the item is a media overlay document.
func (m ManifestItem) IsOverlay() bool {
	return strings.EqualFold(m.MediaType, MediaType)
}

// ParseManifest parses every overlay listed in items, reading each through
// read, and associates the content documents that reference it. The first
// unusable overlay aborts loading.
func ParseManifest(items []ManifestItem, read func(href string) ([]byte, error)) ([]*Document, error) {
	var docs []*Document
	for _, item := range lo.Filter(items, func(m ManifestItem, _ int) bool { return m.IsOverlay() }) {
		data, err := read(item.Href)
		if err != nil {
			return nil, &ParseError{Path: item.Href, Err: fmt.Errorf("read: %w", err)}
		}

		doc, err := Parse(item.ID, item.Href, data)
		if err != nil {
			return nil, err
		}

		doc.AssociateManifest(items)
		docs = append(docs, doc)
	}
	return docs, nil
}

// AssociateManifest appends the hrefs of items whose media-overlay attribute
// names d.
func (d *Document) AssociateManifest(items []ManifestItem) {
	for _, item := range items {
		if item.MediaOverlay != "" && item.MediaOverlay == d.ID {
			d.Associate(item.Href)
		}
	}
}

// Meta is a package metadata entry (<meta property="..." refines="...">).
type Meta struct {
	Property string
	Refines  string
	Value    string
}

// Metadata holds the package-level media overlay properties. Absent values
// are None and defaulted by the consumer.
type Metadata struct {
	ActiveClass  mo.Option[string]
	PlayingClass mo.Option[string]
	Narrator     mo.Option[string]
	Duration     mo.Option[float64]
}

// ResolveMetadata extracts package-level overlay properties. Entries that
// refine a specific item are ignored.
func ResolveMetadata(metas []Meta) Metadata {
	md := Metadata{
		ActiveClass:  mo.None[string](),
		PlayingClass: mo.None[string](),
		Narrator:     mo.None[string](),
		Duration:     mo.None[float64](),
	}

	for _, m := range metas {
		value := strings.TrimSpace(m.Value)
		if m.Refines != "" || value == "" {
			continue
		}

		switch m.Property {
		case "media:active-class":
			md.ActiveClass = mo.Some(value)
		case "media:playback-active-class":
			md.PlayingClass = mo.Some(value)
		case "media:narrator":
			md.Narrator = mo.Some(value)
		case "media:duration":
			md.Duration = ParseClock(value)
		}
	}

	return md
}
