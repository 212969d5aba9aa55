// Package epub opens EPUB 3 publications and loads what narrated reading
// needs from them: the spine, the media overlays, the narration audio and
// the text of narrated fragments.
package epub

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/filesystem"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/lo"
)

const containerPath = "META-INF/container.xml"

var (
	ErrNoContainer = errors.New("missing " + containerPath)
	ErrNoPackage   = errors.New("container names no package document")
	ErrNotFound    = errors.New("file not found in publication")
)

// Publication is an opened EPUB archive.
type Publication struct {
	Path       string
	Identifier string
	Title      string
	Language   string

	// PackagePath is the location of the OPF package document.
	PackagePath string
	// Manifest hrefs are resolved against the publication root.
	Manifest []smil.ManifestItem
	// Spine lists manifest ids in reading order.
	Spine []string
	Metas []smil.Meta

	navHref string
	file    filesystem.RandomAccess
	files   map[string]*zip.File
}

// Open reads the container and package documents of the EPUB at filename.
func Open(filename string) (*Publication, error) {
	file, err := filesystem.OpenRandomAccess(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}

	archive, err := zip.NewReader(file, file.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("read archive %s: %w", filename, err)
	}

	pub := &Publication{
		Path:  filename,
		file:  file,
		files: make(map[string]*zip.File, len(archive.File)),
	}
	for _, f := range archive.File {
		pub.files[audio.Normalize(f.Name)] = f
	}

	if err := pub.loadPackage(); err != nil {
		_ = file.Close()
		return nil, err
	}

	log.With(log.Fields{"epub": filename}).Infof("opened %q: %d manifest items, %d spine entries",
		pub.Title, len(pub.Manifest), len(pub.Spine))
	return pub, nil
}

// Close releases the archive.
func (p *Publication) Close() error {
	return p.file.Close()
}

// Read returns the content of the file at href, matched like audio
// references: by normalized path, ignoring case.
func (p *Publication) Read(href string) ([]byte, error) {
	f, ok := p.files[audio.Normalize(href)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", href, ErrNotFound)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", href, err)
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

type rootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type container struct {
	Rootfiles []rootfile `xml:"rootfiles>rootfile"`
}

type packageDocument struct {
	UniqueIdentifier string `xml:"unique-identifier,attr"`
	Metadata         struct {
		Titles      []string `xml:"title"`
		Languages   []string `xml:"language"`
		Identifiers []struct {
			ID    string `xml:"id,attr"`
			Value string `xml:",chardata"`
		} `xml:"identifier"`
		Metas []struct {
			Property string `xml:"property,attr"`
			Refines  string `xml:"refines,attr"`
			Value    string `xml:",chardata"`
		} `xml:"meta"`
	} `xml:"metadata"`
	Items []struct {
		ID           string `xml:"id,attr"`
		Href         string `xml:"href,attr"`
		MediaType    string `xml:"media-type,attr"`
		MediaOverlay string `xml:"media-overlay,attr"`
		Properties   string `xml:"properties,attr"`
	} `xml:"manifest>item"`
	Itemrefs []struct {
		IDRef  string `xml:"idref,attr"`
		Linear string `xml:"linear,attr"`
	} `xml:"spine>itemref"`
}

func (p *Publication) loadPackage() error {
	data, err := p.Read(containerPath)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Path, ErrNoContainer)
	}

	var c container
	if err := xml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse %s: %w", containerPath, err)
	}

	root, ok := lo.Find(c.Rootfiles, func(r rootfile) bool { return r.FullPath != "" })
	if !ok {
		return ErrNoPackage
	}
	p.PackagePath = root.FullPath

	data, err = p.Read(p.PackagePath)
	if err != nil {
		return err
	}

	var pkg packageDocument
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return fmt.Errorf("parse %s: %w", p.PackagePath, err)
	}

	p.Title = strings.TrimSpace(lo.FirstOr(pkg.Metadata.Titles, ""))
	p.Language = strings.TrimSpace(lo.FirstOr(pkg.Metadata.Languages, ""))
	for _, id := range pkg.Metadata.Identifiers {
		if p.Identifier == "" || id.ID == pkg.UniqueIdentifier {
			p.Identifier = strings.TrimSpace(id.Value)
		}
	}
	if p.Title == "" {
		p.Title = util.FileStem(p.Path)
	}

	for _, m := range pkg.Metadata.Metas {
		p.Metas = append(p.Metas, smil.Meta{
			Property: m.Property,
			Refines:  m.Refines,
			Value:    m.Value,
		})
	}

	for _, item := range pkg.Items {
		p.Manifest = append(p.Manifest, smil.ManifestItem{
			ID:           item.ID,
			Href:         smil.Resolve(p.PackagePath, item.Href),
			MediaType:    item.MediaType,
			MediaOverlay: item.MediaOverlay,
		})
		if lo.Contains(strings.Fields(item.Properties), "nav") {
			p.navHref = smil.Resolve(p.PackagePath, item.Href)
		}
	}

	for _, ref := range pkg.Itemrefs {
		if ref.Linear != "no" {
			p.Spine = append(p.Spine, ref.IDRef)
		}
	}

	return nil
}

// Item finds a manifest item by id.
func (p *Publication) Item(id string) (smil.ManifestItem, bool) {
	return lo.Find(p.Manifest, func(m smil.ManifestItem) bool { return m.ID == id })
}

// ID identifies the publication across sessions: its unique identifier, or
// its file name when it has none.
func (p *Publication) ID() string {
	if p.Identifier != "" {
		return p.Identifier
	}
	return filepath.Base(p.Path)
}
