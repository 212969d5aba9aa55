package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/constant"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/lo"
)

// Book loads the narration of the publication. A malformed media overlay
// fails the whole load with a *smil.ParseError; audio files that cannot be
// read are left out and surface later as missing resources.
func (p *Publication) Book() (*overlay.Book, error) {
	docs, err := smil.ParseManifest(p.Manifest, p.Read)
	if err != nil {
		return nil, err
	}

	return &overlay.Book{
		ID:        p.ID(),
		Title:     p.Title,
		Documents: docs,
		Resources: audio.NewLibrary(p.audioResources(docs)),
		Chapters:  p.Chapters(),
		Metadata:  smil.ResolveMetadata(p.Metas),
	}, nil
}

// audioResources reads the audio files referenced by docs.
func (p *Publication) audioResources(docs []*smil.Document) []audio.Resource {
	referenced := make(map[string]bool)
	for _, doc := range docs {
		for _, par := range doc.Nodes {
			if clip, ok := par.Audio.Get(); ok {
				referenced[audio.Normalize(clip.Src)] = true
			}
		}
	}

	var resources []audio.Resource
	for _, item := range p.Manifest {
		if !strings.HasPrefix(strings.ToLower(item.MediaType), "audio/") || !referenced[audio.Normalize(item.Href)] {
			continue
		}

		data, err := p.Read(item.Href)
		if err != nil {
			log.With(log.Fields{"epub": p.Path, "href": item.Href}).Warnf("skipping audio: %v", err)
			continue
		}
		resources = append(resources, audio.Resource{Path: item.Href, Data: data})
	}

	return resources
}

// Chapters lists the spine documents in reading order. Titles come from the
// navigation document, then from the document's own title or first heading.
func (p *Publication) Chapters() []overlay.Chapter {
	toc := p.tableOfContents()

	var chapters []overlay.Chapter
	for _, id := range p.Spine {
		item, ok := p.Item(id)
		if !ok {
			log.With(log.Fields{"epub": p.Path, "idref": id}).Warnf("spine references unknown manifest item")
			continue
		}
		if !strings.EqualFold(item.MediaType, constant.MediaTypeXHTML) {
			continue
		}

		title, ok := toc[audio.Normalize(item.Href)]
		if !ok {
			title = p.documentTitle(item.Href)
		}

		chapters = append(chapters, overlay.Chapter{
			Index: len(chapters),
			Href:  item.Href,
			Title: title,
		})
	}

	return chapters
}

// tableOfContents maps content documents to their titles in the navigation
// document. The first entry pointing into a document wins.
func (p *Publication) tableOfContents() map[string]string {
	toc := make(map[string]string)
	if p.navHref == "" {
		return toc
	}

	doc, err := p.document(p.navHref)
	if err != nil {
		log.With(log.Fields{"epub": p.Path}).Warnf("navigation document: %v", err)
		return toc
	}

	doc.Find("nav").
		FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.AttrOr("epub:type", "") == "toc"
		}).
		Find("a[href]").
		Each(func(_ int, a *goquery.Selection) {
			target := smil.SplitRef(a.AttrOr("href", "")).Src
			if target == "" {
				return
			}

			key := audio.Normalize(smil.Resolve(p.navHref, target))
			if _, seen := toc[key]; !seen {
				toc[key] = collapse(a.Text())
			}
		})

	return toc
}

func (p *Publication) documentTitle(href string) string {
	doc, err := p.document(href)
	if err != nil {
		return util.FileStem(href)
	}

	if title := collapse(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if heading := collapse(doc.Find("h1, h2, h3").First().Text()); heading != "" {
		return heading
	}
	return util.FileStem(href)
}

// FragmentTexts returns the text of the elements of the document at href
// whose id is listed in ids. Ids missing from the document are left out.
func (p *Publication) FragmentTexts(href string, ids []string) (map[string]string, error) {
	doc, err := p.document(href)
	if err != nil {
		return nil, err
	}

	wanted := lo.SliceToMap(ids, func(id string) (string, bool) { return id, true })
	texts := make(map[string]string, len(ids))

	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		id := s.AttrOr("id", "")
		if wanted[id] {
			texts[id] = collapse(s.Text())
		}
	})

	return texts, nil
}

func (p *Publication) document(href string) (*goquery.Document, error) {
	data, err := p.Read(href)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", href, err)
	}
	return doc, nil
}

// collapse normalizes runs of whitespace to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
