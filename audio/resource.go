// Package audio owns the narration audio of a book: an immutable library of
// resources and a service holding at most one open playback session.
package audio

import (
	"net/url"
	"path"
	"strings"

	"github.com/samber/lo"
)

// Resource is an audio file of the publication.
type Resource struct {
	// Path is the location of the file inside the publication.
	Path string
	Data []byte
}

// Library resolves audio references to resources. It is built once and is
// safe for concurrent reads afterwards.
type Library struct {
	byPath map[string]Resource
	byName map[string]Resource
}

// NewLibrary indexes resources by normalized path and by file name. When two
// resources share a file name the first one wins the name lookup.
func NewLibrary(resources []Resource) *Library {
	lib := &Library{
		byPath: make(map[string]Resource, len(resources)),
		byName: make(map[string]Resource, len(resources)),
	}

	for _, r := range resources {
		normalized := Normalize(r.Path)
		if _, exists := lib.byPath[normalized]; !exists {
			lib.byPath[normalized] = r
		}

		name := path.Base(normalized)
		if _, exists := lib.byName[name]; !exists {
			lib.byName[name] = r
		}
	}

	return lib
}

// Lookup finds the resource for src by normalized path, falling back to the
// file name alone.
func (l *Library) Lookup(src string) (Resource, bool) {
	if l == nil {
		return Resource{}, false
	}

	normalized := Normalize(src)
	if r, ok := l.byPath[normalized]; ok {
		return r, true
	}

	r, ok := l.byName[path.Base(normalized)]
	return r, ok
}

// Len returns the number of indexed resources.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.byPath)
}

// Paths lists the indexed resource paths.
func (l *Library) Paths() []string {
	if l == nil {
		return nil
	}
	return lo.Map(lo.Values(l.byPath), func(r Resource, _ int) string { return r.Path })
}

// Normalize canonicalizes a publication path for case-insensitive matching.
func Normalize(p string) string {
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}

	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.ToLower(strings.TrimPrefix(p, "/"))
}
