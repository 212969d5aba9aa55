// Package history persists narration progress between sessions, one record
// per book.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/readalong-cli/readalong/filesystem"
	"github.com/readalong-cli/readalong/where"
)

var (
	cacher     *gache.Cache[map[string]*Record]
	cacherOnce sync.Once
)

// store opens the history file lazily so that the filesystem backend can be
// swapped before first use.
func store() *gache.Cache[map[string]*Record] {
	cacherOnce.Do(func() {
		cacher = gache.New[map[string]*Record](
			&gache.Options{
				Path:       where.History(),
				FileSystem: &filesystem.GacheFs{},
			},
		)
	})
	return cacher
}

// Get returns every saved record keyed by book id.
func Get() (map[string]*Record, error) {
	cached, expired, err := store().Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Record), nil
	}
	return cached, nil
}

// Find returns the record of a book.
func Find(bookID string) (*Record, bool, error) {
	saved, err := Get()
	if err != nil {
		return nil, false, err
	}

	record, ok := saved[bookID]
	return record, ok, nil
}

// All returns the records, most recently updated first.
func All() ([]*Record, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(saved))
	for _, r := range saved {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

// Save stores record, replacing the previous one of the same book.
func Save(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record.UpdatedAt = time.Now()
	saved[record.encode()] = record

	return store().Set(saved)
}

// Remove deletes the record of a book.
func Remove(record *Record) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return store().Set(saved)
}

// Clear deletes every record.
func Clear() error {
	return store().Set(make(map[string]*Record))
}
