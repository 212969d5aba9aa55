package cmd

import (
	"time"

	"github.com/readalong-cli/readalong/epub"
	"github.com/readalong-cli/readalong/history"
	"github.com/readalong-cli/readalong/key"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// saveEvery limits how often progress reported while playing is written.
const saveEvery = 5 * time.Second

// session ties an opened book to its history record.
type session struct {
	path string
	pub  *epub.Publication
	book *overlay.Book

	latest  mo.Option[overlay.Progress]
	saved   mo.Option[overlay.Progress]
	savedAt time.Time
}

func newSession(path string) (*session, error) {
	pub, book, err := openBook(path)
	if err != nil {
		return nil, err
	}

	if !book.Supported() {
		_ = pub.Close()
		return nil, overlay.ErrUnsupported
	}

	return &session{path: path, pub: pub, book: book}, nil
}

// Close writes the latest progress and closes the book.
func (s *session) Close() error {
	s.flush()
	return s.pub.Close()
}

// texts returns the text of the fragments of a chapter.
func (s *session) texts(chapter int, ids []string) map[string]string {
	texts, err := s.pub.FragmentTexts(s.book.Chapters[chapter].Href, ids)
	if err != nil {
		log.Warnf("chapter %d texts: %v", chapter, err)
	}
	return texts
}

// restore returns the saved position of the book.
func (s *session) restore() mo.Option[overlay.Progress] {
	if !viper.GetBool(key.HistoryRestore) {
		return mo.None[overlay.Progress]()
	}

	record, ok, err := history.Find(s.pub.ID())
	if err != nil {
		log.Warnf("history: %v", err)
		return mo.None[overlay.Progress]()
	}
	if !ok || record.Progress.ChapterIndex >= len(s.book.Chapters) {
		return mo.None[overlay.Progress]()
	}

	return mo.Some(record.Progress)
}

// saveProgress records p. Positions within the same segment are written at
// most every saveEvery.
func (s *session) saveProgress(p overlay.Progress) {
	s.latest = mo.Some(p)

	if saved, ok := s.saved.Get(); ok &&
		saved.ChapterIndex == p.ChapterIndex &&
		saved.SegmentIndex == p.SegmentIndex &&
		saved.Enabled == p.Enabled &&
		time.Since(s.savedAt) < saveEvery {
		return
	}

	s.flush()
}

func (s *session) flush() {
	p, ok := s.latest.Get()
	if !ok || !viper.GetBool(key.HistorySave) {
		return
	}
	if saved, ok := s.saved.Get(); ok && saved == p {
		return
	}

	record := &history.Record{
		BookID:    s.pub.ID(),
		Title:     s.book.Title,
		Path:      s.path,
		Progress:  p,
		UpdatedAt: time.Now(),
	}
	if p.ChapterIndex < len(s.book.Chapters) {
		record.Chapter = s.book.Chapters[p.ChapterIndex].Title
	}

	if err := history.Save(record); err != nil {
		log.Warnf("history: %v", err)
		return
	}

	s.saved = mo.Some(p)
	s.savedAt = time.Now()
}
