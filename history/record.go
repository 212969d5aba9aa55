package history

import (
	"fmt"
	"time"

	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/smil"
)

// Record is the saved reading position of one book.
type Record struct {
	BookID    string           `json:"book_id"`
	Title     string           `json:"title"`
	Path      string           `json:"path"`
	Chapter   string           `json:"chapter"`
	Progress  overlay.Progress `json:"progress"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (r *Record) encode() string {
	return r.BookID
}

func (r *Record) String() string {
	position := "start"
	if seconds, ok := r.Progress.Position.Get(); ok {
		position = smil.FormatClock(seconds)
	}
	return fmt.Sprintf("%s : %s @ %s", r.Title, r.Chapter, position)
}
