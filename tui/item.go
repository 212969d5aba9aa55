package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// chapterItem implements list.Item for the chapter picker.
type chapterItem struct {
	chapter  overlay.Chapter
	duration mo.Option[float64]
	narrated bool
	current  bool
}

// Title retrieves the primary display text for the list item.
func (c *chapterItem) Title() string {
	title := c.FilterValue()
	if c.current {
		title = fmt.Sprintf("%s %s", title, style.Fg(style.AccentColor)(icon.Get(icon.Mark)))
	}
	return title
}

// Description retrieves the secondary metadata for the list item.
func (c *chapterItem) Description() string {
	if !c.narrated {
		return style.Faint("no narration")
	}

	duration, ok := c.duration.Get()
	if !ok {
		return icon.Get(icon.Narration) + " narrated"
	}
	return fmt.Sprintf("%s %s", icon.Get(icon.Narration), smil.FormatClock(duration))
}

// FilterValue returns the text the list filters on.
func (c *chapterItem) FilterValue() string {
	return c.chapter.Title
}

func (r *Reader) chapterItems() []list.Item {
	book := r.options.Book
	narrated := book.Narrated()

	return lo.Map(book.Chapters, func(chapter overlay.Chapter, i int) list.Item {
		item := &chapterItem{
			chapter:  chapter,
			narrated: lo.Contains(narrated, i),
			current:  i == r.chapter,
		}
		if item.narrated {
			item.duration = timeline.CalculateDuration(book.Segments(i))
		}
		return item
	})
}
