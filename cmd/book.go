package cmd

import (
	"github.com/readalong-cli/readalong/epub"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/query"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// openBook opens path and loads its narration. The caller closes the
// publication.
func openBook(path string) (*epub.Publication, *overlay.Book, error) {
	pub, err := epub.Open(path)
	if err != nil {
		return nil, nil, err
	}

	book, err := pub.Book()
	if err != nil {
		_ = pub.Close()
		return nil, nil, err
	}

	return pub, book, nil
}

func addChapterFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("chapter", "c", "", "Chapter number (from 1) or part of its title")
}

// chapterFlag resolves the --chapter flag, None when it is not set.
func chapterFlag(cmd *cobra.Command, book *overlay.Book) (mo.Option[int], error) {
	q := lo.Must(cmd.Flags().GetString("chapter"))
	if q == "" {
		return mo.None[int](), nil
	}

	i, err := query.Chapter(book.Chapters, q)
	if err != nil {
		return mo.None[int](), err
	}
	return mo.Some(i), nil
}

// firstNarrated is the chapter reading starts from by default.
func firstNarrated(book *overlay.Book) int {
	narrated := book.Narrated()
	if len(narrated) == 0 {
		return 0
	}
	return narrated[0]
}
