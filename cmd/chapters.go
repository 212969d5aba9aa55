package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/readalong-cli/readalong/color"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chaptersCmd)
	chaptersCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	chaptersCmd.SetOut(os.Stdout)
}

type chapterRow struct {
	Number   int                `json:"number"`
	Title    string             `json:"title"`
	Href     string             `json:"href"`
	Segments int                `json:"segments"`
	Duration mo.Option[float64] `json:"durationSeconds"`
}

// chaptersCmd lists the chapters of a book with their narration.
var chaptersCmd = &cobra.Command{
	Use:   "chapters <book.epub>",
	Short: "List the chapters of a book and their narration",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pub, book, err := openBook(args[0])
		handleErr(err)
		defer pub.Close()

		rows := lo.Map(book.Chapters, func(c overlay.Chapter, i int) chapterRow {
			segments := book.Segments(i)
			return chapterRow{
				Number:   i + 1,
				Title:    c.Title,
				Href:     c.Href,
				Segments: len(segments),
				Duration: timeline.CalculateDuration(segments),
			}
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(rows))
			return
		}

		cmd.Println(style.Title(book.Title))
		cmd.Println()

		for _, row := range rows {
			number := style.Faint(fmt.Sprintf("%3d.", row.Number))
			if row.Segments == 0 {
				cmd.Printf("%s %s\n", number, style.Faint(row.Title))
				continue
			}

			length := "unknown length"
			if duration, ok := row.Duration.Get(); ok {
				length = smil.FormatClock(duration)
			}
			cmd.Printf("%s %s %s %s\n",
				number,
				row.Title,
				style.Fg(color.Cyan)(icon.Get(icon.Narration)+" "+length),
				style.Faint(util.Quantify(row.Segments, "segment", "segments")),
			)
		}

		total := lo.SumBy(book.Documents, func(doc *smil.Document) float64 {
			return doc.Duration().OrElse(0)
		})
		cmd.Printf("\n%s %s narrated in %s\n",
			style.Faint("total"),
			smil.FormatClock(total),
			util.Quantify(len(book.Documents), "overlay", "overlays"),
		)
	},
}
