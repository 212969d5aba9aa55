package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/readalong-cli/readalong/color"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(timelineCmd)
	addChapterFlag(timelineCmd)
	timelineCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	timelineCmd.Flags().BoolP("text", "t", false, "Include the text of each fragment")
	timelineCmd.Flags().Bool("tree", false, "Print the overlay document structure instead")
	timelineCmd.SetOut(os.Stdout)
}

type segmentRow struct {
	Index     int                `json:"index"`
	Fragment  string             `json:"fragmentId"`
	Audio     string             `json:"audio"`
	ClipBegin mo.Option[float64] `json:"clipBegin"`
	ClipEnd   mo.Option[float64] `json:"clipEnd"`
	Offset    float64            `json:"chapterOffset"`
	Text      string             `json:"text,omitempty"`
}

// timelineCmd prints the narration segments of a chapter.
var timelineCmd = &cobra.Command{
	Use:   "timeline <book.epub>",
	Short: "Show the narration segments of a chapter",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pub, book, err := openBook(args[0])
		handleErr(err)
		defer pub.Close()

		chosen, err := chapterFlag(cmd, book)
		handleErr(err)
		chapter := chosen.OrElse(firstNarrated(book))

		segments := book.Segments(chapter)
		if len(segments) == 0 {
			handleErr(fmt.Errorf("chapter %d: %w", chapter+1, overlay.ErrNoSegments))
		}

		if lo.Must(cmd.Flags().GetBool("tree")) {
			doc, ok := timeline.ResolveDocumentForChapter(book.Documents, book.Chapters[chapter].Href).Get()
			if !ok {
				handleErr(fmt.Errorf("chapter %d: %w", chapter+1, overlay.ErrNoSegments))
			}
			printTree(cmd, doc)
			return
		}

		var texts map[string]string
		if lo.Must(cmd.Flags().GetBool("text")) {
			texts, err = pub.FragmentTexts(book.Chapters[chapter].Href, timeline.Fragments(segments))
			if err != nil {
				log.Warnf("fragment texts: %v", err)
			}
		}

		rows := lo.Map(segments, func(s timeline.Segment, i int) segmentRow {
			clip := s.Audio()
			return segmentRow{
				Index:     i,
				Fragment:  s.Fragment,
				Audio:     clip.Src,
				ClipBegin: clip.ClipBegin,
				ClipEnd:   clip.ClipEnd,
				Offset:    timeline.Offset(segments, i),
				Text:      texts[s.Fragment],
			}
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(rows))
			return
		}

		cmd.Printf("%s %s\n\n", style.Title(book.Title), style.Fg(color.Purple)(book.Chapters[chapter].Title))

		clock := func(o mo.Option[float64]) string {
			if v, ok := o.Get(); ok {
				return smil.FormatClock(v)
			}
			return "?"
		}

		for _, row := range rows {
			cmd.Printf("%s %s %s %s %s\n",
				style.Faint(fmt.Sprintf("%4d", row.Index)),
				style.Fg(color.Cyan)(fmt.Sprintf("%8s", smil.FormatClock(row.Offset))),
				style.Fg(color.Yellow)(fmt.Sprintf("#%s", row.Fragment)),
				style.Faint(fmt.Sprintf("%s [%s-%s]", row.Audio, clock(row.ClipBegin), clock(row.ClipEnd))),
				row.Text,
			)
		}
	},
}

// printTree prints the node tree of doc, one node per line.
func printTree(cmd *cobra.Command, doc *smil.Document) {
	cmd.Println(style.Faint(doc.Path))

	smil.Walk(doc.Body, func(n smil.Node, depth int) {
		indent := strings.Repeat("  ", depth)

		switch n := n.(type) {
		case *smil.Sequence:
			cmd.Printf("%s%s %s %s\n", indent, style.Fg(color.Purple)("seq"), n.ID, style.Faint(n.TextRef))
		case *smil.Parallel:
			text := n.Text.OrEmpty()
			line := fmt.Sprintf("%s%s %s %s", indent, style.Fg(color.Cyan)("par"), n.ID, style.Fg(color.Yellow)("#"+text.Fragment))
			if clip, ok := n.Audio.Get(); ok {
				line += style.Faint(fmt.Sprintf(" %s", clip.Src))
			}
			cmd.Println(line)
		}
	})
}
