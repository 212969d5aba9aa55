// Package console is a line-oriented rendering surface: it prints each
// narrated fragment as it is highlighted. Every fragment counts as visible,
// so pages never need turning.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/lo"
)

// Surface prints to an io.Writer. It implements bridge.Surface.
type Surface struct {
	out   io.Writer
	width int
	texts map[string]string

	last    string
	playing bool
}

// New creates a surface writing to out, wrapping text at width columns.
// A width of zero follows the terminal.
func New(out io.Writer, width int) *Surface {
	if width <= 0 {
		width = util.TerminalWidth(80)
	}
	return &Surface{out: out, width: width, texts: map[string]string{}}
}

// SetChapter prints the chapter heading and replaces the fragment texts.
func (s *Surface) SetChapter(title string, texts map[string]string) {
	s.texts = texts
	s.last = ""
	fmt.Fprintf(s.out, "\n%s\n\n", style.Title(title))
}

// Evaluate executes a bridge command.
func (s *Surface) Evaluate(script string) (string, error) {
	cmd, err := bridge.DecodeCommand(script)
	if err != nil {
		return "", err
	}

	switch cmd.Op {
	case bridge.OpHighlight:
		var args bridge.HighlightArgs
		if err := cmd.Decode(&args); err != nil {
			return "", err
		}
		s.printFragment(args.Fragment)
	case bridge.OpQueryPosition:
		var args bridge.QueryPositionArgs
		if err := cmd.Decode(&args); err != nil {
			return "", err
		}
		return fmt.Sprintf(`{"index":%d,"count":%d}`, lo.IndexOf(args.All, args.Fragment), len(args.All)), nil
	case bridge.OpUpdateState:
		var state bridge.State
		if err := cmd.Decode(&state); err != nil {
			return "", err
		}
		s.printState(state)
	case bridge.OpClearHighlight, bridge.OpEnsureVisible, bridge.OpNextPage:
	default:
		log.Warnf("console surface: unknown op %q", cmd.Op)
	}

	return "", nil
}

func (s *Surface) printFragment(fragment string) {
	if fragment == s.last {
		return
	}
	s.last = fragment

	text, ok := s.texts[fragment]
	if !ok || strings.TrimSpace(text) == "" {
		text = style.Faint("#" + fragment)
	}

	wrapped := wordwrap.String(text, util.Max(s.width-4, 20))
	fmt.Fprintln(s.out, indent.String(wrapped, 2))
}

// printState reports transitions between playing and stopped.
func (s *Surface) printState(state bridge.State) {
	if state.Playing == s.playing {
		return
	}
	s.playing = state.Playing

	symbol := icon.Get(icon.Pause)
	if state.Playing {
		symbol = icon.Get(icon.Play)
	}

	fmt.Fprintln(s.out, style.Status.Render(fmt.Sprintf("%s %d/%d  %s / %s",
		symbol,
		state.SegmentIndex+1,
		state.SegmentCount,
		smil.FormatClock(state.Position),
		smil.FormatClock(state.Duration),
	)))
}
