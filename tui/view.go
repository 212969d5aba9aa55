package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/lo"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
	fragmentStyle         = lipgloss.NewStyle().PaddingLeft(2)
	activeFragmentStyle   = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder(), false, false, false, true).
				BorderForeground(style.AccentColor).
				PaddingLeft(1)
)

func (r *Reader) View() string {
	var output string

	switch r.state {
	case chaptersState:
		output = listExtraPaddingStyle.Render(r.chaptersC.View())
	default:
		output = r.viewRead()
	}

	return r.notifier.View(output)
}

func (r *Reader) viewRead() string {
	lines := []string{r.viewHeader(), ""}

	switch {
	case r.engine != nil && r.engine.State() == overlay.Unsupported:
		lines = append(lines, style.ErrorTitle("No narration"), "", style.Faint(overlay.ErrUnsupported.Error()))
	case len(r.fragments) == 0:
		lines = append(lines, style.Faint(overlay.ErrNoSegments.Error()))
	default:
		lines = append(lines, r.viewPage()...)
		lines = append(lines, "", r.viewStatus())
	}

	return r.renderLines(r.options.ShowHelp, lines)
}

func (r *Reader) viewHeader() string {
	header := style.Title(lo.CoalesceOrEmpty(r.options.Book.Title, "Untitled"))
	if title := r.status.ChapterTitle; title != "" {
		header += " " + style.Fg(style.SecondaryColor)(title)
	}
	return header
}

func (r *Reader) viewPage() []string {
	width := util.Max(r.width-4, 20)

	var lines []string
	for _, fragment := range r.fragments[r.top : r.top+r.visibleCount()] {
		text := strings.TrimSpace(r.texts[fragment])
		if text == "" {
			text = "#" + fragment
		}
		text = wordwrap.String(text, width)

		if fragment == r.active {
			s := style.Active
			if r.status.Playing {
				s = s.Inherit(style.Playing)
			}
			lines = append(lines, activeFragmentStyle.Render(s.Render(text)))
		} else {
			lines = append(lines, fragmentStyle.Render(style.Passive.Render(text)))
		}
	}

	return lines
}

func (r *Reader) viewStatus() string {
	symbol := icon.Get(icon.Stop)
	switch {
	case r.status.Playing:
		symbol = icon.Get(icon.Play)
	case r.status.Enabled:
		symbol = icon.Get(icon.Pause)
	}

	clock := fmt.Sprintf("%s / %s", smil.FormatClock(r.status.Position), smil.FormatClock(r.status.Duration))
	if r.engine != nil && r.engine.SeekPending() {
		clock = r.spinnerC.View() + clock
	}

	var ratio float64
	if r.status.Duration > 0 {
		ratio = r.status.Position / r.status.Duration
	}

	status := fmt.Sprintf("%s %d/%d  %s", symbol, r.status.SegmentIndex+1, r.status.SegmentCount, clock)
	if !r.status.Enabled {
		status += "  " + style.Faint("narration off")
	}

	return style.Status.Render(status) + "  " + r.progressC.ViewAs(ratio)
}

func (r *Reader) renderLines(addHelp bool, lines []string) string {
	l := strings.Join(lines, "\n")
	if addHelp {
		if h := lipgloss.Height(l); r.height > h {
			l += strings.Repeat("\n", r.height-h)
		}
		l += r.helpC.View(r.keymap)
	}

	return paddingStyle.Render(l)
}
