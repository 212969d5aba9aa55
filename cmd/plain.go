package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/console"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/key"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/smil"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/timeline"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// seekStep is how far the f and r commands move, in seconds.
const seekStep = 10

const plainHelp = `commands:
  p, enter    play or pause
  n, b        next or previous segment
  f, r        forward or back 10 seconds
  seek <t>    seek to a chapter time (90, 1:30, 2.5min)
  e           turn narration on or off
  s           stop
  q           quit`

type plainOptions struct {
	chapter int
	// chosen is set when the chapter came from a flag or the history
	chosen     bool
	restore    mo.Option[overlay.Progress]
	continuous bool
	engine     overlay.Options
}

// playPlain narrates on the console. Commands are read line by line from
// standard input, and playback continues when it is closed.
func playPlain(cmd *cobra.Command, s *session, player *audio.Service, options plainOptions) error {
	out := cmd.OutOrStdout()

	if !options.chosen && term.IsTerminal(int(os.Stdin.Fd())) {
		chapter, err := pickChapter(s.book, options.chapter)
		if err != nil {
			return err
		}
		options.chapter = chapter
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	surface := console.New(out, 0)
	loop := overlay.NewLoop()
	defer loop.Close()

	engine := overlay.New(s.book, player, bridge.NewScripted(surface), loop, options.engine)

	finished := make(chan struct{})
	var finishOnce sync.Once

	load := func(chapter int) {
		engine.SurfaceReady(false)
		engine.LoadChapter(chapter)
		chapter = engine.Chapter()
		surface.SetChapter(chapterTitle(s.book, chapter), s.texts(chapter, timeline.Fragments(engine.Segments())))
	}

	loop.Do(func() {
		engine.OnProgress(s.saveProgress)
		engine.OnNotify(func(n overlay.Notification) {
			printNotification(out, n)
			if !errors.Is(n, overlay.ErrEndOfContent) {
				return
			}

			if options.continuous {
				next, ok := lo.Find(s.book.Narrated(), func(i int) bool { return i > engine.Chapter() })
				if ok {
					loop.Post(func() {
						load(next)
						engine.SurfaceReady(true)
						engine.Play()
					})
					return
				}
			}
			finishOnce.Do(func() { close(finished) })
		})

		load(options.chapter)
		if p, ok := options.restore.Get(); ok {
			engine.SetPendingRestore(p)
		}
		engine.SurfaceReady(true)
		engine.Play()
	})

	defer loop.Do(func() {
		engine.Stop()
		engine.Dispose()
	})

	lines := readLines(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-finished:
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}

			quit := false
			loop.Do(func() { quit = plainCommand(out, engine, line) })
			if quit {
				return nil
			}
		}
	}
}

// plainCommand runs one console command and reports whether to quit.
func plainCommand(out io.Writer, engine *overlay.Engine, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		engine.Toggle()
		return false
	}

	position := func() float64 {
		p, ok := engine.Snapshot().Get()
		if !ok {
			return 0
		}
		return p.Position.OrElse(0)
	}

	switch strings.ToLower(fields[0]) {
	case "p", "play", "pause":
		engine.Toggle()
	case "n", "next":
		engine.Next()
	case "b", "prev", "previous":
		engine.Previous()
	case "f":
		engine.Seek(position() + seekStep)
	case "r":
		engine.Seek(lo.Max([]float64{position() - seekStep, 0}))
	case "seek":
		if len(fields) < 2 {
			fmt.Fprintln(out, style.Faint("seek needs a time"))
			break
		}
		seconds, ok := smil.ParseClock(fields[1]).Get()
		if !ok {
			fmt.Fprintln(out, style.Faint(fmt.Sprintf("invalid time %q", fields[1])))
			break
		}
		engine.Seek(seconds)
	case "e":
		engine.SetEnabled(!engine.Enabled())
	case "s", "stop":
		engine.Stop()
	case "q", "quit", "exit":
		return true
	case "h", "help", "?":
		fmt.Fprintln(out, style.Faint(plainHelp))
	default:
		fmt.Fprintln(out, style.Faint(fmt.Sprintf("unknown command %q, type ? for help", fields[0])))
	}

	return false
}

// readLines sends the lines of r until it is exhausted.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// pickChapter asks which narrated chapter to start from.
func pickChapter(book *overlay.Book, current int) (int, error) {
	narrated := book.Narrated()
	if len(narrated) == 0 {
		return current, nil
	}

	options := lo.Map(narrated, func(i int, _ int) string {
		return fmt.Sprintf("%d. %s", i+1, chapterTitle(book, i))
	})

	prompt := &survey.Select{
		Message:  "Start from",
		Options:  options,
		PageSize: viper.GetInt(key.TUIPageSize),
	}
	if i := lo.IndexOf(narrated, current); i >= 0 {
		prompt.Default = options[i]
	}

	var picked int
	if err := survey.AskOne(prompt, &picked); err != nil {
		return 0, err
	}
	return narrated[picked], nil
}

func chapterTitle(book *overlay.Book, chapter int) string {
	if chapter < 0 || chapter >= len(book.Chapters) {
		return book.Title
	}
	return book.Chapters[chapter].Title
}

func printNotification(out io.Writer, n overlay.Notification) {
	symbol, paint := icon.Get(icon.Info), style.Fg(style.Subtext)
	switch n.Kind {
	case overlay.Warning:
		symbol, paint = icon.Get(icon.Warn), style.Fg(style.WarningColor)
	case overlay.Error:
		symbol, paint = icon.Get(icon.Fail), style.Fg(style.ErrorColor)
	}
	fmt.Fprintln(out, paint(symbol+" "+n.Message))
}
