package cmd

import (
	"time"

	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/key"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/overlay"
	"github.com/readalong-cli/readalong/tui"
	"github.com/readalong-cli/readalong/util"
	"github.com/readalong-cli/readalong/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(playCmd)

	addChapterFlag(playCmd)
	playCmd.Flags().Bool("plain", false, "Print the narrated text line by line instead of the reader")
	playCmd.Flags().Bool("no-restore", false, "Start from the chosen chapter instead of the saved position")
	playCmd.Flags().Bool("continuous", false, "Continue with the next narrated chapter when one ends")

	playCmd.Flags().Int("page-size", 0, "Fragments per reader page")
	lo.Must0(viper.BindPFlag(key.TUIPageSize, playCmd.Flags().Lookup("page-size")))
}

// playCmd opens a book and narrates it.
var playCmd = &cobra.Command{
	Use:     "play <book.epub>",
	Short:   "Read a book along with its narration",
	Example: "  readalong play book.epub --chapter 3\n  readalong play book.epub --chapter prologue --plain",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := util.Delete(where.Temp()); err != nil {
			log.Warnf("temp: %v", err)
		}

		binary := viper.GetString(key.PlayerMpvPath)
		handleErr(checkPlayer(binary))

		s, err := newSession(args[0])
		handleErr(err)
		defer s.Close()

		chosen, err := chapterFlag(cmd, s.book)
		handleErr(err)

		restore := mo.None[overlay.Progress]()
		if !lo.Must(cmd.Flags().GetBool("no-restore")) && chosen.IsAbsent() {
			restore = s.restore()
		}

		chapter := chosen.OrElse(firstNarrated(s.book))
		if p, ok := restore.Get(); ok {
			chapter = p.ChapterIndex
		}

		options := overlay.Options{
			ActiveClass:  viper.GetString(key.OverlayActiveClass),
			PlayingClass: viper.GetString(key.OverlayPlayingClass),
			TickInterval: time.Duration(viper.GetInt(key.OverlayTickInterval)) * time.Millisecond,
		}
		continuous := lo.Must(cmd.Flags().GetBool("continuous"))
		player := audio.NewService(audio.NewMPV(binary))

		log.With(log.Fields{"book": s.book.ID, "chapter": chapter, "restore": restore.IsPresent()}).Infof("playing %s", s.path)

		if lo.Must(cmd.Flags().GetBool("plain")) {
			handleErr(playPlain(cmd, s, player, plainOptions{
				chapter:    chapter,
				chosen:     chosen.IsPresent() || restore.IsPresent(),
				restore:    restore,
				continuous: continuous,
				engine:     options,
			}))
			return
		}

		reader := tui.New(tui.Options{
			Book:       s.book,
			Texts:      s.texts,
			Chapter:    chapter,
			Restore:    restore,
			PageSize:   viper.GetInt(key.TUIPageSize),
			ShowHelp:   viper.GetBool(key.TUIShowHelp),
			Continuous: continuous,
		})
		engine := overlay.New(s.book, player, bridge.NewScripted(reader), reader, options)
		reader.Attach(engine)
		engine.OnProgress(s.saveProgress)

		handleErr(tui.Run(reader))
	},
}
