package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/readalong-cli/readalong/color"
	"github.com/readalong-cli/readalong/open"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget is an application path and the flag that prints it alone.
type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"History", where.History, "history", mo.Some("s"), false},
	{"Temp", where.Temp, "temp", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if short, ok := n.argShort.Get(); ok {
			whereCmd.Flags().BoolP(n.argLong, short, false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.argLong, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.argLong))
		}
	}

	whereCmd.Flags().BoolP("open", "o", false, "Open the selected path with the default application")

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.SetOut(os.Stdout)
}

// whereCmd displays the filesystem paths used by the application.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Display the paths of the config, logs and history files",
	Run: func(cmd *cobra.Command, args []string) {
		headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render

		for _, n := range wherePaths {
			if lo.Must(cmd.Flags().GetBool(n.argLong)) {
				if lo.Must(cmd.Flags().GetBool("open")) {
					handleErr(open.Start(n.where()))
					return
				}
				cmd.Println(n.where())
				return
			}
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(fmt.Errorf("--open needs one of %s", strings.Join(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
				return "--" + t.argLong
			}), ", ")))
		}

		visible := lo.Filter(wherePaths, func(t *whereTarget, _ int) bool {
			return !t.hidden
		})

		for i, n := range visible {
			cmd.Printf("%s %s\n", headerStyle(n.name+"?"), style.Fg(color.Yellow)("--"+n.argLong))
			cmd.Println(n.where())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}
