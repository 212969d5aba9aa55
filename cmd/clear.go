package cmd

import (
	"fmt"

	"github.com/readalong-cli/readalong/history"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/util"
	"github.com/readalong-cli/readalong/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget is an application artifact that can be removed.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	clear    func() error
}

var clearTargets = []clearTarget{
	{"history", "history", mo.Some("s"), history.Clear},
	{"staged audio", "temp", mo.Some("t"), func() error { return util.Delete(where.Temp()) }},
	{"logs", "logs", mo.Some("l"), func() error { return util.Delete(where.Logs()) }},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if short, ok := target.argShort.Get(); ok {
			clearCmd.Flags().BoolP(target.argLong, short, false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes saved progress, staged audio and logs.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear saved progress, staged audio and logs",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			handleErr(target.clear())
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), target.name)
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
