package cmd

import (
	"os"

	"github.com/readalong-cli/readalong/color"
	"github.com/readalong-cli/readalong/config"
	"github.com/readalong-cli/readalong/style"
	"github.com/readalong-cli/readalong/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Display only environment variables that are currently defined")
	envCmd.Flags().BoolP("unset-only", "u", false, "Display only environment variables that are currently undefined")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
	envCmd.SetOut(os.Stdout)
}

// envCmd lists the environment variables that override the configuration.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Display the supported environment variables",
	Long:  `Display the environment variables that override configuration keys, with their current values.`,
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		names := []string{where.EnvConfigPath}
		for _, k := range config.EnvExposed {
			field := config.Default[k]
			names = append(names, field.Env())
		}
		slices.Sort(names)

		for _, env := range names {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.New().Bold(true).Foreground(color.Purple).Render(env))
			cmd.Print("=")

			if present {
				cmd.Println(style.Fg(color.Green)(value))
			} else {
				cmd.Println(style.Fg(color.Red)("unset"))
			}
		}
	},
}
