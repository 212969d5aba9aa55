package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/readalong-cli/readalong/color"
	"github.com/readalong-cli/readalong/config"
	"github.com/readalong-cli/readalong/filesystem"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/query"
	"github.com/readalong-cli/readalong/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Only show these keys")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	lo.Must0(configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys))
	configInfoCmd.SetOut(os.Stdout)

	configCmd.AddCommand(configGetCmd)
	configGetCmd.SetOut(os.Stdout)

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	configCmd.AddCommand(configDeleteCmd)

	configCmd.AddCommand(configResetCmd)
	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
}

// configCmd groups the configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change the configuration",
}

// configInfoCmd describes the configuration keys grouped by section.
var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the configuration keys",
	Run: func(cmd *cobra.Command, args []string) {
		fields := lo.Values(config.Default)
		if keys := lo.Must(cmd.Flags().GetStringSlice("key")); len(keys) > 0 {
			fields = lo.Map(keys, func(k string, _ int) config.Field {
				return field(k)
			})
		}
		sort.Slice(fields, func(i, j int) bool {
			return fields[i].Key < fields[j].Key
		})

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(fields))
			return
		}

		sections := lo.GroupBy(fields, func(f config.Field) string {
			section, _, _ := strings.Cut(f.Key, ".")
			return section
		})
		names := lo.Keys(sections)
		sort.Strings(names)

		for i, name := range names {
			cmd.Println(style.Title(name))
			cmd.Println()
			for _, f := range sections[name] {
				cmd.Println(f.Pretty())
				cmd.Println()
			}
			if i < len(names)-1 {
				cmd.Println()
			}
		}
	},
}

// configGetCmd prints the effective value of a key.
var configGetCmd = &cobra.Command{
	Use:               "get <key>",
	Short:             "Print the value of a key",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		f := field(args[0])
		cmd.Println(viper.Get(f.Key))
	},
}

// configSetCmd checks a value against its key and saves it.
var configSetCmd = &cobra.Command{
	Use:               "set <key> <value>...",
	Short:             "Change the value of a key",
	Example:           "  readalong config set overlay.tick_interval 200\n  readalong config set icons.variant nerd",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		f := field(args[0])

		value, err := f.Parse(args[1:])
		handleErr(err)

		viper.Set(f.Key, value)
		handleErr(saveConfig())

		fmt.Printf("%s %s = %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(f.Key),
			style.Fg(color.Yellow)(fmt.Sprint(value)),
		)
	},
}

// configResetCmd restores keys to their defaults.
var configResetCmd = &cobra.Command{
	Use:               "reset [key]...",
	Short:             "Restore keys to their default values",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		all := lo.Must(cmd.Flags().GetBool("all"))
		if all == (len(args) > 0) {
			handleErr(errors.New("name the keys to reset or pass --all"))
		}

		fields := lo.Map(args, func(k string, _ int) config.Field { return field(k) })
		if all {
			fields = lo.Values(config.Default)
		}

		for _, f := range fields {
			viper.Set(f.Key, f.Value)
		}
		handleErr(saveConfig())

		if all {
			fmt.Printf("%s every key reset\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}
		for _, f := range fields {
			fmt.Printf("%s %s = %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Fg(color.Purple)(f.Key),
				style.Fg(color.Yellow)(fmt.Sprint(f.Value)),
			)
		}
	},
}

// configWriteCmd writes the effective configuration to the config file.
var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the effective configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("force")) {
			if err := filesystem.API().Remove(config.File()); err != nil && !os.IsNotExist(err) {
				handleErr(err)
			}
		}

		handleErr(viper.SafeWriteConfigAs(config.File()))
		fmt.Printf("%s wrote %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), config.File())
	},
}

// configDeleteCmd removes the config file, leaving defaults and environment.
var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"remove"},
	Short:   "Delete the config file",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(config.File()))
		fmt.Printf("%s deleted %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), config.File())
	},
}

// field returns the definition of k, exiting with a suggestion when k is
// unknown.
func field(k string) config.Field {
	f, ok := config.Default[k]
	if !ok {
		handleErr(errUnknownKey(k))
	}
	return f
}

func errUnknownKey(k string) error {
	msg := fmt.Sprintf("unknown key %s", style.Fg(color.Red)(k))
	if closest, ok := query.Suggest(k, lo.Keys(config.Default)).Get(); ok {
		msg += fmt.Sprintf(", did you mean %s?", style.Fg(color.Yellow)(closest))
	}
	return errors.New(msg)
}

// saveConfig writes viper's values, creating the config file when missing.
func saveConfig() error {
	err := viper.WriteConfig()
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return viper.SafeWriteConfigAs(config.File())
	}
	return err
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}
