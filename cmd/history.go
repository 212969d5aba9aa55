package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/readalong-cli/readalong/color"
	"github.com/readalong-cli/readalong/history"
	"github.com/readalong-cli/readalong/icon"
	"github.com/readalong-cli/readalong/style"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	historyCmd.Flags().Bool("clear", false, "Forget every saved position")
	historyCmd.Flags().String("remove", "", "Forget the saved position of a book id")
	historyCmd.SetOut(os.Stdout)

	historyCmd.AddCommand(historySchemaCmd)
	historySchemaCmd.SetOut(os.Stdout)
}

// historyCmd lists the saved reading positions.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show saved reading positions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("clear")) {
			handleErr(history.Clear())
			cmd.Printf("%s history cleared\n", style.Fg(color.Green)(icon.Get(icon.Success)))
			return
		}

		if id := lo.Must(cmd.Flags().GetString("remove")); id != "" {
			record, ok, err := history.Find(id)
			handleErr(err)
			if !ok {
				handleErr(fmt.Errorf("no saved position for %q", id))
			}
			handleErr(history.Remove(record))
			cmd.Printf("%s removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), record.Title)
			return
		}

		records, err := history.All()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(records))
			return
		}

		if len(records) == 0 {
			cmd.Println(style.Faint("no saved positions"))
			return
		}

		for _, record := range records {
			cmd.Println(record.String())
			cmd.Println(style.Faint(fmt.Sprintf("  %s  %s  %s",
				record.BookID,
				record.Path,
				record.UpdatedAt.Format("2006-01-02 15:04"),
			)))
		}
	},
}

var historySchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of a history record",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(recordSchema()))
	},
}

func recordSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		Mapper:         optionSchema,
		ExpandedStruct: true,
	}
	return reflector.Reflect(&history.Record{})
}

// optionSchema describes optional values, which are encoded as null when
// absent.
func optionSchema(t reflect.Type) *jsonschema.Schema {
	nullable := func(kind string) *jsonschema.Schema {
		return &jsonschema.Schema{AnyOf: []*jsonschema.Schema{{Type: kind}, {Type: "null"}}}
	}

	switch t {
	case reflect.TypeOf(mo.Option[float64]{}):
		return nullable("number")
	case reflect.TypeOf(mo.Option[string]{}):
		return nullable("string")
	}
	return nil
}
