package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"openfigi/pkg/core"
)

func newValuesCmd(app *App) *cobra.Command {
	keys := make([]string, 0, len(core.ValueKeys()))
	for _, k := range core.ValueKeys() {
		keys = append(keys, string(k))
	}

	return &cobra.Command{
		Use:       "values KEY",
		Short:     "List the values accepted for a mapping field",
		Long:      "List the values accepted for a mapping field. KEY is one of: " + strings.Join(keys, ", ") + ".",
		Example:   `  figi values exchCode`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := core.ValueKey(args[0])
			if !key.Valid() {
				return fmt.Errorf("unknown key %q, expected one of: %s", args[0], strings.Join(keys, ", "))
			}

			client, err := app.client()
			if err != nil {
				return err
			}
			defer client.Close()

			values, err := client.MappingValues(cmd.Context(), key)
			if err != nil {
				return err
			}

			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(values)
			}
			for _, v := range values {
				output.Printf("%s\n", v)
			}
			return nil
		},
	}
}
