package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
)

type mapResult struct {
	ID      string            `json:"id"`
	Data    []core.FigiRecord `json:"data,omitempty"`
	Warning string            `json:"warning,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func newMapCmd(app *App) *cobra.Command {
	var (
		idType      string
		concurrency int
		filters     filterFlags
	)

	cmd := &cobra.Command{
		Use:   "map ID...",
		Short: "Map identifiers to FIGIs",
		Long: `Map one or more identifiers of the same type to FIGIs.

Identifiers are sent in batches of 5, or 100 with an API key. A batch
rejected as a whole, for example by a rate limit, fails the command.`,
		Example: `  figi map --id-type ID_ISIN US4592001014
  figi map --id-type TICKER --exch-code US AAPL IBM`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := filters.filterSet(cmd)
			if err != nil {
				return err
			}

			jobs := make([]*request.MappingRequest, 0, len(args))
			for i, id := range args {
				job, err := request.NewMappingBuilder().
					Filters(fs).
					IDType(core.IDType(idType)).
					IDValue(id).
					Build()
				if err != nil {
					return fmt.Errorf("%s (argument %d): %w", id, i+1, err)
				}
				jobs = append(jobs, job)
			}

			client, err := app.client()
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.MapAll(cmd.Context(), jobs, concurrency)
			if err != nil {
				return err
			}

			results := make([]mapResult, 0, len(jobs))
			for i, r := range res.All() {
				out := mapResult{ID: jobs[i].IDValue.String()}
				switch {
				case r.Err != nil && !core.IsItemError(r.Err):
					return r.Err
				case r.Err != nil:
					out.Error = itemMessage(r.Err)
				default:
					out.Data = r.Value.Data
					out.Warning = r.Value.Warning
				}
				results = append(results, out)
			}

			app.Logger.Debug().Int("jobs", len(jobs)).Msg("mapped identifiers")
			return writeMapResults(NewOutput(cmd), results)
		},
	}

	cmd.Flags().StringVar(&idType, "id-type", string(core.IDTypeTicker), "identifier type, see 'figi values idType'")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "batches sent at once when there are more identifiers than one batch holds")
	addFilterFlags(cmd, &filters)

	return cmd
}

func itemMessage(err error) string {
	if e, ok := core.AsError(err); ok {
		return e.Message
	}
	return err.Error()
}

func writeMapResults(output *Output, results []mapResult) error {
	if output.IsJSON() {
		return output.JSON(results)
	}

	var rows []recordRow
	for _, res := range results {
		switch {
		case res.Error != "":
			rows = append(rows, recordRow{Key: res.ID, Note: "error: " + res.Error})
		case len(res.Data) == 0:
			rows = append(rows, recordRow{Key: res.ID, Note: res.Warning})
		default:
			for _, rec := range res.Data {
				rows = append(rows, recordRow{Key: res.ID, Record: rec})
			}
		}
	}
	if err := output.Records("ID", rows); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
