package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
)

type pageFlags struct {
	start string
	all   bool
	limit int
}

func addPageFlags(cmd *cobra.Command, p *pageFlags) {
	cmd.Flags().StringVar(&p.start, "start", "", "cursor returned as next by a previous page")
	cmd.Flags().BoolVar(&p.all, "all", false, "follow next cursors and print every page")
	cmd.Flags().IntVar(&p.limit, "limit", 0, "stop after this many results with --all (0 means no limit)")
}

func newSearchCmd(app *App) *cobra.Command {
	var (
		page    pageFlags
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search instruments by keywords",
		Example: `  figi search ibm
  figi search --exch-code US --all --limit 250 apple`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := filters.filterSet(cmd)
			if err != nil {
				return err
			}
			req, err := request.NewSearchBuilder().
				Filters(fs).
				Query(strings.Join(args, " ")).
				Start(page.start).
				Build()
			if err != nil {
				return err
			}

			client, err := app.client()
			if err != nil {
				return err
			}
			defer client.Close()

			output := NewOutput(cmd)
			if page.all {
				var records []core.FigiRecord
				for rec, err := range client.SearchAll(cmd.Context(), req) {
					if err != nil {
						return err
					}
					records = append(records, rec)
					if page.limit > 0 && len(records) >= page.limit {
						break
					}
				}
				return writePage(output, core.SearchData{Data: records}, -1)
			}

			data, err := client.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writePage(output, *data, -1)
		},
	}

	addPageFlags(cmd, &page)
	addFilterFlags(cmd, &filters)

	return cmd
}

// writePage prints one page. total is omitted when negative.
func writePage(output *Output, data core.SearchData, total int) error {
	if output.IsJSON() {
		if total >= 0 {
			return output.JSON(core.FilterData{Data: data.Data, Next: data.Next, Total: total})
		}
		return output.JSON(data)
	}

	rows := make([]recordRow, len(data.Data))
	for i, rec := range data.Data {
		rows[i] = recordRow{Record: rec}
	}
	if err := output.Records("", rows); err != nil {
		return err
	}
	if total >= 0 {
		output.Printf("total: %d\n", total)
	}
	if data.Next != "" {
		output.Printf("next: %s\n", data.Next)
	}
	return nil
}
