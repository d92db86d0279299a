package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"openfigi/pkg/core"
	"openfigi/pkg/request"
)

func newFilterCmd(app *App) *cobra.Command {
	var (
		page    pageFlags
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "filter [QUERY...]",
		Short: "List instruments matching filter criteria",
		Example: `  figi filter --security-type2 Option --expiration 2026-01-01:2026-06-30 aapl
  figi filter --exch-code US --market-sec-des Equity --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := filters.filterSet(cmd)
			if err != nil {
				return err
			}
			req, err := request.NewFilterBuilder().
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
				for rec, err := range client.FilterAll(cmd.Context(), req) {
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

			data, err := client.Filter(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writePage(output, core.SearchData{Data: data.Data, Next: data.Next}, data.Total)
		},
	}

	addPageFlags(cmd, &page)
	addFilterFlags(cmd, &filters)

	return cmd
}
