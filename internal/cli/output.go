package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"openfigi/pkg/core"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer io.Writer
	format string
}

// NewOutput creates an Output for the --output flag of cmd.
func NewOutput(cmd *cobra.Command) *Output {
	format, _ := cmd.Flags().GetString("output")
	return &Output{
		writer: cmd.OutOrStdout(),
		format: format,
	}
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.format == OutputJSON
}

// JSON writes data as indented JSON.
func (o *Output) JSON(data any) error {
	b, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(o.writer, string(b))
	return err
}

func (o *Output) Printf(format string, args ...any) {
	fmt.Fprintf(o.writer, format, args...)
}

// Records writes one row per record. A non-empty prefix column is prepended
// to every row, used by map to show which identifier a row belongs to.
func (o *Output) Records(prefix string, rows []recordRow) error {
	tw := tabwriter.NewWriter(o.writer, 0, 0, 2, ' ', 0)
	if prefix != "" {
		fmt.Fprintf(tw, "%s\t", prefix)
	}
	fmt.Fprintln(tw, "FIGI\tTICKER\tEXCH\tNAME\tSECURITY TYPE\tMARKET\tNOTE")
	for _, row := range rows {
		if prefix != "" {
			fmt.Fprintf(tw, "%s\t", row.Key)
		}
		r := row.Record
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			dash(r.FIGI), dash(r.Ticker), dash(r.ExchCode), dash(r.Name),
			dash(r.SecurityType), dash(r.MarketSector), row.Note)
	}
	return tw.Flush()
}

type recordRow struct {
	Key    string
	Record core.FigiRecord
	Note   string
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
