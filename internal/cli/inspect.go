package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kerraform/kota/internal/format"
	"github.com/kerraform/kota/internal/ota"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

const missingField = "-"

var now = time.Now

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file|-]",
		Short: "Summarize each entry of a local document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			res := ota.Normalize(raw)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DEVICE\tVERSION\tFILENAME\tSIZE\tDATE\tAGE")
			for _, item := range res.Document.Response {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					field(item.Get("device")),
					field(item.Get("version")),
					field(item.Get("filename")),
					size(item.Get("size")),
					date(item),
					age(item),
				)
			}
			return w.Flush()
		},
	}
}

func field(r gjson.Result) string {
	if s := r.String(); s != "" {
		return s
	}
	return missingField
}

func size(r gjson.Result) string {
	n := r.Int()
	if !r.Exists() || n <= 0 {
		return missingField
	}
	return fmt.Sprintf("%s (%s bytes)", format.FormatBytes(n, format.DefaultDecimals), humanize.Comma(n))
}

// timestamp reads the build time of either a derived or a raw entry.
func timestamp(item ota.Item) (int64, bool) {
	for _, f := range []string{"timestamp", "datetime"} {
		if ts := item.Get(f).Int(); ts > 0 {
			return ts, true
		}
	}
	return 0, false
}

func date(item ota.Item) string {
	ts, ok := timestamp(item)
	if !ok {
		return missingField
	}
	return format.FormatDate(ts)
}

func age(item ota.Item) string {
	ts, ok := timestamp(item)
	if !ok {
		return missingField
	}
	return humanize.RelTime(time.Unix(ts, 0), now(), "ago", "from now")
}
