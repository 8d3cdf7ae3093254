package evaluate

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Summary renders the mean metrics of each report as a table, one row per family. names maps labels to
// display names; labels without a name are printed as numbers.
func Summary(w io.Writer, reports []*Report, names func(label int) string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"model", "folds", "accuracy", "precision", "recall"})
	table.SetAutoWrapText(false)
	for _, r := range reports {
		table.Append([]string{
			r.Family,
			strconv.Itoa(len(r.Folds)),
			fmt.Sprintf("%.4f", r.Mean.Accuracy),
			perLabel(r.Labels, r.Mean.Precision, names),
			perLabel(r.Labels, r.Mean.Recall, names),
		})
	}
	table.Render()
}

func perLabel(labels []int, values []float64, names func(int) string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		name := strconv.Itoa(l)
		if names != nil {
			if n := names(l); n != "" {
				name = n
			}
		}
		parts[i] = fmt.Sprintf("%s=%.3f", name, values[i])
	}
	return strings.Join(parts, " ")
}

func round(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Round(x*1e4) / 1e4
	}
	return out
}
