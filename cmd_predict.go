package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/walkid/orchestrator"
)

func newPredictCmd(a *app) *cobra.Command {
	var (
		model  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "predict recording.csv [recording.csv...]",
		Short: "Name the walker of each recording with a saved model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, log, err := a.setup()
			if err != nil {
				return err
			}
			if model == "" {
				model = filepath.Join(c.Paths.Outputs, c.Paths.ModelFile)
			}
			p, err := orchestrator.NewPredictor(a.fs, model, c.Data, log)
			if err != nil {
				return err
			}
			log.WithField("model", model).Infof("Loaded %s classifier for %d speakers", p.Artifact.Family, len(p.Artifact.Classes))

			var preds []*orchestrator.FilePrediction
			for _, path := range args {
				pred, err := p.PredictFile(path)
				if err != nil {
					return err
				}
				preds = append(preds, pred)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(preds)
			}
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Recording", "Windows", "Speaker", "Votes"})
			for _, pred := range preds {
				table.Append([]string{
					pred.Path,
					strconv.Itoa(len(pred.Windows)),
					pred.Speaker,
					votes(pred.Votes),
				})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model file (defaults to <output>/<model_file>)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print per-window predictions as JSON")
	return cmd
}

// votes renders a vote map as "alice:3 bob:1", most voted first.
func votes(m map[string]int) string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if m[names[i]] != m[names[j]] {
			return m[names[i]] > m[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s:%d", n, m[n])
	}
	return strings.Join(parts, " ")
}
