package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/walkid/orchestrator"
)

func newInspectCmd(a *app) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a saved model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.setup()
			if err != nil {
				return err
			}
			if model == "" {
				model = filepath.Join(c.Paths.Outputs, c.Paths.ModelFile)
			}
			art, _, err := orchestrator.LoadArtifact(a.fs, model)
			if err != nil {
				return err
			}
			st, err := a.fs.Stat(model)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:     %s (%s)\n", model, humanize.Bytes(uint64(st.Size())))
			fmt.Fprintf(out, "format:    %s\n", art.Format)
			fmt.Fprintf(out, "created:   %s (%s)\n", art.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(art.CreatedAt))
			fmt.Fprintf(out, "family:    %s\n", art.Family)
			fmt.Fprintf(out, "speakers:  %s\n", strings.Join(art.Classes, ", "))
			fmt.Fprintf(out, "windows:   %s of %d samples every %d on %s\n",
				humanize.Comma(int64(art.Windows)), art.WindowSize, art.StepSize, art.Signal)
			fmt.Fprintf(out, "features:  %d (%s)\n", art.FeatureDim, strings.Join(art.FeatureNames, ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "model file (defaults to <output>/<model_file>)")
	return cmd
}
