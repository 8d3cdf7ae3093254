package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/walkid/orchestrator"
)

func newTrainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Cross-validate the configured classifiers and save the final model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, log, err := a.setup()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			start := time.Now()
			log.Infof("%s pipeline starting...", c.Pipeline.Name)
			p := orchestrator.NewPipeline(c, a.fs, log)
			p.Out = cmd.OutOrStdout()
			res, err := p.Run(ctx)
			if err != nil {
				if ctx.Err() == context.Canceled {
					log.Warn("interrupted")
				}
				return err
			}
			log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("pipeline finished")
			fmt.Fprintf(cmd.OutOrStdout(), "model written to %s\nreport written to %s\n", res.ModelPath, res.ReportPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64("seed", 0, "seed for fold shuffling and randomized models")
	f.Int("folds", 0, "number of cross-validation folds")
	f.Bool("shuffle", true, "shuffle windows before splitting into folds")
	f.StringSlice("models", nil, "model families to cross-validate (tree, forest, boosting, majority)")
	f.String("final", "", "model family fitted on all windows and saved")
	f.Int("workers", 0, "trees fitted concurrently by the forest")
	a.bind(f.Lookup("seed"), "evaluation.seed")
	a.bind(f.Lookup("folds"), "evaluation.n_folds")
	a.bind(f.Lookup("shuffle"), "evaluation.shuffle")
	a.bind(f.Lookup("models"), "evaluation.models")
	a.bind(f.Lookup("final"), "models.final")
	a.bind(f.Lookup("workers"), "models.forest.workers")
	return cmd
}
