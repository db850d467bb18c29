package main

import (
	"fmt"
	"os"

	"github.com/energylabel/elex/internal/codec"
	"github.com/energylabel/elex/internal/rating"
	"github.com/energylabel/elex/internal/render"
	"github.com/energylabel/elex/internal/session"
	"github.com/energylabel/elex/internal/spinner"
	"github.com/spf13/cobra"
)

func newCalibrateCommand(root *rootOptions) *cobra.Command {
	var (
		flags  sessionFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "calibrate [measurements.csv]",
		Short: "Derive rating boundaries from a measurement corpus",
		Long: `Derive rating boundaries from the indices of a measurement corpus.

Boundaries are chosen so that roughly 1-f1 of the models fall into A, f1-f2
into B and so on, where f1..f4 are the calibration fractions (default
0.8,0.6,0.4,0.2). Metrics without enough distinct indices keep their default
boundaries and are reported on stderr.

The boundaries payload is written to --output, or stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := loadProject(root)
			if err != nil {
				return err
			}
			sess, err := openSession(cfg, &flags, measurementsPath(cfg, args), session.Options{SkipCalibration: true})
			if err != nil {
				return err
			}
			defer sess.Close() //nolint:errcheck

			stderr := cmd.ErrOrStderr()
			var spin *spinner.Spinner
			if render.ColorEnabled(stderr) {
				spin = spinner.Start(stderr, "Calibrating boundaries")
			}
			snap, errs := sess.Calibrate(rating.Fractions{})
			if spin != nil {
				spin.Stop()
			}
			for _, err := range errs {
				fmt.Fprintf(stderr, "warning: %v\n", err) //nolint:errcheck
			}
			if err := render.NewPrinter(stderr).Boundaries(stderr, snap.Config.Boundaries, snap.Config.Task.Metrics()); err != nil {
				return err
			}

			data, err := sess.ExportBoundaries(f)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing boundaries: %w", err)
			}
			fmt.Fprintf(stderr, "Boundaries written to %s\n", output) //nolint:errcheck
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the boundaries payload to this file instead of stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Payload format: json or yaml")

	return cmd
}
