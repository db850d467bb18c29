package main

import (
	"fmt"
	"io"

	"github.com/energylabel/elex/internal/metrics"
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/render"
	"github.com/energylabel/elex/internal/session"
	"github.com/spf13/cobra"
)

func newStatsCommand(root *rootOptions) *cobra.Command {
	var (
		flags   sessionFlags
		metricKeys []string
	)

	cmd := &cobra.Command{
		Use:   "stats [measurements.csv]",
		Short: "Describe the index distribution of each metric",
		Long: `Describe the index distribution of each metric of the task: count,
spread, the boundaries in effect and how many summaries fall into each
rating bin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject(root)
			if err != nil {
				return err
			}
			sess, err := openSession(cfg, &flags, measurementsPath(cfg, args), session.Options{})
			if err != nil {
				return err
			}
			defer sess.Close() //nolint:errcheck

			snap := sess.Snapshot()
			ids := snap.Config.Task.Metrics()
			if len(metricKeys) > 0 {
				ids = ids[:0]
				for _, key := range metricKeys {
					id, err := models.ParseMetricID(key)
					if err != nil {
						return err
					}
					ids = append(ids, id)
				}
			}

			out := cmd.OutOrStdout()
			p := render.NewPrinter(out)
			for i, id := range ids {
				d, err := snap.Distribution(id)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out) //nolint:errcheck
				}
				if err := writeDistribution(out, p, d); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringSliceVar(&metricKeys, "metric", nil, "Only describe these metric keys (repeatable)")

	return cmd
}

func writeDistribution(w io.Writer, p render.Printer, d metrics.Distribution) error {
	m := d.Metric.Metric()
	if _, err := fmt.Fprintf(w, "%s (%s, %s is better)\n", m.Label(), d.Metric, m.Direction); err != nil {
		return err
	}
	if d.Count == 0 {
		_, err := fmt.Fprintln(w, "  no defined indices")
		return err
	}
	if _, err := fmt.Fprintf(w, "  count %d  distinct %d  min %.3f  median %.3f  max %.3f\n",
		d.Count, d.Distinct, d.Min, d.Median, d.Max); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  mean %.3f (95%% CI %.3f..%.3f)  median 95%% CI %.3f..%.3f  std-dev %.3f\n",
		d.Mean, d.MeanCI95[0], d.MeanCI95[1], d.MedianCI95[0], d.MedianCI95[1], d.StdDev); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  boundaries %v  calibratable %t\n", d.Boundaries, d.Calibratable); err != nil {
		return err
	}
	return p.Histogram(w, d.Population)
}
