package main

import (
	"encoding/json"
	"fmt"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/render"
	"github.com/energylabel/elex/internal/session"
	"github.com/spf13/cobra"
)

func newShowCommand(root *rootOptions) *cobra.Command {
	var (
		flags  sessionFlags
		env    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "show [measurements.csv] <model>",
		Short: "Show the per-metric rating of one model",
		Long: `Show the rating of one model in every environment it was measured in.

Each summary lists the final rating followed by the value, index and rating
of every metric of the task. Metrics without a measurement print n.a.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be text or json", format)
			}
			model := args[len(args)-1]

			cfg, err := loadProject(root)
			if err != nil {
				return err
			}
			sess, err := openSession(cfg, &flags, measurementsPath(cfg, args[:len(args)-1]), session.Options{})
			if err != nil {
				return err
			}
			defer sess.Close() //nolint:errcheck

			snap := sess.Snapshot()
			task := snap.Config.Task
			var summaries []models.Summary
			if env != "" {
				s, err := snap.Summary(task, env, model)
				if err != nil {
					return err
				}
				summaries = []models.Summary{s}
			} else {
				summaries = snap.FindModel(task, model)
			}
			if len(summaries) == 0 {
				return fmt.Errorf("%w: %q has no %s measurements", session.ErrUnknownModel, model, task)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			return render.NewPrinter(out).Summaries(out, summaries)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&env, "env", "", "Only show this environment")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or json")

	return cmd
}
