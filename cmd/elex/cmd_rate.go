package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/render"
	"github.com/energylabel/elex/internal/session"
	"github.com/spf13/cobra"
)

// rateReport is the JSON output of `elex rate`.
type rateReport struct {
	Config    session.Config   `json:"config"`
	Summaries []models.Summary `json:"summaries"`
	Issues    []string         `json:"issues,omitempty"`
}

func newRateCommand(root *rootOptions) *cobra.Command {
	var (
		flags     sessionFlags
		envs      []string
		format    string
		failBelow string
	)

	cmd := &cobra.Command{
		Use:   "rate [measurements.csv]",
		Short: "Rate every model of a measurement corpus",
		Long: `Rate every model of a measurement corpus and print the compound labels.

Without an argument the measurements file configured in .elex.yaml is used.
With --fail-below the command exits with status 1 when any model is rated
worse than the given label, which makes it usable as a CI gate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}
			var threshold *models.Rating
			if failBelow != "" {
				r, err := models.ParseRating(failBelow)
				if err != nil {
					return fmt.Errorf("--fail-below: %w", err)
				}
				threshold = &r
			}

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
			task := snap.Config.Task
			known := snap.Environments(task)
			for _, env := range envs {
				if !slices.Contains(known, env) {
					return fmt.Errorf("%w %q for task %s", session.ErrUnknownEnvironment, env, task)
				}
			}
			summaries := snap.Summaries(task, envs...)

			out := cmd.OutOrStdout()
			if format == "json" {
				if err := writeRateJSON(out, snap, summaries); err != nil {
					return err
				}
			} else {
				if err := render.NewPrinter(out).Ratings(out, task, summaries); err != nil {
					return err
				}
				for _, issue := range snap.Issues() {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", issue) //nolint:errcheck
				}
			}

			if threshold != nil {
				return checkThreshold(summaries, *threshold)
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringSliceVar(&envs, "env", nil, "Restrict output to these environments (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	cmd.Flags().StringVar(&failBelow, "fail-below", "", "Exit with status 1 when a model is rated worse than this label (A-E)")

	return cmd
}

func writeRateJSON(w io.Writer, snap *session.Snapshot, summaries []models.Summary) error {
	report := rateReport{Config: snap.Config, Summaries: summaries}
	if report.Summaries == nil {
		report.Summaries = []models.Summary{}
	}
	for _, issue := range snap.Issues() {
		report.Issues = append(report.Issues, issue.Error())
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// checkThreshold returns a *RatingBelowThresholdError naming every model
// whose compound rating is worse than threshold. Unrated models are ignored.
func checkThreshold(summaries []models.Summary, threshold models.Rating) error {
	var below []string
	for _, s := range summaries {
		if s.Compound != nil && *s.Compound > threshold {
			below = append(below, fmt.Sprintf("%s (%s): %s", s.Name, s.Environment, *s.Compound))
		}
	}
	if len(below) == 0 {
		return nil
	}
	return &RatingBelowThresholdError{
		Message: fmt.Sprintf("%d model(s) rated worse than %s: %s", len(below), threshold, strings.Join(below, ", ")),
	}
}
