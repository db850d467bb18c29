package main

import (
	"fmt"

	"github.com/energylabel/elex/internal/render"
	"github.com/energylabel/elex/internal/session"
	"github.com/spf13/cobra"
)

func newJournalCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "journal <journal.jsonl>",
		Short: "View the configuration timeline of a session journal",
		Long: `View a session journal written with --journal or paths.journal.

Each line shows the offset from the session start, the configuration
version, the event and its data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := session.ReadEvents(args[0])
			if err != nil {
				return fmt.Errorf("reading journal: %w", err)
			}
			out := cmd.OutOrStdout()
			return render.NewPrinter(out).Timeline(out, events)
		},
	}
}
