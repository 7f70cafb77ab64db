package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/verify"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Reports the state of the raw collection and the word database",

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			var counter verify.EntryCounter
			if a.cfg.DB.DSN != "" {
				words, err := a.wordStore(cmd.Context())
				if err != nil {
					a.logger.Warn("word store unavailable", zap.Error(err))
				} else {
					defer words.Close()
					counter = words
				}
			}

			report := verify.Check(cmd.Context(), a.rawStore(), counter, a.logger)

			fmt.Fprintf(cmd.OutOrStdout(), "Collection: %s (%d entries)\n",
				report.CollectionStatus(), report.CollectionCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Database:   %s (%d records)\n",
				report.DatabaseStatus(), report.DatabaseCount)
			return nil
		},
	}
}
