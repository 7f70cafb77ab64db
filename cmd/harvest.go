package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/harvest"
)

func newHarvestCmd() *cobra.Command {
	var missingOnly bool

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Collects raw dictionary pages into the local JSON store",
		Long: `Walks the dictionary page index in batches, fetching each page in
all three locales and appending the captured fragments to the local
collection file. Progress is flushed after every batch, so an
interrupted run resumes where it left off.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			client, err := harvest.NewClient(a.cfg.Harvest)
			if err != nil {
				return fmt.Errorf("init harvest client: %w", err)
			}

			h := harvest.New(client, a.rawStore(), a.logger, a.cfg.Harvest)
			h.LoadProgress()

			if missingOnly {
				err = h.RunMissing(cmd.Context())
			} else {
				err = h.Run(cmd.Context())
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("run harvest: %w", err)
			}

			a.logger.Info("harvest finished", zap.Bool("missing_only", missingOnly))
			return nil
		},
	}

	cmd.Flags().BoolVar(&missingOnly, "missing-only", false, "revisit only pages on the missing list")
	return cmd
}
