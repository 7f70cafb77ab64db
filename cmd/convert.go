package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/compose"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert",
		Short: "Composes structured word records from the raw collection",
		Long: `Reads the raw page collection, derives translation, transcription,
part of speech and search tokens for every captured page, and inserts
the resulting records into Postgres in batches.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, false)
		},
	}
}

func newRebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Drops all word records and composes them again",

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, true)
		},
	}
}

func runConvert(cmd *cobra.Command, rebuild bool) error {
	a, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	store := a.rawStore()
	if !store.Attached() {
		return errors.New("raw collection not found; run harvest first")
	}
	collection, _ := store.Load()
	if len(collection) == 0 {
		return errors.New("raw collection is empty; run harvest first")
	}

	words, err := a.wordStore(cmd.Context())
	if err != nil {
		return err
	}
	defer words.Close()

	if rebuild {
		if err := words.DeleteAll(cmd.Context()); err != nil {
			return fmt.Errorf("clear word records: %w", err)
		}
		a.logger.Info("word records cleared before rebuild")
	}

	converter := compose.NewConverter(collection, words, a.logger, a.cfg.Convert.Workers)
	saved, err := converter.Run(cmd.Context(), a.cfg.Convert.BatchSize)
	if err != nil {
		return fmt.Errorf("run convert: %w", err)
	}

	a.logger.Info("convert finished",
		zap.Int("collection_entries", len(collection)),
		zap.Int("records_saved", saved),
	)
	return nil
}
