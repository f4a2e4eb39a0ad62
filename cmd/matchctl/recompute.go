package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/imadgeboyega/kiekky-matchengine/internal/dating"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute [user-id...]",
	Short: "Recompute flagged compatibility records, for the given users or every stale one",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseUserIDs(args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		e, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		batch := dating.NewBatchRecomputer(e.service, e.repo, dating.BatchConfig{
			ChunkSize:  e.cfg.BatchChunkSize,
			ChunkDelay: e.cfg.BatchChunkDelay,
			StaleLimit: e.cfg.BatchStaleLimit,
		}, e.logger.Named("batch"))

		var summary *dating.BatchSummary
		if len(ids) > 0 {
			summary, err = batch.Run(ctx, ids)
		} else {
			summary, err = batch.RunStale(ctx)
		}
		if summary != nil {
			if perr := printJSON(summary); perr != nil {
				return perr
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().Int("chunk-size", 0, "users per chunk (env BATCH_CHUNK_SIZE)")
	recomputeCmd.Flags().Duration("chunk-delay", 0, "pause between chunks (env BATCH_CHUNK_DELAY)")

	viper.BindPFlag("chunk-size", recomputeCmd.Flags().Lookup("chunk-size"))
	viper.BindPFlag("chunk-delay", recomputeCmd.Flags().Lookup("chunk-delay"))
}
