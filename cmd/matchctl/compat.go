package main

import (
	"github.com/spf13/cobra"

	"github.com/imadgeboyega/kiekky-matchengine/internal/dating"
)

var compatCmd = &cobra.Command{
	Use:   "compat <user-id> <user-id>",
	Short: "Compute and store the compatibility record of one pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseUserIDs(args)
		if err != nil {
			return err
		}

		e, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		record, err := e.service.ComputePair(cmd.Context(), ids[0], ids[1])
		if err != nil {
			return err
		}
		return printJSON(record)
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover <user-id>",
	Short: "Print the ranked discovery candidates for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseUserIDs(args)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ranker := dating.NewRankingService(e.repo, dating.RankingConfig{
			DefaultLimit:  e.cfg.RankingDefaultLimit,
			MaxLimit:      e.cfg.RankingMaxLimit,
			CandidatePool: e.cfg.RankingCandidatePool,
			MinScore:      e.cfg.RankingMinScore,
			Workers:       e.cfg.RankingWorkers,
		}, e.logger.Named("ranking"))

		candidates, err := ranker.RankCandidates(cmd.Context(), ids[0], dating.RankOptions{Limit: limit})
		if err != nil {
			return err
		}
		return printJSON(candidates)
	},
}

func init() {
	rootCmd.AddCommand(compatCmd)
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().IntP("limit", "l", 0, "number of candidates (default RANKING_DEFAULT_LIMIT)")
}
