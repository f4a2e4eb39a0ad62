package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imadgeboyega/kiekky-matchengine/internal/common/database"
	"github.com/imadgeboyega/kiekky-matchengine/internal/dating"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [user-id]",
	Short: "Refresh personality analysis for one user or every pending profile",
	Args:  cobra.MaximumNArgs(1),
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

		if len(ids) == 1 {
			analysis, err := e.service.AnalyzeUser(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			return printJSON(analysis)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		n, err := e.service.AnalyzePending(cmd.Context(), limit)
		if err != nil {
			return err
		}
		e.logger.Info("personality analysis refreshed", zap.Int("profiles", n))
		return nil
	},
}

var profileChangedCmd = &cobra.Command{
	Use:   "profile-changed <user-id>",
	Short: "Signal that a user's profile changed",
	Long: "Publishes the change on the profile channel so every running service flags the user's records. " +
		"With --local the records are flagged directly in the database instead.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseUserIDs(args)
		if err != nil {
			return err
		}
		local, _ := cmd.Flags().GetBool("local")

		if !local {
			cfg := loadConfig()
			client, err := database.NewRedisClientFromURL(cmd.Context(), cfg.RedisURL)
			if err != nil {
				return err
			}
			defer client.Close()

			publisher := dating.NewRedisPublisher(client, cfg.EventsChannelCompat, cfg.EventsChannelProfile)
			if err := publisher.PublishProfileChanged(cmd.Context(), ids[0]); err != nil {
				return err
			}
			fmt.Printf("published profile change for user %d on %s\n", ids[0], cfg.EventsChannelProfile)
			return nil
		}

		e, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		flagged, err := e.service.ProfileChanged(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		return printJSON(dating.ProfileChangedResponse{UserID: ids[0], RecordsFlagged: flagged})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the matching tables if they do not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := newEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		return database.Migrate(cmd.Context(), e.db, e.logger.Named("migrations"))
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(profileChangedCmd)
	rootCmd.AddCommand(migrateCmd)

	analyzeCmd.Flags().Int("limit", 500, "maximum pending profiles to analyze")
	profileChangedCmd.Flags().Bool("local", false, "flag records directly instead of publishing the event")
}
