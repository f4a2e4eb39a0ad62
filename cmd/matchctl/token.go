package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/imadgeboyega/kiekky-matchengine/internal/common/utils"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an access token for local testing of the HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseUserIDs(args)
		if err != nil {
			return err
		}
		ttl, _ := cmd.Flags().GetDuration("ttl")
		role, _ := cmd.Flags().GetString("role")

		cfg := loadConfig()
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to issue tokens in production")
		}

		claims := utils.NewAccessClaims(ids[0], ttl)
		claims.Role = role
		token, err := utils.GenerateJWT(claims, cfg.JWTSecret)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")
	tokenCmd.Flags().String("role", "", `role claim, "admin" unlocks the admin routes`)
}
