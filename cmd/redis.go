package cmd

import (
	"context"
	"fmt"
	"time"

	"MwFM/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check Redis connectivity and show the play leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := db.ConnectRedis(cfg)
		if err != nil {
			return fmt.Errorf("redis check failed: %w", err)
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		counts, err := db.TopPlayed(ctx, client, 10)
		if err != nil {
			return err
		}

		fmt.Printf("Redis OK: %s:%s\n", cfg.RedisHost, cfg.RedisPort)
		for i, c := range counts {
			fmt.Printf("%2d. track %d - %d plays\n", i+1, c.TrackID, c.Plays)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
