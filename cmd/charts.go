package cmd

import (
	"context"
	"fmt"

	"MwFM/core/charts"

	"github.com/spf13/cobra"
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Fetch the external top-tracks chart and print it",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := charts.NewClient(cfg.ChartAPIURL, cfg.ChartTimeout, cfg.DefaultCoverPath)

		entries, err := client.TopSongs(context.Background())
		if err != nil {
			return err
		}

		for i, e := range entries {
			fmt.Printf("%2d. %s - %s\n", i+1, e.Artist, e.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
}
