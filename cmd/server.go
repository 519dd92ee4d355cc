package cmd

import (
	"MwFM/server"

	"github.com/spf13/cobra"
)

var serverPort string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the MwFM HTTP server",
	Long:  `Start the MwFM catalog server: upload ingestion, aggregated views, and chart proxies.`,
	Run: func(cmd *cobra.Command, args []string) {
		if serverPort != "" {
			cfg.ServerPort = serverPort
		}
		server.Start(cfg)
	},
}

func init() {
	serverCmd.Flags().StringVarP(&serverPort, "port", "p", "", "port to listen on (overrides SERVER_PORT)")
	rootCmd.AddCommand(serverCmd)
}
