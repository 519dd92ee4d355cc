package cmd

import (
	"fmt"

	"MwFM/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check MinIO connectivity",
	Long:  `Connect to the configured MinIO endpoint and ensure the bucket exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := storage.NewMinioStore(cfg)
		if err != nil {
			return fmt.Errorf("minio check failed: %w", err)
		}
		fmt.Printf("MinIO OK: endpoint=%s bucket=%s\n", cfg.MinioEndpoint, cfg.MinioBucket)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
