package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"MixFM/config"
	"MixFM/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check the MinIO blob store",
	Long:  `Connect to MinIO with the current configuration and verify a payload round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO config: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		fmt.Println("MinIO connection established.")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		payload := "MinIO connectivity check at " + time.Now().Format(time.RFC3339)
		key, err := store.Put(ctx, 0, strings.NewReader(payload), int64(len(payload)), "text/plain")
		if err != nil {
			log.Fatalf("Failed to write check object: %v", err)
		}
		if err := store.Remove(ctx, key); err != nil {
			log.Fatalf("Failed to remove check object: %v", err)
		}
		fmt.Println("MinIO payload round trip succeeded.")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
