// Package storage wires the optional remote source store for the engine
package storage

import (
	"context"
	"log"

	"github.com/UnendingLoop/WatermarkStudio/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/retry"
)

type connectFunc func(ctx context.Context, opts miniostorage.Options) (*miniostorage.MinioSourceStore, error)

// NewSourceStore connects to minio if MINIO_ENDPOINT is set; nil means remote sources are disabled.
func NewSourceStore(ctx context.Context, cfg *config.Config, strategy retry.Strategy) *miniostorage.MinioSourceStore {
	return connectWithRetry(ctx, optionsFromConfig(cfg), strategy, miniostorage.NewMinioClient)
}

func optionsFromConfig(cfg *config.Config) miniostorage.Options {
	return miniostorage.Options{
		Endpoint: cfg.GetString("MINIO_ENDPOINT"),
		User:     cfg.GetString("MINIO_USER"),
		Pass:     cfg.GetString("MINIO_PASS"),
		Bucket:   cfg.GetString("BUCKET_NAME"),
		Secure:   cfg.GetBool("MINIO_SECURE"),
	}
}

func connectWithRetry(ctx context.Context, opts miniostorage.Options, strategy retry.Strategy, connect connectFunc) *miniostorage.MinioSourceStore {
	if opts.Endpoint == "" {
		log.Println("MINIO_ENDPOINT is empty: remote image sources are disabled")
		return nil
	}
	if opts.Bucket == "" {
		opts.Bucket = "default"
		log.Printf("Bucket name is empty. Using default value %q...", opts.Bucket)
	}

	var client *miniostorage.MinioSourceStore
	try := 0
	err := retry.DoContext(ctx, strategy, func() error {
		try++
		log.Println("Connecting to IMG-storage...")
		c, err := connect(ctx, opts)
		if err != nil {
			log.Printf("Failed to init connection to IMG-storage (try #%d): %v", try, err)
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		log.Printf("Out of retries (%v): remote image sources are disabled", err)
		return nil
	}

	log.Println("Successfully connected IMG-storage!")
	return client
}
