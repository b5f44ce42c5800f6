package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // LOOM_DATABASE_URL (required)
	HTTPAddr    string // LOOM_HTTP_ADDR (default ":8080")
	NATSURL     string // LOOM_NATS_URL (optional, empty = no events)
	AuthToken   string // LOOM_AUTH_TOKEN (optional, empty = auth disabled)

	// Snapshot export settings
	SnapshotInterval   time.Duration // LOOM_SNAPSHOT_INTERVAL (default 3m; 0 = disabled)
	SnapshotS3Bucket   string        // LOOM_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // LOOM_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // LOOM_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Key      string        // LOOM_SNAPSHOT_S3_KEY (default "loom/graph.jsonl")
	SnapshotGitRepo    string        // LOOM_SNAPSHOT_GIT_REPO (enables git when set; path to clone)
	SnapshotGitFile    string        // LOOM_SNAPSHOT_GIT_FILE (default "graph.jsonl")
	SnapshotGitBranch  string        // LOOM_SNAPSHOT_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:        os.Getenv("LOOM_DATABASE_URL"),
		HTTPAddr:           envOrDefault("LOOM_HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("LOOM_NATS_URL"),
		AuthToken:          os.Getenv("LOOM_AUTH_TOKEN"),
		SnapshotS3Bucket:   os.Getenv("LOOM_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("LOOM_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("LOOM_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotS3Key:      envOrDefault("LOOM_SNAPSHOT_S3_KEY", "loom/graph.jsonl"),
		SnapshotGitRepo:    os.Getenv("LOOM_SNAPSHOT_GIT_REPO"),
		SnapshotGitFile:    envOrDefault("LOOM_SNAPSHOT_GIT_FILE", "graph.jsonl"),
		SnapshotGitBranch:  envOrDefault("LOOM_SNAPSHOT_GIT_BRANCH", "main"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("LOOM_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("LOOM_SNAPSHOT_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("LOOM_SNAPSHOT_INTERVAL: %w", err)
		}
		c.SnapshotInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
