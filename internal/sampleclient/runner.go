package sampleclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/sensorsink/pkg/logger"
)

const filePermission = 0o644

// Config holds the settings of one sample upload run.
type Config struct {
	BaseURL  string        // Base URL of the receiver
	Duration time.Duration // Length of the synthetic session
	Filename string        // Upload filename; empty uses the session naming convention
	Timeout  time.Duration // HTTP request timeout
	SaveDir  string        // When set, the payload is also written here first
	Seed     uint64        // Seed for the synthetic readings
}

// Run generates one session, optionally saves it locally, uploads it and
// checks that the receiver counted every sample.
func Run(ctx context.Context, cfg *Config) (*UploadResult, error) {
	log := logger.Named("send-samples")
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	session := Generate(rng, start, cfg.Duration)

	filename := cfg.Filename
	if filename == "" {
		filename = SessionFilename(start)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	log.Info(ctx, "generated session",
		logger.String("session_id", session.SessionID),
		logger.String("filename", filename),
		logger.Int("total_samples", session.TotalSamples()),
		logger.String("payload_size", humanize.Bytes(uint64(len(payload)))),
	)

	if cfg.SaveDir != "" {
		path := filepath.Join(cfg.SaveDir, filename)
		if err := os.WriteFile(path, payload, filePermission); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		log.Info(ctx, "saved session locally", logger.String("path", path))
	}

	result, err := client.Upload(ctx, filename, payload)
	if err != nil {
		return result, err
	}
	if result.TotalSamples != session.TotalSamples() {
		return result, fmt.Errorf("receiver counted %d samples, sent %d", result.TotalSamples, session.TotalSamples())
	}

	log.Info(ctx, "upload complete",
		logger.String("filename", result.Filename),
		logger.String("file_size", humanize.Comma(result.FileSize)+" bytes"),
		logger.Int("total_samples", result.TotalSamples),
		logger.Any("statistics", result.Statistics),
	)
	return result, nil
}

// ShowHelp prints usage information for the send-samples tool.
func ShowHelp() {
	os.Stdout.WriteString(`Sensor Sample Sender
====================

Generates a synthetic watch sensor session and uploads it to the receiver.

Usage:
  go run ./cmd/send-samples [options]

Options:
  -url string
        Base URL of the receiver (default "http://localhost:3000")
  -duration duration
        Length of the synthetic session (default 10s)
  -filename string
        Upload filename (default: sensor_data_YYYY-MM-DD_HH-MM-SS.json)
  -timeout duration
        HTTP request timeout (default 30s)
  -save string
        Also write the payload to this directory before uploading
  -seed uint
        Seed for the synthetic readings (default 1)
  -help
        Show this help message

Examples:
  go run ./cmd/send-samples -duration 1m
  go run ./cmd/send-samples -url http://192.168.1.20:3000 -filename walk.json -save .
`)
}
