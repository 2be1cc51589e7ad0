package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/sensorsink/internal/sampleclient"
	"github.com/okian/sensorsink/pkg/logger"
)

// Default configuration constants.
const (
	defaultDuration   = 10 * time.Second
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:3000", "Base URL of the receiver")
		duration = flag.Duration("duration", defaultDuration, "Length of the synthetic session")
		filename = flag.String("filename", "", "Upload filename (default: sensor_data_YYYY-MM-DD_HH-MM-SS.json)")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		saveDir  = flag.String("save", "", "Also write the payload to this directory before uploading")
		seed     = flag.Uint64("seed", 1, "Seed for the synthetic readings")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sampleclient.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &sampleclient.Config{
		BaseURL:  *baseURL,
		Duration: *duration,
		Filename: *filename,
		Timeout:  *timeout,
		SaveDir:  *saveDir,
		Seed:     *seed,
	}
	if _, err := sampleclient.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "sample upload failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
