// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/okian/sensorsink/internal/adapters/repository"
	"github.com/okian/sensorsink/internal/domain/upload"
	"github.com/okian/sensorsink/pkg/logger"
	"github.com/okian/sensorsink/pkg/metrics"
)

// Service receives sensor uploads, persists them and reports sample counts.
// It keeps no per-upload state; the store directory is the only durable state.
type Service struct {
	mu      sync.Mutex
	started bool

	store  repository.Store
	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used to name uploads without a filename hint.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service writing to store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the upload directory. It is safe to call more than once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("upload")
	}
	if s.store == nil {
		return errors.New("service: no store configured")
	}
	if err := s.store.Ensure(ctx); err != nil {
		return fmt.Errorf("service: %w", err)
	}

	s.started = true
	s.logger.Info(ctx, "upload service started", logger.String("uploads_dir", s.store.Dir()))
	return nil
}

// Stop marks the service stopped. In-flight uploads are not interrupted.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "upload service stopped")
}

// UploadsDir returns the absolute upload directory.
func (s *Service) UploadsDir() string {
	return s.store.Dir()
}

// Upload parses body, writes it under the resolved filename and returns the
// per-category statistics. Failures of a known kind wrap one of the upload
// package sentinels; anything else is an unexpected fault.
func (s *Service) Upload(ctx context.Context, filenameHint string, body []byte) (upload.Receipt, error) {
	const op = "service.upload"
	start := time.Now()
	log := s.log()

	payload, err := upload.Parse(body)
	if err != nil {
		metrics.RecordUpload(metrics.ResultInvalid)
		log.Warn(ctx, "rejected upload payload", logger.String("filename_hint", filenameHint), logger.Error(err))
		return upload.Receipt{}, err
	}

	filename := upload.ResolveFilename(filenameHint, s.now())
	if err := repository.ValidateName(filename); err != nil {
		metrics.RecordUpload(metrics.ResultInvalid)
		log.Warn(ctx, "rejected upload filename", logger.String("filename", filename), logger.Error(err))
		return upload.Receipt{}, upload.WrapKind(op, upload.ErrInvalidFilename, fmt.Errorf("%q must be a plain file name", filename))
	}

	saved, err := s.store.Save(ctx, filename, payload.Pretty)
	if err != nil {
		metrics.RecordUpload(metrics.ResultFailed)
		log.Error(ctx, "failed to save upload", logger.String("filename", filename), logger.Error(err))
		return upload.Receipt{}, err
	}

	stats := upload.Summarize(payload.Object)
	total := stats.Total()

	metrics.RecordUpload(metrics.ResultSuccess)
	metrics.RecordUploadBytes(saved.Size)
	for _, c := range upload.Categories {
		metrics.RecordSamples(c, stats[c])
	}
	metrics.RecordUploadLatency(float64(time.Since(start).Microseconds()) / 1000)

	log.Info(ctx, "received upload",
		logger.String("filename", saved.Name),
		logger.Int64("file_size", saved.Size),
		logger.String("file_size_human", humanize.Comma(saved.Size)+" bytes"),
		logger.Int("total_samples", total),
		logger.Int(upload.Accelerometer, stats[upload.Accelerometer]),
		logger.Int(upload.Gyroscope, stats[upload.Gyroscope]),
		logger.Int(upload.Magnetometer, stats[upload.Magnetometer]),
		logger.Int(upload.DeviceMotion, stats[upload.DeviceMotion]),
		logger.Int(upload.Altimeter, stats[upload.Altimeter]),
		logger.String("saved_to", saved.Path),
	)

	return upload.Receipt{
		Filename:     saved.Name,
		Path:         saved.Path,
		FileSize:     saved.Size,
		Statistics:   stats,
		TotalSamples: total,
	}, nil
}

func (s *Service) log() logger.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil {
		s.logger = logger.Named("upload")
	}
	return s.logger
}
