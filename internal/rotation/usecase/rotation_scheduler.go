package usecase

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/allisson/keyvault/internal/errors"
	rotationDomain "github.com/allisson/keyvault/internal/rotation/domain"
)

// SchedulerConfig holds rotation scheduler configuration
type SchedulerConfig struct {
	Interval  time.Duration
	BatchSize int
}

// RotationScheduler drives scheduled rotations. Each pass scans for keys past
// a rotation deadline, surfaces them as PendingRotation, and rotates them one
// by one. Lock contention is expected when multiple instances run the
// scheduler; the losing instance skips the key and moves on.
type RotationScheduler struct {
	config         SchedulerConfig
	descriptorRepo KeyDescriptorRepository
	keyUseCase     KeyUseCase
	logger         *slog.Logger
}

// NewRotationScheduler creates a new RotationScheduler
func NewRotationScheduler(
	config SchedulerConfig,
	descriptorRepo KeyDescriptorRepository,
	keyUseCase KeyUseCase,
	logger *slog.Logger,
) *RotationScheduler {
	return &RotationScheduler{
		config:         config,
		descriptorRepo: descriptorRepo,
		keyUseCase:     keyUseCase,
		logger:         logger,
	}
}

// Start runs the scheduler loop until the context is canceled
func (s *RotationScheduler) Start(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("starting rotation scheduler",
			slog.Duration("interval", s.config.Interval),
			slog.Int("batch_size", s.config.BatchSize),
		)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("stopping rotation scheduler")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := s.ProcessDueKeys(ctx); err != nil {
				if s.logger != nil {
					s.logger.Error("failed to process due keys", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessDueKeys rotates every key past a rotation deadline, up to the
// configured batch size. Keys that fail to rotate are logged and skipped;
// the retry budget in the key use case decides when to stop retrying.
func (s *RotationScheduler) ProcessDueKeys(ctx context.Context) error {
	descriptors, err := s.descriptorRepo.ListDue(ctx, time.Now().UTC(), s.config.BatchSize)
	if err != nil {
		return err
	}

	if len(descriptors) == 0 {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("processing due keys", slog.Int("count", len(descriptors)))
	}

	for _, descriptor := range descriptors {
		if err := s.processKey(ctx, descriptor); err != nil {
			if s.logger != nil {
				s.logger.Error("failed to rotate key",
					slog.String("alias_name", descriptor.AliasName),
					slog.String("key_id", descriptor.KeyID),
					slog.Any("error", err),
				)
			}
		}
	}

	return nil
}

// processKey marks a due key as pending and rotates it
func (s *RotationScheduler) processKey(ctx context.Context, descriptor *rotationDomain.KeyDescriptor) error {
	if s.logger != nil {
		s.logger.Info("rotating due key",
			slog.String("alias_name", descriptor.AliasName),
			slog.String("key_id", descriptor.KeyID),
			slog.Uint64("version", uint64(descriptor.Version)),
		)
	}

	// Surface the queued state before the rotation starts
	if descriptor.State == rotationDomain.KeyStateActive {
		descriptor.State = rotationDomain.KeyStatePendingRotation
		if err := s.descriptorRepo.Update(ctx, descriptor); err != nil {
			return err
		}
	}

	if _, err := s.keyUseCase.Rotate(ctx, descriptor.AliasName); err != nil {
		// Another instance holds the lock and is doing the same work
		if apperrors.Is(err, rotationDomain.ErrLockContention) {
			if s.logger != nil {
				s.logger.Debug("rotation lock contention",
					slog.String("alias_name", descriptor.AliasName),
					slog.String("key_id", descriptor.KeyID),
				)
			}
			return nil
		}
		return err
	}

	return nil
}
