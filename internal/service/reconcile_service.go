package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/presta-go-api/internal/dto"
	"github.com/noah-isme/presta-go-api/internal/observability"
	"github.com/noah-isme/presta-go-api/internal/repository"
)

// ReconcileService repairs drift between the points cache and the
// authoritative submission data. Safe to invoke at any time, including while
// decisions are in flight; a momentarily stale overwrite settles once the
// in-flight transaction commits and the next run sees it.
type ReconcileService interface {
	Reconcile(ctx context.Context) (dto.ReconcileResult, error)
	Run(ctx context.Context, interval time.Duration)
}

type reconcileService struct {
	points repository.PointsRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewReconcileService constructs the reconciliation job.
func NewReconcileService(pointsRepo repository.PointsRepository, logger zerolog.Logger) ReconcileService {
	return &reconcileService{
		points: pointsRepo,
		logger: logger.With().Str("component", "reconcile_service").Logger(),
		now:    time.Now,
	}
}

func (s *reconcileService) Reconcile(ctx context.Context) (dto.ReconcileResult, error) {
	started := s.now()

	corrected, err := s.points.RebuildAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("points cache rebuild failed")
		return dto.ReconcileResult{}, err
	}

	if corrected > 0 {
		// Drift is repaired silently but never invisibly.
		observability.DriftCorrections().Add(float64(corrected))
		s.logger.Warn().
			Int("corrected", corrected).
			Dur("took", s.now().Sub(started)).
			Msg("points cache drift corrected")
	} else {
		s.logger.Debug().Dur("took", s.now().Sub(started)).Msg("points cache consistent")
	}

	return dto.ReconcileResult{
		Corrected:  corrected,
		FinishedAt: s.now().UTC(),
	}, nil
}

// Run executes Reconcile on a fixed interval until the context is cancelled.
func (s *reconcileService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", interval).Msg("reconciler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reconciler stopped")
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("scheduled reconciliation failed")
			}
		}
	}
}
