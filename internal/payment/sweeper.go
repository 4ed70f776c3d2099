package payment

import (
	"context"
	"time"

	"storefront-be/internal/config"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sweepConcurrency = 4

// Sweeper periodically reconciles attempts that stayed ready, covering
// buyers who closed the window before the return URL was hit.
type Sweeper struct {
	repo       Repository
	reconciler Reconciler
	cfg        config.Reconcile
	now        func() time.Time
}

func NewSweeper(repo Repository, reconciler Reconciler, cfg config.Reconcile) *Sweeper {
	return &Sweeper{
		repo:       repo,
		reconciler: reconciler,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Run blocks until ctx is done. A zero interval disables sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	if s.cfg.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one pass and returns how many attempts were reconciled cleanly.
func (s *Sweeper) Sweep(ctx context.Context) int {
	log := logger.FromCtx(ctx).With(zap.String("layer", "sweeper"))
	timer := metrics.StartTimer()

	stale, err := s.repo.ListStaleReady(ctx, s.now().Add(-s.cfg.MinAge), s.cfg.Batch)
	if err != nil {
		log.Error("failed to list stale payments", zap.Error(err))
		return 0
	}
	if len(stale) == 0 {
		return 0
	}

	results := make([]bool, len(stale))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for i := range stale {
		i := i
		p := &stale[i]
		g.Go(func() error {
			if _, err := s.reconciler.Reconcile(gctx, p); err != nil {
				log.Warn("stale payment not reconciled",
					zap.String("payment_id", p.ID.String()),
					zap.Error(err),
				)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	done := 0
	for _, ok := range results {
		if ok {
			done++
		}
	}
	log.Info("sweep finished",
		zap.Int("candidates", len(stale)),
		zap.Int("reconciled", done),
		zap.Duration("duration", timer.Duration()),
		zap.Any("totals", ReconcileStats.Snapshot()),
	)
	return done
}
