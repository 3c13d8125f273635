package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/clock"
	"github.com/appoetlabs/appoet/internal/config"
	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
)

// pruneInterval is how often the retention job runs. Retention itself is
// configured in days.
const pruneInterval = 24 * time.Hour

type Params struct {
	fx.In

	Log    *zap.Logger
	Cfg    config.Config
	Clock  clock.Clock
	Mailer mailerdomain.Service
}

type Scheduler struct {
	log    *zap.Logger
	cfg    config.Config
	clock  clock.Clock
	mailer mailerdomain.Service
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:    p.Log.Named("scheduler"),
		cfg:    p.Cfg,
		clock:  p.Clock,
		mailer: p.Mailer,
	}
}

// RunForever drives the periodic jobs until the context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	outboxInterval := s.cfg.Scheduler.OutboxInterval
	if outboxInterval <= 0 {
		outboxInterval = 30 * time.Second
	}

	dispatch := time.NewTicker(outboxInterval)
	defer dispatch.Stop()
	prune := time.NewTicker(pruneInterval)
	defer prune.Stop()

	s.log.Info("scheduler started",
		zap.Duration("outbox_interval", outboxInterval),
		zap.Int("outbox_retention_days", s.cfg.Scheduler.OutboxRetentionDays))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-dispatch.C:
			if err := s.DispatchOutboxJob(ctx); err != nil {
				s.log.Error("outbox dispatch job failed", zap.Error(err))
			}
		case <-prune.C:
			if err := s.PruneOutboxJob(ctx); err != nil {
				s.log.Error("outbox prune job failed", zap.Error(err))
			}
		}
	}
}
