package scheduler

import (
	"context"

	"go.uber.org/zap"
)

// dispatchBatchSize bounds one dispatch pass so a backlog cannot hold the
// ticker loop for a full interval.
const dispatchBatchSize = 50

func (s *Scheduler) DispatchOutboxJob(ctx context.Context) error {
	sent, err := s.mailer.DispatchDue(ctx, dispatchBatchSize)
	if err != nil {
		return err
	}
	if sent > 0 {
		s.log.Info("outbox dispatch completed", zap.Int("sent", sent))
	}
	return nil
}

func (s *Scheduler) PruneOutboxJob(ctx context.Context) error {
	retentionDays := s.cfg.Scheduler.OutboxRetentionDays
	if retentionDays <= 0 {
		s.log.Info("outbox retention disabled", zap.Int("days", retentionDays))
		return nil
	}

	cutoff := s.clock.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.mailer.PruneSent(ctx, cutoff)
	if err != nil {
		return err
	}

	s.log.Info("outbox prune completed",
		zap.Time("cutoff", cutoff), zap.Int64("deleted", deleted))
	return nil
}
