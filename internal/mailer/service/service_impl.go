package service

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/internal/clock"
	"github.com/appoetlabs/appoet/internal/config"
	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Cfg    config.Config
	Repo   mailerdomain.Repository
	Sender mailerdomain.Sender
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        mailerdomain.Repository
	sender      mailerdomain.Sender
	maxAttempts int
	baseBackoff time.Duration
}

func New(p Params) mailerdomain.Service {
	maxAttempts := p.Cfg.Mailer.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 6
	}
	baseBackoff := p.Cfg.Mailer.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = time.Minute
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("mailer.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		sender:      p.Sender,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
	}
}

func (s *Service) EnqueueOrderConfirmation(ctx context.Context, tx *gorm.DB, recipient string, msg mailerdomain.OrderConfirmation) error {
	subject := fmt.Sprintf("Order Confirmed - %s", msg.OrderNumber)
	return s.enqueue(ctx, tx, mailerdomain.KindOrderConfirmation, recipient, subject, msg)
}

func (s *Service) EnqueuePoemDelivery(ctx context.Context, tx *gorm.DB, recipient string, msg mailerdomain.PoemDelivery) error {
	subject := fmt.Sprintf("Your Poem Has Arrived - %s", msg.OrderNumber)
	return s.enqueue(ctx, tx, mailerdomain.KindPoemDelivery, recipient, subject, msg)
}

func (s *Service) enqueue(ctx context.Context, tx *gorm.DB, kind, recipient, subject string, payload any) error {
	if tx == nil {
		tx = s.db
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	row := &mailerdomain.OutboxEmail{
		ID:            s.genID.Generate(),
		Kind:          kind,
		Recipient:     recipient,
		Subject:       subject,
		Payload:       raw,
		Status:        mailerdomain.OutboxStatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return s.repo.Insert(ctx, tx, row)
}

func (s *Service) DispatchDue(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}

	now := s.clock.Now()
	due, err := s.repo.FindDue(ctx, s.db, now, limit)
	if err != nil {
		return 0, err
	}

	attempted := 0
	for _, row := range due {
		attempted++
		if err := s.send(ctx, row); err != nil {
			s.markFailure(ctx, row, err)
			continue
		}
		s.markSent(ctx, row)
	}
	return attempted, nil
}

func (s *Service) PruneSent(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.DeleteSentBefore(ctx, s.db, cutoff)
}

func (s *Service) send(ctx context.Context, row *mailerdomain.OutboxEmail) error {
	html, err := render(row.Kind, row.Payload)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, mailerdomain.Email{
		To:      row.Recipient,
		Subject: row.Subject,
		HTML:    html,
	})
}

func (s *Service) markSent(ctx context.Context, row *mailerdomain.OutboxEmail) {
	now := s.clock.Now()
	row.Status = mailerdomain.OutboxStatusSent
	row.Attempts++
	row.LastError = ""
	row.SentAt = &now
	row.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, row); err != nil {
		s.log.Error("failed to mark outbox email sent",
			zap.String("outbox_id", row.ID.String()), zap.Error(err))
	}
}

func (s *Service) markFailure(ctx context.Context, row *mailerdomain.OutboxEmail, sendErr error) {
	now := s.clock.Now()
	row.Attempts++
	row.LastError = sendErr.Error()
	row.UpdatedAt = now

	if row.Attempts >= s.maxAttempts {
		row.Status = mailerdomain.OutboxStatusFailed
		s.log.Error("outbox email exhausted retries",
			zap.String("outbox_id", row.ID.String()),
			zap.String("kind", row.Kind),
			zap.Int("attempts", row.Attempts),
			zap.Error(sendErr))
	} else {
		row.NextAttemptAt = now.Add(s.baseBackoff * time.Duration(1<<uint(row.Attempts-1)))
		s.log.Warn("outbox email send failed, will retry",
			zap.String("outbox_id", row.ID.String()),
			zap.Int("attempts", row.Attempts),
			zap.Time("next_attempt_at", row.NextAttemptAt),
			zap.Error(sendErr))
	}

	if err := s.repo.Update(ctx, s.db, row); err != nil {
		s.log.Error("failed to record outbox failure",
			zap.String("outbox_id", row.ID.String()), zap.Error(err))
	}
}

func render(kind string, payload []byte) (string, error) {
	var (
		name string
		data any
	)
	switch kind {
	case mailerdomain.KindOrderConfirmation:
		var msg mailerdomain.OrderConfirmation
		if err := json.Unmarshal(payload, &msg); err != nil {
			return "", err
		}
		name, data = "order_confirmation.html.tmpl", msg
	case mailerdomain.KindPoemDelivery:
		var msg mailerdomain.PoemDelivery
		if err := json.Unmarshal(payload, &msg); err != nil {
			return "", err
		}
		name, data = "poem_delivery.html.tmpl", msg
	default:
		return "", mailerdomain.ErrUnknownKind
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
