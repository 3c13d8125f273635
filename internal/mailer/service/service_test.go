package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/internal/clock"
	"github.com/appoetlabs/appoet/internal/config"
	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
	mailerrepo "github.com/appoetlabs/appoet/internal/mailer/repository"
	mailerservice "github.com/appoetlabs/appoet/internal/mailer/service"
)

// recordingSender captures sends and can be told to fail.
type recordingSender struct {
	sent    []mailerdomain.Email
	failErr error
}

func (s *recordingSender) Send(ctx context.Context, email mailerdomain.Email) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.sent = append(s.sent, email)
	return nil
}

func setup(t *testing.T, sender mailerdomain.Sender, cfg config.Config) (mailerdomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&mailerdomain.OutboxEmail{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := mailerservice.New(mailerservice.Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.New(),
		Cfg:    cfg,
		Repo:   mailerrepo.Provide(),
		Sender: sender,
	})
	return svc, db
}

func TestEnqueueAndDispatch(t *testing.T) {
	sender := &recordingSender{}
	svc, db := setup(t, sender, config.Config{})
	ctx := context.Background()

	err := svc.EnqueueOrderConfirmation(ctx, nil, "poet@example.com", mailerdomain.OrderConfirmation{
		OrderNumber:    "APT-DEADBEEF00",
		TierName:       "Quick Poem",
		PriceFormatted: "USD 0.99",
		PoemsRemaining: 3,
		DeliveryHours:  24,
		RequestURL:     "http://localhost:3000/request?order=APT-DEADBEEF00",
	})
	require.NoError(t, err)

	var row mailerdomain.OutboxEmail
	require.NoError(t, db.Take(&row).Error)
	assert.Equal(t, mailerdomain.OutboxStatusPending, row.Status)
	assert.Equal(t, "Order Confirmed - APT-DEADBEEF00", row.Subject)

	sent, err := svc.DispatchDue(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "poet@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "APT-DEADBEEF00")
	assert.Contains(t, sender.sent[0].HTML, "Quick Poem")

	require.NoError(t, db.Take(&row).Error)
	assert.Equal(t, mailerdomain.OutboxStatusSent, row.Status)
	require.NotNil(t, row.SentAt)
	assert.Equal(t, 1, row.Attempts)
}

func TestEnqueueIsTransactional(t *testing.T) {
	svc, db := setup(t, &recordingSender{}, config.Config{})
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.EnqueuePoemDelivery(ctx, tx, "poet@example.com", mailerdomain.PoemDelivery{
			OrderNumber: "APT-0000000001",
			PoemContent: "words",
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&mailerdomain.OutboxEmail{}).Count(&count).Error)
	assert.Zero(t, count, "rollback removes the enqueued row")
}

func TestDispatchRetriesWithBackoff(t *testing.T) {
	sender := &recordingSender{failErr: errors.New("smtp down")}
	cfg := config.Config{}
	cfg.Mailer.MaxAttempts = 3
	cfg.Mailer.BaseBackoff = time.Minute
	svc, db := setup(t, sender, cfg)
	ctx := context.Background()

	require.NoError(t, svc.EnqueuePoemDelivery(ctx, nil, "poet@example.com", mailerdomain.PoemDelivery{
		OrderNumber: "APT-0000000002",
		PoemType:    "HAIKU",
		PoemContent: "falling leaves",
	}))

	_, err := svc.DispatchDue(ctx, 10)
	require.NoError(t, err)

	var row mailerdomain.OutboxEmail
	require.NoError(t, db.Take(&row).Error)
	assert.Equal(t, mailerdomain.OutboxStatusPending, row.Status)
	assert.Equal(t, 1, row.Attempts)
	assert.Equal(t, "smtp down", row.LastError)
	assert.True(t, row.NextAttemptAt.After(time.Now().UTC().Add(30*time.Second)),
		"first retry backs off by the base interval")

	// Not due yet, nothing attempted.
	attempted, err := svc.DispatchDue(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, attempted)

	// Force the remaining attempts due and exhaust them.
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Model(&mailerdomain.OutboxEmail{}).
			Where("id = ?", row.ID).
			Update("next_attempt_at", time.Now().UTC().Add(-time.Second)).Error)
		_, err = svc.DispatchDue(ctx, 10)
		require.NoError(t, err)
	}

	require.NoError(t, db.Take(&row).Error)
	assert.Equal(t, mailerdomain.OutboxStatusFailed, row.Status)
	assert.Equal(t, 3, row.Attempts)
}

func TestSendFailureDoesNotRevertRow(t *testing.T) {
	sender := &recordingSender{failErr: errors.New("nope")}
	svc, db := setup(t, sender, config.Config{})
	ctx := context.Background()

	require.NoError(t, svc.EnqueueOrderConfirmation(ctx, nil, "poet@example.com", mailerdomain.OrderConfirmation{
		OrderNumber: "APT-0000000003",
	}))

	_, err := svc.DispatchDue(ctx, 10)
	require.NoError(t, err, "send failure is recorded, not propagated")

	var count int64
	require.NoError(t, db.Model(&mailerdomain.OutboxEmail{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPruneSent(t *testing.T) {
	sender := &recordingSender{}
	svc, _ := setup(t, sender, config.Config{})
	ctx := context.Background()

	require.NoError(t, svc.EnqueuePoemDelivery(ctx, nil, "poet@example.com", mailerdomain.PoemDelivery{
		OrderNumber: "APT-0000000004",
		PoemContent: "x",
	}))
	_, err := svc.DispatchDue(ctx, 10)
	require.NoError(t, err)

	// A cutoff before the send leaves the row alone.
	deleted, err := svc.PruneSent(ctx, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = svc.PruneSent(ctx, time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
