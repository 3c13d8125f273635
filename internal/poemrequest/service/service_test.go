package service_test

import (
	"context"
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
	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
	orderrepo "github.com/appoetlabs/appoet/internal/order/repository"
	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
	requestrepo "github.com/appoetlabs/appoet/internal/poemrequest/repository"
	requestservice "github.com/appoetlabs/appoet/internal/poemrequest/service"
	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

type noopSender struct{}

func (noopSender) Send(ctx context.Context, email mailerdomain.Email) error { return nil }

type fixture struct {
	svc  requestdomain.Service
	db   *gorm.DB
	node *snowflake.Node
	tier *tierdomain.Tier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWithClock(t, clock.New())
}

func setupWithClock(t *testing.T, clk clock.Clock) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&tierdomain.Tier{},
		&orderdomain.Order{},
		&requestdomain.PoemRequest{},
		&mailerdomain.OutboxEmail{},
	)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()

	mailerSvc := mailerservice.New(mailerservice.Params{
		DB:     db,
		Log:    logger,
		GenID:  node,
		Clock:  clk,
		Cfg:    config.Config{},
		Repo:   mailerrepo.Provide(),
		Sender: noopSender{},
	})

	svc := requestservice.New(requestservice.Params{
		DB:        db,
		Log:       logger,
		GenID:     node,
		Clock:     clk,
		Repo:      requestrepo.Provide(),
		OrderRepo: orderrepo.Provide(),
		Mailer:    mailerSvc,
	})

	now := time.Now().UTC()
	tier := &tierdomain.Tier{
		ID:            node.Generate(),
		Code:          "quick-poem",
		Name:          "Quick Poem",
		PoemCount:     2,
		BonusPoems:    1,
		PriceCents:    99,
		Currency:      "USD",
		DeliveryHours: 24,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, db.Create(tier).Error)

	return &fixture{svc: svc, db: db, node: node, tier: tier}
}

func (f *fixture) createOrder(t *testing.T, status orderdomain.OrderStatus, credits int) *orderdomain.Order {
	t.Helper()
	now := time.Now().UTC()
	order := &orderdomain.Order{
		ID:             f.node.Generate(),
		OrderNumber:    "APT-" + orderNumberSuffix(f.node),
		TierID:         f.tier.ID,
		Email:          "poet@example.com",
		Status:         status,
		PoemsRemaining: credits,
		DeliveryHours:  24,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func orderNumberSuffix(node *snowflake.Node) string {
	id := node.Generate().String()
	if len(id) > 10 {
		id = id[len(id)-10:]
	}
	return id
}

func (f *fixture) reloadOrder(t *testing.T, id snowflake.ID) *orderdomain.Order {
	t.Helper()
	var order orderdomain.Order
	require.NoError(t, f.db.Where("id = ?", id).Take(&order).Error)
	return &order
}

func TestSubmitDecrementsAndQueues(t *testing.T) {
	f := setup(t)
	order := f.createOrder(t, orderdomain.OrderStatusPaid, 3)

	resp, err := f.svc.Submit(context.Background(), requestdomain.SubmitRequest{
		OrderID:  order.ID.String(),
		PoemType: "haiku",
		Theme:    "autumn rain",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.PoemsRemaining)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), resp.EstimatedDelivery, time.Minute)

	reloaded := f.reloadOrder(t, order.ID)
	assert.Equal(t, orderdomain.OrderStatusQueued, reloaded.Status, "first submit promotes PAID to QUEUED")
	assert.Equal(t, 2, reloaded.PoemsRemaining)

	var request requestdomain.PoemRequest
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Take(&request).Error)
	assert.Equal(t, requestdomain.PoemTypeHaiku, request.PoemType)
	assert.Equal(t, requestdomain.RequestStatusPending, request.Status)
}

func TestSubmitStampsOrderWithServiceClock(t *testing.T) {
	frozen := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	f := setupWithClock(t, clock.Fixed(frozen))
	order := f.createOrder(t, orderdomain.OrderStatusPaid, 2)

	resp, err := f.svc.Submit(context.Background(), requestdomain.SubmitRequest{
		OrderID:  order.ID.String(),
		PoemType: "HAIKU",
		Theme:    "frost",
	})
	require.NoError(t, err)
	assert.Equal(t, frozen.Add(24*time.Hour), resp.EstimatedDelivery)

	reloaded := f.reloadOrder(t, order.ID)
	assert.True(t, reloaded.UpdatedAt.Equal(frozen),
		"credit decrement stamps updated_at from the service clock, got %s", reloaded.UpdatedAt)
}

func TestSubmitGuards(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	pending := f.createOrder(t, orderdomain.OrderStatusPending, 3)
	_, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: pending.ID.String(), PoemType: "HAIKU", Theme: "x"})
	assert.ErrorIs(t, err, requestdomain.ErrPaymentNotConfirmed)

	// A closed order with a leftover credit still refuses requests.
	delivered := f.createOrder(t, orderdomain.OrderStatusDelivered, 1)
	_, err = f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: delivered.ID.String(), PoemType: "HAIKU", Theme: "x"})
	assert.ErrorIs(t, err, requestdomain.ErrPaymentNotConfirmed)

	_, err = f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: "123456789", PoemType: "HAIKU", Theme: "x"})
	assert.ErrorIs(t, err, requestdomain.ErrOrderNotFound)

	paid := f.createOrder(t, orderdomain.OrderStatusPaid, 1)
	_, err = f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: paid.ID.String(), PoemType: "VILLANELLE", Theme: "x"})
	assert.ErrorIs(t, err, requestdomain.ErrInvalidPoemType)

	_, err = f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: paid.ID.String(), PoemType: "HAIKU"})
	assert.ErrorIs(t, err, requestdomain.ErrThemeRequired)
}

func TestSubmitExhaustsCredits(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.createOrder(t, orderdomain.OrderStatusPaid, 2)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{
			OrderID:  order.ID.String(),
			PoemType: "SONNET",
			Theme:    "the sea",
		})
		require.NoError(t, err)
	}

	_, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{
		OrderID:  order.ID.String(),
		PoemType: "SONNET",
		Theme:    "the sea",
	})
	assert.ErrorIs(t, err, requestdomain.ErrNoCreditsRemaining)

	reloaded := f.reloadOrder(t, order.ID)
	assert.Equal(t, 0, reloaded.PoemsRemaining, "credits never go negative")

	var count int64
	require.NoError(t, f.db.Model(&requestdomain.PoemRequest{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count, "rejected submit leaves no request row")
}

func TestSubmitSurpriseMeDefaultsTheme(t *testing.T) {
	f := setup(t)
	order := f.createOrder(t, orderdomain.OrderStatusQueued, 1)

	_, err := f.svc.Submit(context.Background(), requestdomain.SubmitRequest{
		OrderID:    order.ID.String(),
		PoemType:   "FREE_VERSE",
		SurpriseMe: true,
	})
	require.NoError(t, err)

	var request requestdomain.PoemRequest
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Take(&request).Error)
	assert.Equal(t, requestdomain.DefaultSurpriseTheme, request.Theme)
	assert.True(t, request.SurpriseMe)
}

func TestDeliverLastRequestFlipsOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.createOrder(t, orderdomain.OrderStatusPaid, 2)

	first, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: order.ID.String(), PoemType: "HAIKU", Theme: "dawn"})
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: order.ID.String(), PoemType: "LIMERICK", Theme: "cats"})
	require.NoError(t, err)

	resp, err := f.svc.Deliver(ctx, first.RequestID, requestdomain.DeliverRequest{
		PoemContent: "Pale light on the hills",
		PoemTitle:   "Dawn",
	})
	require.NoError(t, err)
	assert.Equal(t, requestdomain.RequestStatusDelivered, resp.Status)
	require.NotNil(t, resp.DeliveredAt)

	reloaded := f.reloadOrder(t, order.ID)
	assert.Equal(t, orderdomain.OrderStatusQueued, reloaded.Status, "order stays open while a sibling is undelivered")

	_, err = f.svc.Deliver(ctx, second.RequestID, requestdomain.DeliverRequest{PoemContent: "There once was a cat from Leeds"})
	require.NoError(t, err)

	reloaded = f.reloadOrder(t, order.ID)
	assert.Equal(t, orderdomain.OrderStatusDelivered, reloaded.Status)

	var emails []mailerdomain.OutboxEmail
	require.NoError(t, f.db.Where("kind = ?", mailerdomain.KindPoemDelivery).Find(&emails).Error)
	assert.Len(t, emails, 2)
}

func TestDeliverRequiresContent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.createOrder(t, orderdomain.OrderStatusPaid, 1)

	submitted, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: order.ID.String(), PoemType: "HAIKU", Theme: "dawn"})
	require.NoError(t, err)

	_, err = f.svc.Deliver(ctx, submitted.RequestID, requestdomain.DeliverRequest{PoemContent: "   "})
	assert.ErrorIs(t, err, requestdomain.ErrContentRequired)

	_, err = f.svc.Deliver(ctx, "987654321", requestdomain.DeliverRequest{PoemContent: "x"})
	assert.ErrorIs(t, err, requestdomain.ErrNotFound)
}

func TestMarkInProgressAndUpdateStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.createOrder(t, orderdomain.OrderStatusPaid, 1)

	submitted, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: order.ID.String(), PoemType: "ACROSTIC", Theme: "hope"})
	require.NoError(t, err)

	resp, err := f.svc.MarkInProgress(ctx, submitted.RequestID)
	require.NoError(t, err)
	assert.Equal(t, requestdomain.RequestStatusInProgress, resp.Status)

	_, err = f.svc.UpdateStatus(ctx, submitted.RequestID, requestdomain.RequestStatus("SHIPPED"))
	assert.ErrorIs(t, err, requestdomain.ErrInvalidStatus)

	resp, err = f.svc.UpdateStatus(ctx, submitted.RequestID, requestdomain.RequestStatusPending)
	require.NoError(t, err)
	assert.Equal(t, requestdomain.RequestStatusPending, resp.Status)
}

func TestAdminListEnrichment(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	order := f.createOrder(t, orderdomain.OrderStatusPaid, 1)

	_, err := f.svc.Submit(ctx, requestdomain.SubmitRequest{OrderID: order.ID.String(), PoemType: "HAIKU", Theme: "dawn"})
	require.NoError(t, err)

	list, err := f.svc.AdminList(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.OrderNumber, list[0].OrderNumber)
	assert.Equal(t, "poet@example.com", list[0].CustomerEmail)
	assert.Equal(t, "Quick Poem", list[0].TierName)

	list, err = f.svc.AdminList(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.svc.AdminList(ctx, "DELIVERED")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.AdminList(ctx, "bogus")
	assert.ErrorIs(t, err, requestdomain.ErrInvalidStatus)
}
