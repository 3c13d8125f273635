package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/internal/clock"
	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
	tierrepo "github.com/appoetlabs/appoet/internal/tier/repository"
	tierservice "github.com/appoetlabs/appoet/internal/tier/service"
)

func setup(t *testing.T) tierdomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tierdomain.Tier{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return tierservice.New(tierservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.New(),
		Repo:  tierrepo.Provide(),
	})
}

func TestCreateTier(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, tierdomain.CreateRequest{
		Name:          "Epic Poem",
		Description:   "A longer commission",
		PoemCount:     1,
		PriceCents:    499,
		DeliveryHours: 72,
	})
	require.NoError(t, err)
	assert.Equal(t, "epic-poem", resp.Code, "code is slugged from the name")
	assert.Equal(t, "USD", resp.Currency)
	assert.True(t, resp.Active)

	_, err = svc.Create(ctx, tierdomain.CreateRequest{
		Name:          "Epic Poem",
		PoemCount:     1,
		PriceCents:    599,
		DeliveryHours: 24,
	})
	assert.ErrorIs(t, err, tierdomain.ErrCodeTaken)
}

func TestCreateTierValidation(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  tierdomain.CreateRequest
		want error
	}{
		{"empty name", tierdomain.CreateRequest{PoemCount: 1, PriceCents: 100, DeliveryHours: 24}, tierdomain.ErrInvalidName},
		{"free tier", tierdomain.CreateRequest{Name: "x", PoemCount: 1, DeliveryHours: 24}, tierdomain.ErrInvalidPrice},
		{"zero poems", tierdomain.CreateRequest{Name: "x", PriceCents: 100, DeliveryHours: 24}, tierdomain.ErrInvalidPoemCount},
		{"negative bonus", tierdomain.CreateRequest{Name: "x", PoemCount: 1, BonusPoems: -1, PriceCents: 100, DeliveryHours: 24}, tierdomain.ErrInvalidBonusPoems},
		{"no sla", tierdomain.CreateRequest{Name: "x", PoemCount: 1, PriceCents: 100}, tierdomain.ErrInvalidDeliveryHours},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestListActiveSortsByPrice(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, tierdomain.CreateRequest{Name: "Custom Poem", PoemCount: 2, PriceCents: 199, DeliveryHours: 48})
	require.NoError(t, err)
	_, err = svc.Create(ctx, tierdomain.CreateRequest{Name: "Quick Poem", PoemCount: 2, PriceCents: 99, DeliveryHours: 24})
	require.NoError(t, err)

	inactive := false
	retired, err := svc.Create(ctx, tierdomain.CreateRequest{Name: "Old Plan", PoemCount: 1, PriceCents: 49, DeliveryHours: 24, Active: &inactive})
	require.NoError(t, err)
	assert.False(t, retired.Active, "a tier created inactive stays inactive")

	tiers, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, "quick-poem", tiers[0].Code)
	assert.Equal(t, "custom-poem", tiers[1].Code)
	for _, tier := range tiers {
		assert.NotEqual(t, retired.ID, tier.ID)
	}
}

func TestUpdateTier(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, tierdomain.CreateRequest{Name: "Quick Poem", PoemCount: 2, PriceCents: 99, DeliveryHours: 24})
	require.NoError(t, err)

	price := int64(149)
	active := false
	updated, err := svc.Update(ctx, created.ID, tierdomain.UpdateRequest{PriceCents: &price, Active: &active})
	require.NoError(t, err)
	assert.Equal(t, int64(149), updated.PriceCents)
	assert.False(t, updated.Active)

	// Lookup also works by code.
	byCode, err := svc.Get(ctx, "quick-poem")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	bad := int64(0)
	_, err = svc.Update(ctx, created.ID, tierdomain.UpdateRequest{PriceCents: &bad})
	assert.ErrorIs(t, err, tierdomain.ErrInvalidPrice)

	_, err = svc.Update(ctx, "999999999999", tierdomain.UpdateRequest{})
	assert.ErrorIs(t, err, tierdomain.ErrNotFound)
}
