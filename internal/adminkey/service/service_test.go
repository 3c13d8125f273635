package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
	adminkeyrepo "github.com/appoetlabs/appoet/internal/adminkey/repository"
	adminkeyservice "github.com/appoetlabs/appoet/internal/adminkey/service"
	"github.com/appoetlabs/appoet/internal/clock"
)

func setup(t *testing.T, clk clock.Clock) (adminkeydomain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&adminkeydomain.AdminKey{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := adminkeyservice.New(adminkeyservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  adminkeyrepo.Provide(),
	})
	return svc, db
}

func TestIssueAndVerify(t *testing.T) {
	svc, db := setup(t, clock.New())
	ctx := context.Background()

	issued, err := svc.Issue(ctx, adminkeydomain.IssueRequest{
		Name:   "fulfillment laptop",
		Scopes: []string{"requests:read", "REQUESTS:WRITE", "requests:write"},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(issued.Key, "apk_"))
	assert.Equal(t, []string{"requests:read", "requests:write"}, issued.Scopes,
		"scopes are lowercased and deduplicated")

	var stored adminkeydomain.AdminKey
	require.NoError(t, db.Take(&stored).Error)
	assert.NotEqual(t, issued.Key, stored.KeyHash, "plaintext is never persisted")
	assert.Equal(t, adminkeydomain.HashKey(issued.Key), stored.KeyHash)

	key, err := svc.Verify(ctx, issued.Key)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, key.ID.String())
	assert.NotNil(t, key.LastUsedAt)

	_, err = svc.Verify(ctx, "apk_wrong")
	assert.ErrorIs(t, err, adminkeydomain.ErrUnauthorized)
}

func TestIssueValidation(t *testing.T) {
	svc, _ := setup(t, clock.New())
	ctx := context.Background()

	_, err := svc.Issue(ctx, adminkeydomain.IssueRequest{Name: " ", Scopes: []string{"orders:read"}})
	assert.ErrorIs(t, err, adminkeydomain.ErrInvalidName)

	_, err = svc.Issue(ctx, adminkeydomain.IssueRequest{Name: "x", Scopes: []string{"everything"}})
	assert.ErrorIs(t, err, adminkeydomain.ErrInvalidScopes)

	_, err = svc.Issue(ctx, adminkeydomain.IssueRequest{Name: "x", Scopes: nil})
	assert.ErrorIs(t, err, adminkeydomain.ErrInvalidScopes)

	_, err = svc.Issue(ctx, adminkeydomain.IssueRequest{Name: "x", Scopes: []string{"orders:read"}, TTL: "soon"})
	assert.ErrorIs(t, err, adminkeydomain.ErrInvalidTTL)
}

func TestVerifyExpiredKey(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := setup(t, clock.Fixed(base))
	ctx := context.Background()

	issued, err := svc.Issue(ctx, adminkeydomain.IssueRequest{
		Name:   "short lived",
		Scopes: []string{"orders:read"},
		TTL:    "1h",
	})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, issued.Key)
	require.NoError(t, err)

	// Same shared in-memory database, clock advanced past the TTL.
	lateSvc, _ := setup(t, clock.Fixed(base.Add(2*time.Hour)))
	_, err = lateSvc.Verify(ctx, issued.Key)
	assert.ErrorIs(t, err, adminkeydomain.ErrUnauthorized)
}

func TestRevoke(t *testing.T) {
	svc, _ := setup(t, clock.New())
	ctx := context.Background()

	issued, err := svc.Issue(ctx, adminkeydomain.IssueRequest{Name: "temp", Scopes: []string{"keys:admin"}})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, issued.ID))

	_, err = svc.Verify(ctx, issued.Key)
	assert.ErrorIs(t, err, adminkeydomain.ErrUnauthorized)

	err = svc.Revoke(ctx, "424242424242")
	assert.ErrorIs(t, err, adminkeydomain.ErrNotFound)

	err = svc.Revoke(ctx, "not-an-id")
	assert.ErrorIs(t, err, adminkeydomain.ErrInvalidID)
}

func TestList(t *testing.T) {
	svc, _ := setup(t, clock.New())
	ctx := context.Background()

	_, err := svc.Issue(ctx, adminkeydomain.IssueRequest{Name: "a", Scopes: []string{"orders:read"}})
	require.NoError(t, err)
	_, err = svc.Issue(ctx, adminkeydomain.IssueRequest{Name: "b", Scopes: []string{"keys:admin"}})
	require.NoError(t, err)

	keys, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
