package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
	"github.com/appoetlabs/appoet/internal/clock"
)

const keyPrefix = "apk_"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  adminkeydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  adminkeydomain.Repository
}

func New(p Params) adminkeydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("adminkey.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Issue(ctx context.Context, req adminkeydomain.IssueRequest) (*adminkeydomain.IssueResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, adminkeydomain.ErrInvalidName
	}

	scopes, err := normalizeScopes(req.Scopes)
	if err != nil {
		return nil, err
	}

	ttl := adminkeydomain.DefaultTTL
	if strings.TrimSpace(req.TTL) != "" {
		parsed, err := time.ParseDuration(req.TTL)
		if err != nil || parsed <= 0 {
			return nil, adminkeydomain.ErrInvalidTTL
		}
		ttl = parsed
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	plaintext := keyPrefix + hex.EncodeToString(raw)

	now := s.clock.Now()
	key := &adminkeydomain.AdminKey{
		ID:        s.genID.Generate(),
		Name:      name,
		KeyHash:   adminkeydomain.HashKey(plaintext),
		Scopes:    scopes,
		ExpiresAt: now.Add(ttl),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, key); err != nil {
		return nil, err
	}

	s.log.Info("admin key issued",
		zap.String("key_id", key.ID.String()),
		zap.String("name", name),
		zap.Strings("scopes", scopes))

	return &adminkeydomain.IssueResponse{
		ID:        key.ID.String(),
		Name:      key.Name,
		Key:       plaintext,
		Scopes:    scopes,
		ExpiresAt: key.ExpiresAt,
	}, nil
}

func (s *Service) Verify(ctx context.Context, rawKey string) (*adminkeydomain.AdminKey, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, adminkeydomain.ErrUnauthorized
	}

	hash := adminkeydomain.HashKey(rawKey)
	key, err := s.repo.FindByHash(ctx, s.db, hash)
	if err != nil {
		return nil, err
	}
	if key == nil || !key.Active {
		return nil, adminkeydomain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(key.KeyHash), []byte(hash)) != 1 {
		return nil, adminkeydomain.ErrUnauthorized
	}

	now := s.clock.Now()
	if now.After(key.ExpiresAt) {
		return nil, adminkeydomain.ErrUnauthorized
	}

	key.LastUsedAt = &now
	key.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, key); err != nil {
		// Stamping is best effort; the key itself verified fine.
		s.log.Warn("failed to stamp admin key usage",
			zap.String("key_id", key.ID.String()), zap.Error(err))
	}
	return key, nil
}

func (s *Service) List(ctx context.Context) ([]adminkeydomain.KeyResponse, error) {
	keys, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	responses := make([]adminkeydomain.KeyResponse, 0, len(keys))
	for _, key := range keys {
		responses = append(responses, adminkeydomain.KeyResponse{
			ID:         key.ID.String(),
			Name:       key.Name,
			Scopes:     key.Scopes,
			ExpiresAt:  key.ExpiresAt,
			Active:     key.Active,
			LastUsedAt: key.LastUsedAt,
			CreatedAt:  key.CreatedAt,
		})
	}
	return responses, nil
}

func (s *Service) Revoke(ctx context.Context, id string) error {
	keyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return adminkeydomain.ErrInvalidID
	}

	key, err := s.repo.FindByID(ctx, s.db, keyID)
	if err != nil {
		return err
	}
	if key == nil {
		return adminkeydomain.ErrNotFound
	}

	key.Active = false
	key.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, key); err != nil {
		return err
	}

	s.log.Info("admin key revoked", zap.String("key_id", key.ID.String()))
	return nil
}

func normalizeScopes(scopes []string) ([]string, error) {
	seen := make(map[string]bool, len(scopes))
	normalized := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scope = strings.ToLower(strings.TrimSpace(scope))
		if scope == "" || seen[scope] {
			continue
		}
		known := false
		for _, k := range adminkeydomain.KnownScopes {
			if scope == k {
				known = true
				break
			}
		}
		if !known {
			return nil, adminkeydomain.ErrInvalidScopes
		}
		seen[scope] = true
		normalized = append(normalized, scope)
	}
	if len(normalized) == 0 {
		return nil, adminkeydomain.ErrInvalidScopes
	}
	return normalized, nil
}
