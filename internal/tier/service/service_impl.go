package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/internal/clock"
	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  tierdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  tierdomain.Repository
}

func New(p Params) tierdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tier.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) ListActive(ctx context.Context) ([]tierdomain.Response, error) {
	items, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]tierdomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, *toResponse(item))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*tierdomain.Response, error) {
	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

func (s *Service) Create(ctx context.Context, req tierdomain.CreateRequest) (*tierdomain.Response, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	code := slug.Make(req.Name)
	existing, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, tierdomain.ErrCodeTaken
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := s.clock.Now()
	entity := &tierdomain.Tier{
		ID:            s.genID.Generate(),
		Code:          code,
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		PoemCount:     req.PoemCount,
		BonusPoems:    req.BonusPoems,
		PriceCents:    req.PriceCents,
		Currency:      currency,
		DeliveryHours: req.DeliveryHours,
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("tier created",
		zap.String("tier_id", entity.ID.String()),
		zap.String("code", entity.Code))

	return toResponse(entity), nil
}

func (s *Service) Update(ctx context.Context, id string, req tierdomain.UpdateRequest) (*tierdomain.Response, error) {
	entity, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		entity.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceCents != nil {
		if *req.PriceCents <= 0 {
			return nil, tierdomain.ErrInvalidPrice
		}
		entity.PriceCents = *req.PriceCents
	}
	if req.DeliveryHours != nil {
		if *req.DeliveryHours <= 0 {
			return nil, tierdomain.ErrInvalidDeliveryHours
		}
		entity.DeliveryHours = *req.DeliveryHours
	}
	if req.Active != nil {
		entity.Active = *req.Active
	}
	entity.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

// find resolves either a snowflake ID or a tier code.
func (s *Service) find(ctx context.Context, id string) (*tierdomain.Tier, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, tierdomain.ErrInvalidID
	}

	if parsed, err := snowflake.ParseString(id); err == nil {
		entity, err := s.repo.FindByID(ctx, s.db, parsed)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			return entity, nil
		}
	}

	entity, err := s.repo.FindByCode(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, tierdomain.ErrNotFound
	}
	return entity, nil
}

func validateCreate(req tierdomain.CreateRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return tierdomain.ErrInvalidName
	}
	if req.PriceCents <= 0 {
		return tierdomain.ErrInvalidPrice
	}
	if req.PoemCount <= 0 {
		return tierdomain.ErrInvalidPoemCount
	}
	if req.BonusPoems < 0 {
		return tierdomain.ErrInvalidBonusPoems
	}
	if req.DeliveryHours <= 0 {
		return tierdomain.ErrInvalidDeliveryHours
	}
	return nil
}

func toResponse(t *tierdomain.Tier) *tierdomain.Response {
	return &tierdomain.Response{
		ID:            t.ID.String(),
		Code:          t.Code,
		Name:          t.Name,
		Description:   t.Description,
		PoemCount:     t.PoemCount,
		BonusPoems:    t.BonusPoems,
		PriceCents:    t.PriceCents,
		Currency:      t.Currency,
		DeliveryHours: t.DeliveryHours,
		Active:        t.Active,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
