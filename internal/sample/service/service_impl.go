package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	sampledomain "github.com/appoetlabs/appoet/internal/sample/domain"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo sampledomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo sampledomain.Repository
}

func New(p Params) sampledomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("sample.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListVisible(ctx context.Context) ([]sampledomain.Response, error) {
	items, err := s.repo.ListVisible(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]sampledomain.Response, 0, len(items))
	for _, item := range items {
		resp = append(resp, sampledomain.Response{
			ID:           item.ID.String(),
			Title:        item.Title,
			Content:      item.Content,
			PoemType:     item.PoemType,
			DisplayOrder: item.DisplayOrder,
		})
	}
	return resp, nil
}
