package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/internal/clock"
	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      requestdomain.Repository
	OrderRepo orderdomain.Repository
	Mailer    mailerdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      requestdomain.Repository
	orderRepo orderdomain.Repository
	mailer    mailerdomain.Service
}

func New(p Params) requestdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("poemrequest.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
		mailer:    p.Mailer,
	}
}

func (s *Service) Submit(ctx context.Context, req requestdomain.SubmitRequest) (*requestdomain.SubmitResponse, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil {
		return nil, requestdomain.ErrOrderNotFound
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, requestdomain.ErrOrderNotFound
	}
	// Any order outside the paid lifecycle refuses requests, including
	// DELIVERED orders that still carry a leftover credit.
	if !order.Status.AcceptsRequests() {
		return nil, requestdomain.ErrPaymentNotConfirmed
	}
	if order.PoemsRemaining <= 0 {
		return nil, requestdomain.ErrNoCreditsRemaining
	}

	poemType := requestdomain.PoemType(strings.ToUpper(strings.TrimSpace(req.PoemType)))
	if !poemType.Valid() {
		return nil, requestdomain.ErrInvalidPoemType
	}

	theme := strings.TrimSpace(req.Theme)
	if req.SurpriseMe {
		theme = requestdomain.DefaultSurpriseTheme
	} else if theme == "" {
		return nil, requestdomain.ErrThemeRequired
	}

	now := s.clock.Now()
	request := &requestdomain.PoemRequest{
		ID:                s.genID.Generate(),
		OrderID:           order.ID,
		PoemType:          poemType,
		Theme:             theme,
		Tone:              strings.TrimSpace(req.Tone),
		Constraints:       strings.TrimSpace(req.Constraints),
		SurpriseMe:        req.SurpriseMe,
		Status:            requestdomain.RequestStatusPending,
		EstimatedDelivery: now.Add(time.Duration(order.DeliveryHours) * time.Hour),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, request); err != nil {
			return err
		}
		// The decrement carries its own guard so two concurrent submissions
		// cannot both consume the last credit.
		ok, err := s.orderRepo.DecrementCredits(ctx, tx, order.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return requestdomain.ErrNoCreditsRemaining
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("poem request submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("poem_type", string(poemType)))

	return &requestdomain.SubmitResponse{
		RequestID:         request.ID.String(),
		PoemsRemaining:    order.PoemsRemaining - 1,
		EstimatedDelivery: request.EstimatedDelivery,
	}, nil
}

func (s *Service) MarkInProgress(ctx context.Context, id string) (*requestdomain.Response, error) {
	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	request.Status = requestdomain.RequestStatusInProgress
	request.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, request); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, request), nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status requestdomain.RequestStatus) (*requestdomain.Response, error) {
	if !status.Valid() {
		return nil, requestdomain.ErrInvalidStatus
	}

	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	request.Status = status
	request.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, request); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, request), nil
}

func (s *Service) Deliver(ctx context.Context, id string, req requestdomain.DeliverRequest) (*requestdomain.Response, error) {
	content := strings.TrimSpace(req.PoemContent)
	if content == "" {
		return nil, requestdomain.ErrContentRequired
	}

	request, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, s.db, request.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, requestdomain.ErrOrderNotFound
	}

	now := s.clock.Now()
	request.PoemContent = content
	request.PoemTitle = strings.TrimSpace(req.PoemTitle)
	request.Status = requestdomain.RequestStatusDelivered
	request.DeliveredAt = &now
	request.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, request); err != nil {
			return err
		}

		if err := s.mailer.EnqueuePoemDelivery(ctx, tx, order.Email, mailerdomain.PoemDelivery{
			OrderNumber: order.OrderNumber,
			PoemTitle:   request.PoemTitle,
			PoemType:    string(request.PoemType),
			PoemContent: request.PoemContent,
		}); err != nil {
			return err
		}

		// Re-scan the siblings inside the tx rather than trusting a tally;
		// a request delivered concurrently still counts.
		siblings, err := s.repo.ListByOrderID(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		allDelivered := len(siblings) > 0
		for _, sibling := range siblings {
			if sibling.ID == request.ID {
				continue
			}
			if sibling.Status != requestdomain.RequestStatusDelivered {
				allDelivered = false
				break
			}
		}
		if allDelivered {
			order.Status = orderdomain.OrderStatusDelivered
			order.UpdatedAt = now
			return s.orderRepo.Update(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("poem delivered",
		zap.String("request_id", request.ID.String()),
		zap.String("order_number", order.OrderNumber))

	return s.toResponse(ctx, request), nil
}

func (s *Service) AdminList(ctx context.Context, status string) ([]requestdomain.Response, error) {
	filter := requestdomain.RequestStatus(strings.ToUpper(strings.TrimSpace(status)))
	if filter != "" && !filter.Valid() {
		return nil, requestdomain.ErrInvalidStatus
	}

	requests, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]requestdomain.Response, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, *s.toResponse(ctx, request))
	}
	return responses, nil
}

func (s *Service) find(ctx context.Context, id string) (*requestdomain.PoemRequest, error) {
	requestID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, requestdomain.ErrInvalidID
	}
	request, err := s.repo.FindByID(ctx, s.db, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, requestdomain.ErrNotFound
	}
	return request, nil
}

func (s *Service) toResponse(ctx context.Context, request *requestdomain.PoemRequest) *requestdomain.Response {
	resp := &requestdomain.Response{
		ID:                request.ID.String(),
		OrderID:           request.OrderID.String(),
		PoemType:          request.PoemType,
		Theme:             request.Theme,
		Tone:              request.Tone,
		Constraints:       request.Constraints,
		SurpriseMe:        request.SurpriseMe,
		Status:            request.Status,
		PoemTitle:         request.PoemTitle,
		PoemContent:       request.PoemContent,
		EstimatedDelivery: request.EstimatedDelivery,
		DeliveredAt:       request.DeliveredAt,
		CreatedAt:         request.CreatedAt,
	}
	if order, err := s.orderRepo.FindByID(ctx, s.db, request.OrderID); err == nil && order != nil {
		resp.OrderNumber = order.OrderNumber
		resp.CustomerEmail = order.Email
		if order.Tier != nil {
			resp.TierName = order.Tier.Name
		}
	}
	return resp
}
