package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/appoetlabs/appoet/internal/clock"
	"github.com/appoetlabs/appoet/internal/config"
	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
	orderdomain "github.com/appoetlabs/appoet/internal/order/domain"
	paymentdomain "github.com/appoetlabs/appoet/internal/payment/domain"
	requestdomain "github.com/appoetlabs/appoet/internal/poemrequest/domain"
	tierdomain "github.com/appoetlabs/appoet/internal/tier/domain"
	"github.com/appoetlabs/appoet/pkg/db/pagination"
)

// amountEpsilonCents is the tolerated difference between the captured
// amount and the tier price.
const amountEpsilonCents = 1

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Cfg         config.Config
	Repo        orderdomain.Repository
	TierRepo    tierdomain.Repository
	PaymentRepo paymentdomain.Repository
	Adapter     paymentdomain.Adapter
	RequestRepo requestdomain.Repository
	Mailer      mailerdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	repo        orderdomain.Repository
	tierRepo    tierdomain.Repository
	paymentRepo paymentdomain.Repository
	adapter     paymentdomain.Adapter
	requestRepo requestdomain.Repository
	mailer      mailerdomain.Service
}

func New(p Params) orderdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Cfg,
		repo:        p.Repo,
		tierRepo:    p.TierRepo,
		paymentRepo: p.PaymentRepo,
		adapter:     p.Adapter,
		requestRepo: p.RequestRepo,
		mailer:      p.Mailer,
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateRequest) (*orderdomain.CreateResponse, error) {
	email := strings.TrimSpace(req.Email)
	if !emailPattern.MatchString(email) {
		return nil, orderdomain.ErrInvalidEmail
	}

	tier, err := s.resolveTier(ctx, req.TierID)
	if err != nil {
		return nil, err
	}

	prior, err := s.repo.CountFinalizedByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	firstTime := prior == 0

	credits := tier.PoemCount
	if firstTime {
		credits += tier.BonusPoems
	}

	now := s.clock.Now()
	order := &orderdomain.Order{
		ID:             s.genID.Generate(),
		OrderNumber:    newOrderNumber(),
		TierID:         tier.ID,
		Email:          email,
		Status:         orderdomain.OrderStatusPending,
		PoemsRemaining: credits,
		DeliveryHours:  tier.DeliveryHours,
		FirstTime:      firstTime,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, s.db, order); err != nil {
		return nil, err
	}

	description := fmt.Sprintf("%s - Appoet Poetry Commission", tier.Name)
	remote, err := s.adapter.CreateRemoteOrder(ctx, order.ID.String(), description, tier.PriceCents, tier.Currency)
	if err != nil {
		s.log.Error("failed to open remote payment order",
			zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("tier", tier.Code),
		zap.Bool("first_time", firstTime))

	return &orderdomain.CreateResponse{
		OrderID:         order.ID.String(),
		OrderNumber:     order.OrderNumber,
		ProviderOrderID: remote.ID,
		ApprovalURL:     remote.ApprovalURL,
	}, nil
}

func (s *Service) Capture(ctx context.Context, req orderdomain.CaptureRequest) (*orderdomain.CaptureResponse, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	// Capture is deliberately not idempotent: a second call on an already
	// finalized order is rejected rather than silently accepted.
	if order.Status != orderdomain.OrderStatusPending {
		return nil, orderdomain.ErrAlreadyProcessed
	}
	if order.Tier == nil {
		return nil, orderdomain.ErrInvalidTier
	}

	result, err := s.adapter.Capture(ctx, req.ProviderOrderID)
	if err != nil {
		return nil, err
	}
	if result.Status != paymentdomain.CaptureStatusCompleted {
		return nil, orderdomain.ErrPaymentIncomplete
	}

	delta := result.AmountCents - order.Tier.PriceCents
	if delta < -amountEpsilonCents || delta > amountEpsilonCents {
		s.log.Error("payment amount mismatch",
			zap.String("order_id", order.ID.String()),
			zap.Int64("expected_cents", order.Tier.PriceCents),
			zap.Int64("received_cents", result.AmountCents))
		return nil, orderdomain.ErrAmountMismatch
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.Status = orderdomain.OrderStatusPaid
		order.AmountPaidCents = result.AmountCents
		order.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}

		payment := &paymentdomain.Payment{
			ID:                s.genID.Generate(),
			OrderID:           order.ID,
			Provider:          paymentdomain.ProviderPayPal,
			ProviderPaymentID: result.ProviderRef,
			AmountCents:       result.AmountCents,
			Currency:          result.Currency,
			Status:            result.Status,
			ProviderPayload:   result.RawPayload,
			Verified:          true,
			CreatedAt:         now,
		}
		if err := s.paymentRepo.Insert(ctx, tx, payment); err != nil {
			return err
		}

		return s.mailer.EnqueueOrderConfirmation(ctx, tx, order.Email, mailerdomain.OrderConfirmation{
			OrderNumber:    order.OrderNumber,
			TierName:       order.Tier.Name,
			PriceFormatted: formatCents(result.AmountCents, result.Currency),
			PoemsRemaining: order.PoemsRemaining,
			DeliveryHours:  order.DeliveryHours,
			RequestURL:     fmt.Sprintf("%s/request?order=%s", strings.TrimRight(s.cfg.App.BaseURL, "/"), order.OrderNumber),
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order captured",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("amount_cents", result.AmountCents))

	return &orderdomain.CaptureResponse{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
	}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*orderdomain.DetailResponse, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, orderdomain.ErrNotFound
	}
	if !order.Status.AcceptsRequests() {
		return nil, orderdomain.ErrNotPaid
	}
	if order.PoemsRemaining <= 0 {
		return nil, orderdomain.ErrNoCreditsRemaining
	}

	requests, err := s.requestRepo.ListByOrderID(ctx, s.db, order.ID)
	if err != nil {
		return nil, err
	}

	detail := &orderdomain.DetailResponse{
		OrderID:        order.ID.String(),
		OrderNumber:    order.OrderNumber,
		Email:          order.Email,
		PoemsRemaining: order.PoemsRemaining,
		DeliveryHours:  order.DeliveryHours,
		Requests:       toSummaries(requests, true),
	}
	if order.Tier != nil {
		detail.TierName = order.Tier.Name
	}
	return detail, nil
}

func (s *Service) Check(ctx context.Context, req orderdomain.CheckRequest) ([]orderdomain.CheckedOrder, error) {
	orderNumber := strings.TrimSpace(req.OrderNumber)
	email := strings.TrimSpace(req.Email)
	if orderNumber == "" && email == "" {
		return nil, orderdomain.ErrLookupParamRequired
	}

	orders, err := s.repo.Search(ctx, s.db, orderNumber, email, 10)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, orderdomain.ErrNotFound
	}

	checked := make([]orderdomain.CheckedOrder, 0, len(orders))
	for _, order := range orders {
		requests, err := s.requestRepo.ListByOrderID(ctx, s.db, order.ID)
		if err != nil {
			return nil, err
		}
		item := orderdomain.CheckedOrder{
			OrderID:        order.ID.String(),
			OrderNumber:    order.OrderNumber,
			Status:         string(order.Status),
			PoemsRemaining: order.PoemsRemaining,
			DeliveryHours:  order.DeliveryHours,
			CreatedAt:      order.CreatedAt,
			Requests:       toSummaries(requests, false),
		}
		if order.Tier != nil {
			item.TierName = order.Tier.Name
		}
		checked = append(checked, item)
	}
	return checked, nil
}

func (s *Service) AdminList(ctx context.Context, req orderdomain.AdminListRequest) (orderdomain.AdminListResponse, error) {
	status := orderdomain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != "" && !status.Valid() {
		return orderdomain.AdminListResponse{}, orderdomain.ErrInvalidStatus
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, status, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return orderdomain.AdminListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *orderdomain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	resp := orderdomain.AdminListResponse{Orders: make([]orderdomain.AdminOrder, 0, len(items))}
	for _, order := range items {
		requests, err := s.requestRepo.ListByOrderID(ctx, s.db, order.ID)
		if err != nil {
			return orderdomain.AdminListResponse{}, err
		}
		resp.Orders = append(resp.Orders, orderdomain.AdminOrder{
			Order:    *order,
			Requests: toSummaries(requests, true),
		})
	}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) resolveTier(ctx context.Context, id string) (*tierdomain.Tier, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, orderdomain.ErrInvalidTier
	}

	var tier *tierdomain.Tier
	if parsed, err := snowflake.ParseString(id); err == nil {
		tier, err = s.tierRepo.FindByID(ctx, s.db, parsed)
		if err != nil {
			return nil, err
		}
	}
	if tier == nil {
		var err error
		tier, err = s.tierRepo.FindByCode(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
	}
	if tier == nil || !tier.Active {
		return nil, orderdomain.ErrInvalidTier
	}
	return tier, nil
}

func toSummaries(requests []*requestdomain.PoemRequest, includeID bool) []orderdomain.RequestSummary {
	summaries := make([]orderdomain.RequestSummary, 0, len(requests))
	for _, req := range requests {
		summary := orderdomain.RequestSummary{
			PoemType:    string(req.PoemType),
			Status:      string(req.Status),
			CreatedAt:   req.CreatedAt,
			DeliveredAt: req.DeliveredAt,
		}
		if includeID {
			summary.ID = req.ID.String()
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func newOrderNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "APT-" + raw[:10]
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%s %d.%02d", currency, cents/100, cents%100)
}
