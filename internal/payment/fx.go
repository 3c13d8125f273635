package payment

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/config"
	"github.com/appoetlabs/appoet/internal/payment/adapters/paypal"
	paymentdomain "github.com/appoetlabs/appoet/internal/payment/domain"
	"github.com/appoetlabs/appoet/internal/payment/repository"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config, log *zap.Logger) paymentdomain.Adapter {
		return paypal.New(cfg, log)
	}),
)
