package mailer

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/config"
	mailerdomain "github.com/appoetlabs/appoet/internal/mailer/domain"
	"github.com/appoetlabs/appoet/internal/mailer/repository"
	"github.com/appoetlabs/appoet/internal/mailer/resend"
	"github.com/appoetlabs/appoet/internal/mailer/service"
)

var Module = fx.Module("mailer",
	fx.Provide(repository.Provide),
	fx.Provide(func(cfg config.Config, log *zap.Logger) mailerdomain.Sender {
		return resend.New(cfg, log)
	}),
	fx.Provide(service.New),
)
