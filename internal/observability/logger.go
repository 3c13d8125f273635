package observability

import (
	"go.uber.org/zap"

	"github.com/appoetlabs/appoet/internal/config"
)

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.App.Env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
