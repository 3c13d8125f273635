package poemrequest

import (
	"go.uber.org/fx"

	"github.com/appoetlabs/appoet/internal/poemrequest/repository"
	"github.com/appoetlabs/appoet/internal/poemrequest/service"
)

var Module = fx.Module("poemrequest.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
