package di

import (
	"go.uber.org/fx"

	"github.com/mizanur-rahman/homemeal/internal/adapter/checkout"
	"github.com/mizanur-rahman/homemeal/internal/app"
	"github.com/mizanur-rahman/homemeal/internal/config"
	"github.com/mizanur-rahman/homemeal/internal/logger"
	"github.com/mizanur-rahman/homemeal/internal/pkg/auth"
	"github.com/mizanur-rahman/homemeal/internal/server/http/handlers"
	"github.com/mizanur-rahman/homemeal/internal/server/http/router"
	"github.com/mizanur-rahman/homemeal/internal/storage/postgres"
	"github.com/mizanur-rahman/homemeal/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		checkout.Module,
		usecase.Module,
		fx.Provide(func(f *app.MarketFacade) handlers.MarketFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
