package hub

import (
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/stats"
	"github.com/prasenjit/swagger-hub/internal/storage"
)

type moduleParams struct {
	fx.In

	Transport http.RoundTripper
	Config    config.Section
	Logger    *slog.Logger     `optional:"true"`
	Storage   storage.Storage  `optional:"true"`
	Stats     *stats.Collector `optional:"true"`
}

// Module creates an Fx module providing *Provider and DocumentProvider.
// The graph must supply an http.RoundTripper and the root config.Section;
// a *slog.Logger, storage.Storage and *stats.Collector are used when present.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func Module(sectionName string) fx.Option {
	return fx.Module("swagger-hub",
		fx.Provide(
			func(p moduleParams) (*Provider, error) {
				var loggers LoggerFactory = NoLogging{}
				if p.Logger != nil {
					loggers = SlogFactory{Base: p.Logger}
				}

				return NewFromConfig(Dependencies{
					Transport: p.Transport,
					Loggers:   loggers,
					Options:   []Option{WithStorage(p.Storage), WithStats(p.Stats)},
				}, p.Config, sectionName)
			},
			func(p *Provider) DocumentProvider { return p },
		),
	)
}
