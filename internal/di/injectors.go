//go:build wireinject
// +build wireinject

package di

import (
	"cvewatch/internal"
	"cvewatch/internal/controllers"
	"cvewatch/internal/fetch"
	"cvewatch/internal/notify"
	"cvewatch/internal/providers"
	"cvewatch/internal/runner"
	"cvewatch/internal/services"
	"cvewatch/internal/structures"
	"cvewatch/internal/subscriptions"

	wire "github.com/google/wire"
)

var cycleSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,
	providers.NewHttpClientProvider,

	fetch.NewSchemaProvider,
	fetch.NewHttpPageFetcher,
	wire.Bind(new(fetch.PageFetcher), new(*fetch.HttpPageFetcher)),
	fetch.NewOrchestrator,
	wire.Bind(new(services.FetcherInterface), new(*fetch.Orchestrator)),

	notify.NewHtmlRenderer,
	wire.Bind(new(notify.Renderer), new(*notify.HtmlRenderer)),
	notify.NewSmtpSender,
	wire.Bind(new(notify.Sender), new(*notify.SmtpSender)),
	notify.NewNotifier,
	wire.Bind(new(services.NotifierInterface), new(*notify.Notifier)),

	subscriptions.NewZstdCompressor,
	subscriptions.NewFileManager,
	subscriptions.NewStore,
	services.NewCycleService,
	runner.NewRunner,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		cycleSet,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}

// InitRunner builds the cycle runner without the HTTP side, for one-shot runs.
func InitRunner(cfg *structures.CliFlags) (runner.RunnerInterface, error) {

	wire.Build(cycleSet)

	return nil, nil
}
