package internal

import (
	"cvewatch/internal/controllers"
	"cvewatch/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController, logger providers.Logger) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider(logger)

	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Get("/watermarks", http.HandlerFunc(apiController.GetWatermarks))
	routers.Post("/run", http.HandlerFunc(apiController.RunCycle))
	return routers
}
