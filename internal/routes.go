package internal

import (
	"net/http"

	"flighttrack/internal/controllers"
	"flighttrack/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/api/v1/update-location", http.HandlerFunc(apiController.UpdateLocation))
	routers.Get("/api/v1/track/{flightId}", http.HandlerFunc(apiController.Track))
	routers.Post("/api/v1/archive/{flightId}", http.HandlerFunc(apiController.ArchiveFlight))
	return routers
}
