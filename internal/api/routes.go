package api

import (
	"net/http"

	"github.com/JaimeStill/webcarros/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, runtime *Runtime, domain *Domain) {
	accountsHandler := domain.Accounts.Handler(runtime.Cookie)
	carsHandler := domain.Cars.Handler(runtime.MaxUploadSize)

	groups := append([]routes.Group{accountsHandler.Routes()}, carsHandler.Routes()...)
	routes.Register(mux, "", groups...)

	runtime.Logger.Info("api routes registered", "routes", len(routes.Patterns(BasePath, groups...)))
}
