package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mstgnz/robogate/handler"
	"github.com/mstgnz/robogate/infra/config"
	"github.com/mstgnz/robogate/infra/middle"
	"github.com/mstgnz/robogate/infra/response"
	"github.com/mstgnz/robogate/provider"
	v1 "github.com/mstgnz/robogate/router/v1"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Routes installs the middleware stack, the health endpoint and the v1 API
func Routes(r chi.Router, paymentService *provider.PaymentService) {
	r.Use(middle.RequestIDMiddleware())
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.GatewayLoggingMiddleware())
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.RequestValidationMiddleware())

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.GetAppConfig().CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin", "X-Requested-With", middle.RequestIDHeader},
		ExposedHeaders: []string{middle.RequestIDHeader},
		MaxAge:         300, // Preflight cache time (second)
	}))

	healthHandler := handler.NewHealthHandler(paymentService, Version)
	r.Get("/health", healthHandler.CheckHealth)

	r.Route("/v1", func(r chi.Router) {
		v1.Routes(r, paymentService)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Not Found", nil)
	})
}
