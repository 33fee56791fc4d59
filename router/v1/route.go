package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/robogate/handler"
	"github.com/mstgnz/robogate/infra/config"
	"github.com/mstgnz/robogate/infra/logger"
	"github.com/mstgnz/robogate/infra/middle"
	"github.com/mstgnz/robogate/provider"
	_ "github.com/mstgnz/robogate/provider/robokassa" // Import for side-effect registration
)

// NewPaymentService builds a payment service with every provider that has a
// configuration. Providers that fail to initialize are logged and skipped.
func NewPaymentService(providerConfig *config.ProviderConfig) *provider.PaymentService {
	paymentService := provider.NewPaymentService()

	for _, providerName := range providerConfig.GetAvailableProviders() {
		providerCfg, err := providerConfig.GetConfig(providerName)
		if err != nil {
			logger.Error("Failed to get provider configuration", err, logger.LogContext{Provider: providerName})
			continue
		}

		if err := paymentService.AddProvider(providerName, providerCfg); err != nil {
			logger.Error("Failed to register provider", err, logger.LogContext{Provider: providerName})
			continue
		}
	}

	if len(paymentService.ConfiguredProviders()) == 0 {
		logger.Warn("No payment providers configured")
	}

	return paymentService
}

// Routes registers all API routes
func Routes(r chi.Router, paymentService *provider.PaymentService) {
	paymentHandler := handler.NewPaymentHandler(paymentService, config.App().Validator)
	configHandler := handler.NewConfigHandler(paymentService)

	// Payment routes
	r.Route("/payments", func(r chi.Router) {
		// default provider
		r.Post("/", paymentHandler.CreatePaymentURL)
		r.Post("/{provider}", paymentHandler.CreatePaymentURL)
	})

	// Callback routes, called by the gateway and by the customer's browser
	r.Route("/callback/{provider}", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middle.IPWhitelistMiddleware(
				config.GetListEnv("CALLBACK_IP_WHITELIST", nil),
				config.GetListEnv("CALLBACK_TRUSTED_PROXIES", nil),
			))
			// only GET delivery is supported
			r.Get("/result", paymentHandler.HandleResult)
		})
		r.Get("/success", paymentHandler.HandleSuccess)
	})

	// Provider metadata
	r.Route("/providers", func(r chi.Router) {
		r.Get("/", configHandler.ListProviders)
		r.Get("/{provider}/config", configHandler.GetRequiredConfig)
	})
}
