// Package handler provides the net/http adapters for the payment gateway.
//
// The core gateway never touches HTTP. This package turns requests into
// provider.CallbackRequest values and turns validation results into the
// responses the gateway and the shop front end expect.
//
// # Payment Handler
//
//	paymentHandler := handler.NewPaymentHandler(paymentService, validator)
//
//	r.Post("/v1/payments/{provider}", paymentHandler.CreatePaymentURL)
//	r.Get("/v1/callback/{provider}/result", paymentHandler.HandleResult)
//	r.Post("/v1/callback/{provider}/result", paymentHandler.HandleResult)
//	r.Get("/v1/callback/{provider}/success", paymentHandler.HandleSuccess)
//
// CreatePaymentURL accepts a JSON provider.Order and answers with the signed
// URL. HandleResult answers a valid result callback with the plain text
// OK<InvId> body the gateway requires, and with 400 otherwise. HandleSuccess
// answers with the validation result as JSON.
//
// Callback fields are read from the query string. Result delivery by POST is
// not routed.
//
// # Health and Config
//
// HealthHandler reports configured providers and runtime stats. ConfigHandler
// lists registered providers and the config fields each one requires.
package handler
