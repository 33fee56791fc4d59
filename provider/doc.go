// Package provider defines the interface redirect payment gateways implement
// and the plumbing shared between them.
//
// # Core Concepts
//
//   - PaymentProvider: builds signed payment URLs and validates callbacks
//   - Order / Item: what the customer pays for
//   - CallbackRequest / Fields: a framework-neutral view of an inbound callback
//   - ValidationResult: the outcome of a callback check, never an error
//   - ProviderRegistry: maps provider names to factories
//   - PaymentService: holds initialized providers and routes calls by name
//
// # Basic Usage
//
//	import _ "github.com/mstgnz/robogate/provider/robokassa" // Auto-registers robokassa
//
//	service := provider.NewPaymentService()
//	err := service.AddProvider("robokassa", map[string]string{
//	    "merchantLogin": "myshop",
//	    "password1":     "password_1",
//	    "password2":     "password_2",
//	    "testPassword1": "test_password_1",
//	    "testPassword2": "test_password_2",
//	    "testMode":      "true",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	url, err := service.GeneratePaymentURL("robokassa", provider.Order{
//	    Amount:    decimal.NewFromInt(100),
//	    InvoiceID: "42",
//	})
//
// # Callbacks
//
// Callbacks are read through CallbackRequest so the core does not depend on
// any HTTP framework. CallbackData covers callers that already hold the
// fields in maps:
//
//	result := service.ValidateResult("robokassa", provider.CallbackData{
//	    Query: provider.Values{"OutSum": "100", "InvId": "42", "SignatureValue": sig},
//	})
//
//	if result.Validated {
//	    ack, _ := service.ResultAck("robokassa", result.Values["invId"])
//	    // write ack as the response body
//	}
//
// WithRequestMethod picks the field source for one call: GET reads the query
// string, POST reads the body. Providers only support GET delivery today, so
// a POST call reads body fields and nothing more.
//
// # Provider Registration
//
//	provider.Register("myprovider", func() provider.PaymentProvider {
//	    return &MyCustomProvider{}
//	})
//
// Config maps are checked with ValidateConfigFields against the provider's
// GetRequiredConfig before Initialize builds anything. Every missing field
// is reported at once in a *MissingFieldsError.
package provider
