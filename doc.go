// Package robogate signs Robokassa payment links and verifies the callbacks
// the gateway sends back.
//
// # Overview
//
// Robokassa is a redirect gateway: the shop never sees card data. The shop
// builds a signed URL, the customer pays on the gateway's page, and the
// gateway notifies the shop twice:
//
//	┌─────────────┐  signed URL   ┌─────────────┐
//	│             │──────────────►│             │
//	│    Shop     │               │  Robokassa  │
//	│ (robogate)  │◄──────────────│             │
//	└─────────────┘  ResultURL    └─────────────┘
//	       ▲         (OK<InvId>)         │
//	       └──────── SuccessURL ◄────────┘
//	                 (customer)
//
// Every message carries a digest over a colon separated list of values that
// includes a merchant password. The library builds those lists, hashes them
// and compares digests in constant time.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "github.com/mstgnz/robogate/provider"
//	    "github.com/mstgnz/robogate/provider/robokassa"
//	    "github.com/shopspring/decimal"
//	)
//
//	func main() {
//	    gateway, err := robokassa.New(robokassa.Config{
//	        MerchantLogin: "myshop",
//	        Password1:     "password_1",
//	        Password2:     "password_2",
//	        TestPassword1: "test_password_1",
//	        TestPassword2: "test_password_2",
//	        TestMode:      true,
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    url, err := gateway.GeneratePaymentURL(provider.Order{
//	        Amount:      decimal.NewFromInt(100),
//	        Description: "Order #42",
//	        InvoiceID:   "42",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//	    // redirect the customer to url
//	}
//
// On the ResultURL endpoint:
//
//	result := gateway.ValidateResult(provider.CallbackData{Query: provider.Values{
//	    "OutSum": r.URL.Query().Get("OutSum"),
//	    // ...
//	}})
//	if result.Validated {
//	    fmt.Fprint(w, gateway.ResultAck(result.Values["invId"]))
//	}
//
// The handler package ships ready made net/http adapters for both callbacks.
//
// # Registry
//
// Providers register themselves by name on import and can be built from a
// string map, the form configuration takes when it comes from the
// environment:
//
//	import _ "github.com/mstgnz/robogate/provider/robokassa"
//
//	service := provider.NewPaymentService()
//	err := service.AddProvider("robokassa", map[string]string{
//	    "merchantLogin": "myshop",
//	    "password1":     "password_1",
//	    // ...
//	})
//
// # HTTP API
//
// cmd/main.go serves the adapters:
//
//	POST /v1/payments/{provider}          JSON order -> {"url": "..."}
//	GET  /v1/callback/{provider}/result   OK<InvId> or 400
//	GET  /v1/callback/{provider}/success  validation result as JSON
//	GET  /v1/providers                    registered providers
//	GET  /v1/providers/{provider}/config  config fields a provider needs
//	GET  /health
//
// # Configuration
//
// Environment variables, optionally from a .env file:
//
//	ROBOKASSA_MERCHANT_LOGIN=myshop
//	ROBOKASSA_PASSWORD1=...
//	ROBOKASSA_PASSWORD2=...
//	ROBOKASSA_TEST_PASSWORD1=...
//	ROBOKASSA_TEST_PASSWORD2=...
//	ROBOKASSA_TEST_MODE=true
//	ROBOKASSA_HASH_ALGORITHM=sha256
//	ROBOKASSA_RECEIPT_SNO=usn_income
//
//	APP_PORT=9999
//	LOGGING_LEVEL=info
//	CORS_ORIGINS=https://shop.example.com
//	CALLBACK_IP_WHITELIST=185.59.216.65,185.59.217.65
//	CALLBACK_TRUSTED_PROXIES=10.0.0.1
//
// # Examples
//
// examples/robokassa shows direct gateway use, callback verification and the
// env driven payment service.
package robogate
