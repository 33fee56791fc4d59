package provider

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Request methods a gateway may use to deliver its result callback
const (
	MethodGET  = "GET"
	MethodPOST = "POST"
)

// ConfigField represents a required configuration field for a payment provider
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "url", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`   // regex pattern for validation
	MinLength   int    `json:"minLength,omitempty"` // minimum length for string fields
	MaxLength   int    `json:"maxLength,omitempty"` // maximum length for string fields
}

// Item represents a product or service line in the order
type Item struct {
	Name     string          `json:"name" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order contains everything required to build a payment URL
type Order struct {
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description,omitempty"`
	InvoiceID   string            `json:"invoiceId,omitempty"`
	Email       string            `json:"email,omitempty" validate:"omitempty,email"`
	Currency    string            `json:"currency,omitempty"`
	Encoding    string            `json:"encoding,omitempty"`
	Items       []Item            `json:"items,omitempty" validate:"omitempty,dive"`
	CustomData  map[string]string `json:"customData,omitempty"`
}

// ValidationResult is the outcome of checking an inbound gateway callback.
// It is a value, not an error: callback handlers must acknowledge the
// gateway whatever the outcome.
type ValidationResult struct {
	Validated  bool              `json:"validated"`
	Details    string            `json:"details"`
	Values     map[string]string `json:"values,omitempty"`
	CustomData map[string]string `json:"customData,omitempty"`
}

// Fields is a read-only view over named request fields
type Fields interface {
	// Get returns the value stored under key and whether it was present
	Get(key string) (string, bool)
	// Keys returns every field name
	Keys() []string
}

// CallbackRequest exposes the query and body fields of an inbound callback.
// Adapters for concrete HTTP frameworks live outside the core.
type CallbackRequest interface {
	QueryFields() Fields
	BodyFields() Fields
}

// Values is a map-backed Fields implementation
type Values map[string]string

// Get implements Fields
func (v Values) Get(key string) (string, bool) {
	value, ok := v[key]
	return value, ok
}

// Keys implements Fields
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	return keys
}

// CallbackData is a plain CallbackRequest, handy for tests and for callers
// that have already decoded the request themselves
type CallbackData struct {
	Query Values
	Body  Values
}

// QueryFields implements CallbackRequest
func (d CallbackData) QueryFields() Fields {
	if d.Query == nil {
		return Values{}
	}
	return d.Query
}

// BodyFields implements CallbackRequest
func (d CallbackData) BodyFields() Fields {
	if d.Body == nil {
		return Values{}
	}
	return d.Body
}

// ResultOptions holds per-call overrides for callback validation
type ResultOptions struct {
	RequestMethod string
}

// ResultOption mutates ResultOptions
type ResultOption func(*ResultOptions)

// WithRequestMethod overrides the request method used to read callback fields
func WithRequestMethod(method string) ResultOption {
	return func(o *ResultOptions) {
		o.RequestMethod = strings.ToUpper(strings.TrimSpace(method))
	}
}

// ApplyResultOptions folds opts over the defaults
func ApplyResultOptions(defaultMethod string, opts ...ResultOption) ResultOptions {
	o := ResultOptions{RequestMethod: strings.ToUpper(defaultMethod)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.RequestMethod == "" {
		o.RequestMethod = strings.ToUpper(defaultMethod)
	}
	return o
}

// PaymentProvider defines the interface that all redirect payment gateways must implement
type PaymentProvider interface {
	// Initialize sets up the payment provider with credentials and options
	Initialize(config map[string]string) error

	// GetRequiredConfig returns the configuration fields required for this provider
	GetRequiredConfig() []ConfigField

	// ValidateConfig validates the provided configuration against provider requirements
	ValidateConfig(config map[string]string) error

	// GeneratePaymentURL builds the signed URL the customer is redirected to
	GeneratePaymentURL(order Order) (string, error)

	// ValidateResult checks the signature of the gateway's result callback
	ValidateResult(req CallbackRequest, opts ...ResultOption) ValidationResult

	// ValidateSuccess checks the signature carried by the customer's success redirect
	ValidateSuccess(req CallbackRequest, opts ...ResultOption) ValidationResult

	// ResultAck returns the body the gateway expects after a valid result callback
	ResultAck(invoiceID string) string
}

// ProviderFactory is a function type that creates a new PaymentProvider
type ProviderFactory func() PaymentProvider
