package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mstgnz/robogate/infra/logger"
)

// ErrProviderNotConfigured is returned when no initialized provider matches a name
var ErrProviderNotConfigured = errors.New("payment provider is not configured")

// PaymentService routes payment operations to named, initialized providers
type PaymentService struct {
	registry        *ProviderRegistry
	providers       map[string]PaymentProvider
	defaultProvider string
	mu              sync.RWMutex
}

// NewPaymentService creates a payment service backed by the default registry
func NewPaymentService() *PaymentService {
	return NewPaymentServiceWithRegistry(DefaultRegistry)
}

// NewPaymentServiceWithRegistry creates a payment service backed by registry
func NewPaymentServiceWithRegistry(registry *ProviderRegistry) *PaymentService {
	return &PaymentService{
		registry:  registry,
		providers: make(map[string]PaymentProvider),
	}
}

// AddProvider creates and initializes a provider from the registry.
// The first provider added becomes the default.
func (s *PaymentService) AddProvider(name string, config map[string]string) error {
	p, err := s.registry.CreateProvider(name)
	if err != nil {
		return err
	}

	if err := p.Initialize(config); err != nil {
		return fmt.Errorf("failed to initialize provider %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.providers[name] = p
	if s.defaultProvider == "" {
		s.defaultProvider = name
	}

	logger.Info("Payment provider added", logger.LogContext{Provider: name})
	return nil
}

// SetDefaultProvider sets the provider used when no name is given
func (s *PaymentService) SetDefaultProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[name]; !ok {
		return fmt.Errorf("%w: provider %s is not configured", ErrProviderNotConfigured, name)
	}

	s.defaultProvider = name
	return nil
}

// GetProvider returns a configured provider by name, or the default one if name is empty
func (s *PaymentService) GetProvider(name string) (PaymentProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		name = s.defaultProvider
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no payment provider configured", ErrProviderNotConfigured)
	}

	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s is not configured", ErrProviderNotConfigured, name)
	}
	return p, nil
}

// ConfiguredProviders returns the names of initialized providers, sorted
func (s *PaymentService) ConfiguredProviders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProvider returns the name used when a call names no provider
func (s *PaymentService) DefaultProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultProvider
}

// GeneratePaymentURL builds a signed payment URL using the named provider
func (s *PaymentService) GeneratePaymentURL(providerName string, order Order) (string, error) {
	p, err := s.GetProvider(providerName)
	if err != nil {
		return "", err
	}

	paymentURL, err := p.GeneratePaymentURL(order)
	if err != nil {
		logger.Error("Failed to generate payment URL", err, logger.LogContext{
			Provider: providerName,
			Fields: map[string]any{
				"invoice_id": order.InvoiceID,
			},
		})
		return "", err
	}

	return paymentURL, nil
}

// ValidateResult checks a result callback with the named provider.
// An unknown provider yields a failed result rather than an error.
func (s *PaymentService) ValidateResult(providerName string, req CallbackRequest, opts ...ResultOption) ValidationResult {
	p, err := s.GetProvider(providerName)
	if err != nil {
		return ValidationResult{Validated: false, Details: err.Error()}
	}
	return p.ValidateResult(req, opts...)
}

// ValidateSuccess checks a success redirect with the named provider
func (s *PaymentService) ValidateSuccess(providerName string, req CallbackRequest, opts ...ResultOption) ValidationResult {
	p, err := s.GetProvider(providerName)
	if err != nil {
		return ValidationResult{Validated: false, Details: err.Error()}
	}
	return p.ValidateSuccess(req, opts...)
}

// ResultAck returns the acknowledgement body for the named provider
func (s *PaymentService) ResultAck(providerName, invoiceID string) (string, error) {
	p, err := s.GetProvider(providerName)
	if err != nil {
		return "", err
	}
	return p.ResultAck(invoiceID), nil
}
