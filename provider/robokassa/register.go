package robokassa

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mstgnz/robogate/provider"
)

// Register Robokassa provider with the gateway registry
func init() {
	provider.Register(providerName, NewProvider)
}

// Provider adapts a Gateway to provider.PaymentProvider so it can be built
// from a string map by the registry
type Provider struct {
	gateway *Gateway
}

// NewProvider creates an uninitialized Robokassa provider
func NewProvider() provider.PaymentProvider {
	return &Provider{}
}

// Gateway returns the underlying gateway, nil before Initialize
func (p *Provider) Gateway() *Gateway {
	return p.gateway
}

// GetRequiredConfig returns the configuration fields for Robokassa
func (p *Provider) GetRequiredConfig() []provider.ConfigField {
	return []provider.ConfigField{
		{Key: "merchantLogin", Required: true, Type: "string", Description: "Shop identifier", Example: "myshop"},
		{Key: "password1", Required: true, Type: "string", Description: "Signs payment URLs", Example: "Pass1"},
		{Key: "password2", Required: true, Type: "string", Description: "Verifies result callbacks", Example: "Pass2"},
		{Key: "testPassword1", Required: true, Type: "string", Description: "Password1 used in test mode", Example: "TestPass1"},
		{Key: "testPassword2", Required: true, Type: "string", Description: "Password2 used in test mode", Example: "TestPass2"},
		{Key: "hashAlgorithm", Required: false, Type: "string", Description: "md5, ripemd160, sha1, sha256, sha384 or sha512", Example: "md5", Pattern: `^[a-zA-Z0-9]+$`},
		{Key: "testMode", Required: false, Type: "boolean", Description: "Use test passwords and send IsTest=1", Example: "true"},
		{Key: "resultRequestMethod", Required: false, Type: "string", Description: "Result callback delivery method", Example: "GET"},
		{Key: "paymentUrl", Required: false, Type: "url", Description: "Merchant interface URL", Example: DefaultPaymentURL},
		{Key: "customDataPrefix", Required: false, Type: "string", Description: "Prefix of custom parameters", Example: DefaultCustomDataPrefix},
		{Key: "receiptSno", Required: false, Type: "string", Description: "Receipt taxation system", Example: "usn_income"},
		{Key: "receiptPaymentMethod", Required: false, Type: "string", Description: "Receipt payment method", Example: "full_payment"},
		{Key: "receiptPaymentObject", Required: false, Type: "string", Description: "Receipt payment object", Example: "service"},
		{Key: "receiptTax", Required: false, Type: "string", Description: "Receipt tax rate", Example: "none"},
	}
}

// ValidateConfig validates the provided configuration against provider requirements
func (p *Provider) ValidateConfig(conf map[string]string) error {
	err := provider.ValidateConfigFields(providerName, conf, p.GetRequiredConfig())

	var missing *provider.MissingFieldsError
	if errors.As(err, &missing) {
		return &ConfigError{Fields: missing.Fields}
	}
	return err
}

// Initialize validates conf and builds the gateway
func (p *Provider) Initialize(conf map[string]string) error {
	if err := p.ValidateConfig(conf); err != nil {
		return err
	}

	cfg, err := ConfigFromMap(conf)
	if err != nil {
		return err
	}

	gateway, err := New(cfg)
	if err != nil {
		return err
	}

	p.gateway = gateway
	return nil
}

// ConfigFromMap converts the registry's string map into a Config. Receipt
// settings are attached when any receipt key is present.
func ConfigFromMap(conf map[string]string) (Config, error) {
	cfg := Config{
		MerchantLogin:       conf["merchantLogin"],
		HashAlgorithm:       conf["hashAlgorithm"],
		Password1:           conf["password1"],
		Password2:           conf["password2"],
		TestPassword1:       conf["testPassword1"],
		TestPassword2:       conf["testPassword2"],
		ResultRequestMethod: conf["resultRequestMethod"],
		PaymentURL:          conf["paymentUrl"],
		CustomDataPrefix:    conf["customDataPrefix"],
	}

	if raw := conf["testMode"]; raw != "" {
		testMode, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("robokassa: invalid testMode %q: %w", raw, err)
		}
		cfg.TestMode = testMode
	}

	receipt := ReceiptConfig{
		Sno:           conf["receiptSno"],
		PaymentMethod: conf["receiptPaymentMethod"],
		PaymentObject: conf["receiptPaymentObject"],
		Tax:           conf["receiptTax"],
	}
	if receipt != (ReceiptConfig{}) {
		cfg.Receipt = &receipt
	}

	return cfg, nil
}

// GeneratePaymentURL implements provider.PaymentProvider
func (p *Provider) GeneratePaymentURL(order provider.Order) (string, error) {
	if p.gateway == nil {
		return "", ErrNotInitialized
	}
	return p.gateway.GeneratePaymentURL(order)
}

// ValidateResult implements provider.PaymentProvider
func (p *Provider) ValidateResult(req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult {
	if p.gateway == nil {
		return provider.ValidationResult{Validated: false, Details: ErrNotInitialized.Error()}
	}
	return p.gateway.ValidateResult(req, opts...)
}

// ValidateSuccess implements provider.PaymentProvider
func (p *Provider) ValidateSuccess(req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult {
	if p.gateway == nil {
		return provider.ValidationResult{Validated: false, Details: ErrNotInitialized.Error()}
	}
	return p.gateway.ValidateSuccess(req, opts...)
}

// ResultAck implements provider.PaymentProvider
func (p *Provider) ResultAck(invID string) string {
	return "OK" + invID
}
