package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// providerEnvKeys maps config keys to the environment variable suffix used
// for them, e.g. ROBOKASSA_MERCHANT_LOGIN -> merchantLogin
var providerEnvKeys = map[string]string{
	"MERCHANT_LOGIN":         "merchantLogin",
	"HASH_ALGORITHM":         "hashAlgorithm",
	"PASSWORD1":              "password1",
	"PASSWORD2":              "password2",
	"TEST_PASSWORD1":         "testPassword1",
	"TEST_PASSWORD2":         "testPassword2",
	"TEST_MODE":              "testMode",
	"RESULT_METHOD":          "resultRequestMethod",
	"PAYMENT_URL":            "paymentUrl",
	"CUSTOM_PREFIX":          "customDataPrefix",
	"RECEIPT_SNO":            "receiptSno",
	"RECEIPT_PAYMENT_METHOD": "receiptPaymentMethod",
	"RECEIPT_PAYMENT_OBJECT": "receiptPaymentObject",
	"RECEIPT_TAX":            "receiptTax",
}

// KnownProviders lists the provider names looked up in the environment
var KnownProviders = []string{"robokassa"}

// ProviderConfig manages payment provider configurations
type ProviderConfig struct {
	configs map[string]map[string]string
	mu      sync.RWMutex
}

// NewProviderConfig creates an empty provider configuration
func NewProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		configs: make(map[string]map[string]string),
	}
}

// LoadFromEnv reads <PROVIDER>_<KEY> variables for every known provider.
// A provider is only registered when at least one of its variables is set.
func (c *ProviderConfig) LoadFromEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range KnownProviders {
		prefix := strings.ToUpper(name) + "_"
		conf := make(map[string]string)
		for suffix, key := range providerEnvKeys {
			if value, ok := os.LookupEnv(prefix + suffix); ok && value != "" {
				conf[key] = value
			}
		}
		if len(conf) > 0 {
			c.configs[name] = conf
		}
	}
}

// SetConfig sets configuration for a provider
func (c *ProviderConfig) SetConfig(providerName string, config map[string]string) error {
	if providerName == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if len(config) == 0 {
		return fmt.Errorf("config cannot be empty")
	}

	configCopy := make(map[string]string, len(config))
	for k, v := range config {
		configCopy[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[strings.ToLower(providerName)] = configCopy
	return nil
}

// GetConfig returns a copy of the configuration for a specific provider
func (c *ProviderConfig) GetConfig(providerName string) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, exists := c.configs[strings.ToLower(providerName)]
	if !exists {
		return nil, fmt.Errorf("no configuration found for provider: %s", providerName)
	}

	// Return a copy to prevent external modification
	configCopy := make(map[string]string, len(config))
	for k, v := range config {
		configCopy[k] = v
	}
	return configCopy, nil
}

// GetAvailableProviders returns the sorted names of providers that have configurations
func (c *ProviderConfig) GetAvailableProviders() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	providers := make([]string, 0, len(c.configs))
	for provider := range c.configs {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}
