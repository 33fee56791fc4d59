package robokassa

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/robogate/infra/config"
	"github.com/mstgnz/robogate/infra/logger"
	"github.com/mstgnz/robogate/provider"
	"golang.org/x/crypto/ripemd160"
)

const (
	providerName = "robokassa"

	// DefaultPaymentURL is the merchant interface every payment URL points to
	DefaultPaymentURL = "https://auth.robokassa.ru/Merchant/Index.aspx"
	// DefaultCustomDataPrefix marks merchant parameters; the gateway accepts Shp_, SHP_ and shp_
	DefaultCustomDataPrefix = "Shp_"
	// DefaultHashAlgorithm is used when the config leaves the algorithm blank
	DefaultHashAlgorithm = "md5"
	// DefaultEncoding is sent as the Encoding parameter when the order has none
	DefaultEncoding = "UTF-8"

	// MaxURLLength is the longest payment URL browsers and the gateway reliably accept
	MaxURLLength = 2048
)

var (
	ErrMissingConfig        = errors.New("robokassa: missing required config")
	ErrUnsupportedAlgorithm = errors.New("robokassa: unsupported hash algorithm")
	ErrUnsupportedMethod    = errors.New("robokassa: only GET method supported as result request method")
	ErrInvalidPaymentURL    = errors.New("robokassa: invalid payment url")
	ErrURLTooLong           = fmt.Errorf("robokassa: final payment URL exceeds limit of %d symbols", MaxURLLength)
	ErrReceiptConfig        = errors.New("robokassa: receipt config")
	ErrInvalidOrder         = errors.New("robokassa: invalid order")
	ErrNotInitialized       = errors.New("robokassa: provider is not initialized")
)

var hashFuncs = map[string]func() hash.Hash{
	"md5":       md5.New,
	"ripemd160": ripemd160.New,
	"sha1":      sha1.New,
	"sha256":    sha256.New,
	"sha384":    sha512.New384,
	"sha512":    sha512.New,
}

// ConfigError lists every required credential that was missing or empty
type ConfigError struct {
	Fields []string
}

func (e *ConfigError) Error() string {
	return "robokassa: missing required keys: " + strings.Join(e.Fields, ", ")
}

// Is makes errors.Is(err, ErrMissingConfig) match
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// ReceiptConfig holds the fiscal fields copied onto every receipt item
type ReceiptConfig struct {
	Sno           string `json:"sno" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	PaymentObject string `json:"paymentObject" validate:"required"`
	Tax           string `json:"tax" validate:"required"`
}

// Config holds merchant credentials and gateway options
type Config struct {
	MerchantLogin string `json:"merchantLogin" validate:"required"`
	HashAlgorithm string `json:"hashAlgorithm"`

	// Password1 signs payment URLs, Password2 verifies result callbacks
	Password1 string `json:"password1" validate:"required"`
	Password2 string `json:"password2" validate:"required"`

	TestMode      bool   `json:"testMode"`
	TestPassword1 string `json:"testPassword1" validate:"required"`
	TestPassword2 string `json:"testPassword2" validate:"required"`

	ResultRequestMethod string `json:"resultRequestMethod"`
	PaymentURL          string `json:"paymentUrl"`
	CustomDataPrefix    string `json:"customDataPrefix"`

	// Receipt is checked when a receipt is built, not at construction
	Receipt *ReceiptConfig `json:"receipt,omitempty" validate:"-"`
}

// Gateway signs payment URLs and verifies callbacks for one merchant.
// It is immutable after New and safe for concurrent use.
type Gateway struct {
	cfg     Config
	newHash func() hash.Hash
	baseURL url.URL
}

// New validates cfg, applies defaults and returns a ready gateway
func New(cfg Config) (*Gateway, error) {
	cfg.MerchantLogin = strings.TrimSpace(cfg.MerchantLogin)
	cfg.Password1 = strings.TrimSpace(cfg.Password1)
	cfg.Password2 = strings.TrimSpace(cfg.Password2)
	cfg.TestPassword1 = strings.TrimSpace(cfg.TestPassword1)
	cfg.TestPassword2 = strings.TrimSpace(cfg.TestPassword2)

	if err := config.App().Validator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, &ConfigError{Fields: fields}
		}
		return nil, fmt.Errorf("robokassa: invalid config: %w", err)
	}

	cfg.HashAlgorithm = strings.ToLower(strings.TrimSpace(cfg.HashAlgorithm))
	if cfg.HashAlgorithm == "" {
		cfg.HashAlgorithm = DefaultHashAlgorithm
	}
	newHash, ok := hashFuncs[cfg.HashAlgorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, cfg.HashAlgorithm)
	}

	// Form callbacks go through WithRequestMethod per call.
	cfg.ResultRequestMethod = strings.ToUpper(strings.TrimSpace(cfg.ResultRequestMethod))
	if cfg.ResultRequestMethod == "" {
		cfg.ResultRequestMethod = provider.MethodGET
	}
	if cfg.ResultRequestMethod != provider.MethodGET {
		return nil, ErrUnsupportedMethod
	}

	if cfg.PaymentURL == "" {
		cfg.PaymentURL = DefaultPaymentURL
	}
	base, err := url.Parse(cfg.PaymentURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentURL, cfg.PaymentURL)
	}

	if cfg.CustomDataPrefix == "" {
		cfg.CustomDataPrefix = DefaultCustomDataPrefix
	}

	if cfg.Receipt != nil {
		receipt := *cfg.Receipt
		cfg.Receipt = &receipt
	}

	logger.Info("Robokassa gateway initialized", logger.LogContext{
		Provider: providerName,
		Fields: map[string]any{
			"merchant_login": cfg.MerchantLogin,
			"hash_algorithm": cfg.HashAlgorithm,
			"test_mode":      cfg.TestMode,
			"receipt":        cfg.Receipt != nil,
		},
	})

	return &Gateway{
		cfg:     cfg,
		newHash: newHash,
		baseURL: *base,
	}, nil
}

// MerchantLogin returns the merchant identifier
func (g *Gateway) MerchantLogin() string { return g.cfg.MerchantLogin }

// HashAlgorithm returns the normalized digest name
func (g *Gateway) HashAlgorithm() string { return g.cfg.HashAlgorithm }

// TestMode reports whether test passwords are in use
func (g *Gateway) TestMode() bool { return g.cfg.TestMode }

// ResultRequestMethod returns the configured callback delivery method
func (g *Gateway) ResultRequestMethod() string { return g.cfg.ResultRequestMethod }

// PaymentURL returns the base URL payment links are built on
func (g *Gateway) PaymentURL() string { return g.cfg.PaymentURL }

// CustomDataPrefix returns the prefix put in front of custom parameter names
func (g *Gateway) CustomDataPrefix() string { return g.cfg.CustomDataPrefix }

// ReceiptConfig returns a copy of the receipt settings, or nil
func (g *Gateway) ReceiptConfig() *ReceiptConfig {
	if g.cfg.Receipt == nil {
		return nil
	}
	receipt := *g.cfg.Receipt
	return &receipt
}

// password1 signs outbound URLs and success redirects
func (g *Gateway) password1() string {
	if g.cfg.TestMode {
		return g.cfg.TestPassword1
	}
	return g.cfg.Password1
}

// password2 verifies result callbacks
func (g *Gateway) password2() string {
	if g.cfg.TestMode {
		return g.cfg.TestPassword2
	}
	return g.cfg.Password2
}
