package robokassa

import (
	"net/url"
	"strings"
	"testing"

	"github.com/mstgnz/robogate/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePaymentURL(t *testing.T, raw string) (*url.URL, url.Values) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u, u.Query()
}

func TestGeneratePaymentURL_Minimal(t *testing.T) {
	g := newTestGateway(t, func(c *Config) { c.TestMode = true })

	raw, err := g.GeneratePaymentURL(provider.Order{
		Amount:      decimal.NewFromInt(100),
		Description: "Test order",
	})
	require.NoError(t, err)

	u, q := parsePaymentURL(t, raw)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "auth.robokassa.ru", u.Host)
	assert.Equal(t, "/Merchant/Index.aspx", u.Path)

	assert.Equal(t, "myshop", q.Get("MerchantLogin"))
	assert.Equal(t, "100", q.Get("OutSum"))
	assert.Equal(t, "Test order", q.Get("Description"))
	assert.Equal(t, "UTF-8", q.Get("Encoding"))
	assert.Equal(t, "1", q.Get("IsTest"))
	assert.Equal(t, "f78b042cc29d09bb5baee6df1fd92c75", q.Get("SignatureValue"))

	for _, absent := range []string{"InvId", "Email", "OutSumCurrency", "Receipt"} {
		_, ok := q[absent]
		assert.False(t, ok, absent)
	}
}

func TestGeneratePaymentURL_ProductionOmitsIsTest(t *testing.T) {
	g := newTestGateway(t, nil)

	raw, err := g.GeneratePaymentURL(provider.Order{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	_, q := parsePaymentURL(t, raw)
	_, ok := q["IsTest"]
	assert.False(t, ok)
	assert.Equal(t, "1672a7d1e47962cb934bf725f4e78b42", q.Get("SignatureValue"))
}

func TestGeneratePaymentURL_SignatureRoundTrip(t *testing.T) {
	g := newTestGateway(t, func(c *Config) {
		c.HashAlgorithm = "sha256"
		c.Receipt = testReceiptConfig()
	})

	order := provider.Order{
		Amount:      decimal.RequireFromString("150.50"),
		Description: "Order #7",
		InvoiceID:   "7",
		Email:       "buyer@example.com",
		Currency:    "USD",
		Encoding:    "windows-1251",
		Items: []provider.Item{
			{Name: "Book", Quantity: decimal.NewFromInt(2), Price: decimal.RequireFromString("50.25")},
			{Name: "Delivery", Price: decimal.NewFromInt(50)},
		},
		CustomData: map[string]string{"user": "17", "cart": "a b"},
	}

	raw, err := g.GeneratePaymentURL(order)
	require.NoError(t, err)

	_, q := parsePaymentURL(t, raw)
	assert.Equal(t, "150.5", q.Get("OutSum"))
	assert.Equal(t, "7", q.Get("InvId"))
	assert.Equal(t, "buyer@example.com", q.Get("Email"))
	assert.Equal(t, "USD", q.Get("OutSumCurrency"))
	assert.Equal(t, "windows-1251", q.Get("Encoding"))
	assert.Equal(t, "17", q.Get("Shp_user"))
	assert.Equal(t, "a b", q.Get("Shp_cart"))

	receiptJSON, err := url.QueryUnescape(q.Get("Receipt"))
	require.NoError(t, err)
	assert.Contains(t, receiptJSON, `"sum":100.5`)
	assert.Contains(t, receiptJSON, `"name":"Delivery","quantity":1,"sum":50`)

	want := g.PaymentSignature(order.Amount, SignatureOptions{
		InvoiceID:  q.Get("InvId"),
		Receipt:    q.Get("Receipt"),
		Currency:   q.Get("OutSumCurrency"),
		CustomData: map[string]string{"user": q.Get("Shp_user"), "cart": q.Get("Shp_cart")},
	})
	assert.Equal(t, want, q.Get("SignatureValue"))
	assert.Len(t, q.Get("SignatureValue"), 64)
}

func TestGeneratePaymentURL_ReceiptNeedsConfigAndItems(t *testing.T) {
	items := []provider.Item{{Name: "test", Price: decimal.NewFromInt(100)}}

	noConfig := newTestGateway(t, nil)
	raw, err := noConfig.GeneratePaymentURL(provider.Order{Amount: decimal.NewFromInt(100), Items: items})
	require.NoError(t, err)
	assert.NotContains(t, raw, "Receipt=")

	withConfig := newTestGateway(t, func(c *Config) { c.Receipt = testReceiptConfig() })
	raw, err = withConfig.GeneratePaymentURL(provider.Order{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.NotContains(t, raw, "Receipt=")

	raw, err = withConfig.GeneratePaymentURL(provider.Order{Amount: decimal.NewFromInt(100), Items: items})
	require.NoError(t, err)
	// the receipt is URI-encoded once more by the query encoder
	assert.Contains(t, raw, "Receipt=%257B%2522sno%2522")
}

func TestGeneratePaymentURL_IncompleteReceiptConfig(t *testing.T) {
	g := newTestGateway(t, func(c *Config) { c.Receipt = &ReceiptConfig{Sno: "usn_income"} })

	_, err := g.GeneratePaymentURL(provider.Order{
		Amount: decimal.NewFromInt(100),
		Items:  []provider.Item{{Name: "test", Price: decimal.NewFromInt(100)}},
	})
	assert.ErrorIs(t, err, ErrReceiptConfig)
}

func TestGeneratePaymentURL_KeepsBaseQuery(t *testing.T) {
	g := newTestGateway(t, func(c *Config) { c.PaymentURL = "https://pay.example.com/merchant?culture=en" })

	raw, err := g.GeneratePaymentURL(provider.Order{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	u, q := parsePaymentURL(t, raw)
	assert.Equal(t, "pay.example.com", u.Host)
	assert.Equal(t, "/merchant", u.Path)
	assert.Equal(t, "en", q.Get("culture"))
	assert.Equal(t, "10", q.Get("OutSum"))

	// the gateway's base URL is not mutated between calls
	assert.Equal(t, "culture=en", g.baseURL.RawQuery)
}

func TestGeneratePaymentURL_TooLong(t *testing.T) {
	g := newTestGateway(t, nil)

	_, err := g.GeneratePaymentURL(provider.Order{
		Amount:      decimal.NewFromInt(100),
		Description: strings.Repeat("x", MaxURLLength),
	})
	assert.ErrorIs(t, err, ErrURLTooLong)
	assert.EqualError(t, err, "robokassa: final payment URL exceeds limit of 2048 symbols")
}

func TestGeneratePaymentURL_InvalidOrder(t *testing.T) {
	tests := []struct {
		name  string
		order provider.Order
		msg   string
	}{
		{
			name:  "zero amount",
			order: provider.Order{},
			msg:   "amount must be greater than 0",
		},
		{
			name:  "negative amount",
			order: provider.Order{Amount: decimal.NewFromInt(-5)},
			msg:   "amount must be greater than 0",
		},
		{
			name:  "bad email",
			order: provider.Order{Amount: decimal.NewFromInt(5), Email: "not-an-email"},
			msg:   "Order.email",
		},
		{
			name: "unnamed item",
			order: provider.Order{
				Amount: decimal.NewFromInt(5),
				Items:  []provider.Item{{Price: decimal.NewFromInt(5)}},
			},
			msg: "Order.items[0].name",
		},
		{
			name:  "empty custom key",
			order: provider.Order{Amount: decimal.NewFromInt(5), CustomData: map[string]string{"": "x"}},
			msg:   "custom data key cannot be empty",
		},
	}

	g := newTestGateway(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.GeneratePaymentURL(tt.order)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOrder)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
