package robokassa

import (
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SignatureOptions carries the optional parts of a payment URL signature
type SignatureOptions struct {
	InvoiceID string
	// Receipt is the URI-encoded receipt JSON, see Receipt.Encode
	Receipt  string
	Currency string
	// CustomData keys are given without the prefix
	CustomData map[string]string
}

// PaymentSignature signs an outbound payment URL. The order of values is
// fixed by the gateway:
//
//	MerchantLogin:OutSum:InvId[:Receipt][:OutSumCurrency]:Password1[:Shp_k=v...]
//
// InvId is always present, as an empty string when the order has none.
func (g *Gateway) PaymentSignature(amount decimal.Decimal, opts SignatureOptions) string {
	values := make([]string, 0, 6+len(opts.CustomData))
	values = append(values, g.cfg.MerchantLogin, amount.String(), opts.InvoiceID)

	if opts.Receipt != "" {
		values = append(values, opts.Receipt)
	}
	if opts.Currency != "" {
		values = append(values, opts.Currency)
	}

	values = append(values, g.password1())
	values = append(values, customPairs(g.cfg.CustomDataPrefix, opts.CustomData)...)

	return hashValues(g.newHash, values)
}

// ResultSignature computes the signature the gateway sends to ResultURL:
//
//	OutSum[:InvId]:Password2[:Shp_k=v...]
//
// customData keys already carry their prefix, as received.
func (g *Gateway) ResultSignature(outSum, invID string, customData map[string]string) string {
	return g.callbackSignature(outSum, invID, g.password2(), customData)
}

// SuccessSignature computes the signature carried by the customer's redirect
// to SuccessURL. It mirrors ResultSignature but uses Password1.
func (g *Gateway) SuccessSignature(outSum, invID string, customData map[string]string) string {
	return g.callbackSignature(outSum, invID, g.password1(), customData)
}

func (g *Gateway) callbackSignature(outSum, invID, password string, customData map[string]string) string {
	values := make([]string, 0, 3+len(customData))
	values = append(values, outSum)
	if invID != "" {
		values = append(values, invID)
	}
	values = append(values, password)
	values = append(values, customPairs("", customData)...)

	return hashValues(g.newHash, values)
}

// customPairs formats prefix+key=value entries sorted lexicographically by
// the formatted string. The gateway sorts the same way before hashing.
func customPairs(prefix string, data map[string]string) []string {
	if len(data) == 0 {
		return nil
	}

	pairs := make([]string, 0, len(data))
	for key, value := range data {
		pairs = append(pairs, prefix+key+"="+value)
	}
	sort.Strings(pairs)
	return pairs
}

// hashValues joins values with ':' and returns the lowercase hex digest.
// The password is part of the plaintext; this is not an HMAC.
func hashValues(newHash func() hash.Hash, values []string) string {
	h := newHash()
	_, _ = io.WriteString(h, strings.Join(values, ":"))
	return hex.EncodeToString(h.Sum(nil))
}

// signaturesEqual compares hex digests case-insensitively in constant time
func signaturesEqual(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
