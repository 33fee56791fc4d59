package robokassa

import (
	"errors"
	"fmt"

	"github.com/mstgnz/robogate/infra/logger"
	"github.com/mstgnz/robogate/provider"
)

const (
	detailsValid   = "Result hash is valid"
	detailsInvalid = "Result hash is NOT valid"
)

// callbackKeys must all be present and non-empty in a callback, checked in this order
var callbackKeys = []string{"OutSum", "InvId", "SignatureValue"}

// ValidateResult verifies the gateway's ResultURL notification. It never
// fails with an error: missing fields and signature mismatches come back as
// a result with Validated set to false.
func (g *Gateway) ValidateResult(req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult {
	return g.validateCallback("result", req, g.ResultSignature, opts...)
}

// ValidateSuccess verifies the customer's redirect to SuccessURL, which is
// signed with Password1 instead of Password2
func (g *Gateway) ValidateSuccess(req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult {
	return g.validateCallback("success", req, g.SuccessSignature, opts...)
}

// ResultAck returns the body the gateway expects in reply to a valid result callback
func (g *Gateway) ResultAck(invID string) string {
	return "OK" + invID
}

type signFunc func(outSum, invID string, customData map[string]string) string

func (g *Gateway) validateCallback(kind string, req provider.CallbackRequest, sign signFunc, opts ...provider.ResultOption) (result provider.ValidationResult) {
	// a misbehaving Fields implementation must not take the handler down
	defer func() {
		if r := recover(); r != nil {
			result = provider.ValidationResult{Validated: false, Details: fmt.Sprint(r)}
		}
	}()

	values, customData, err := g.extractCallback(req, opts...)
	if err != nil {
		logger.Warn("Callback rejected", logger.LogContext{
			Provider: providerName,
			Fields: map[string]any{
				"callback": kind,
				"reason":   err.Error(),
			},
		})
		return provider.ValidationResult{Validated: false, Details: err.Error()}
	}

	expected := sign(values["outSum"], values["invId"], customData)
	result = provider.ValidationResult{
		Values:     values,
		CustomData: customData,
	}

	if signaturesEqual(values["signatureValue"], expected) {
		result.Validated = true
		result.Details = detailsValid
		return result
	}

	logger.Warn("Callback signature mismatch", logger.LogContext{
		Provider: providerName,
		Fields: map[string]any{
			"callback":   kind,
			"invoice_id": values["invId"],
		},
	})
	result.Details = detailsInvalid
	return result
}

// extractCallback reads the required keys into a camelCased map and copies
// every prefixed field, with its original name, into customData
func (g *Gateway) extractCallback(req provider.CallbackRequest, opts ...provider.ResultOption) (map[string]string, map[string]string, error) {
	if req == nil {
		return nil, nil, errors.New("no callback request")
	}

	method := provider.ApplyResultOptions(g.cfg.ResultRequestMethod, opts...).RequestMethod

	var fields provider.Fields
	switch method {
	case provider.MethodGET:
		fields = req.QueryFields()
	case provider.MethodPOST:
		fields = req.BodyFields()
	default:
		return nil, nil, fmt.Errorf("unsupported request method: %s", method)
	}
	if fields == nil {
		fields = provider.Values{}
	}

	values := make(map[string]string, len(callbackKeys))
	for _, key := range callbackKeys {
		value, ok := fields.Get(key)
		if !ok || value == "" {
			return nil, nil, errors.New("Missing required key: " + key)
		}
		values[ToCamelCase(key)] = value
	}

	customData := make(map[string]string)
	for _, key := range fields.Keys() {
		if HasPrefixFold(key, g.cfg.CustomDataPrefix) {
			customData[key], _ = fields.Get(key)
		}
	}

	return values, customData, nil
}
