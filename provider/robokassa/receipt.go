package robokassa

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/robogate/infra/config"
	"github.com/mstgnz/robogate/provider"
	"github.com/shopspring/decimal"
)

// ReceiptItem is one fiscal receipt line
type ReceiptItem struct {
	Name          string
	Quantity      decimal.Decimal
	Sum           decimal.Decimal
	PaymentMethod string
	PaymentObject string
	Tax           string
}

// MarshalJSON writes quantity and sum as JSON numbers, in the field order
// the gateway documents
func (i ReceiptItem) MarshalJSON() ([]byte, error) {
	return marshalJSON(struct {
		Name          string      `json:"name"`
		Quantity      json.Number `json:"quantity"`
		Sum           json.Number `json:"sum"`
		PaymentMethod string      `json:"payment_method"`
		PaymentObject string      `json:"payment_object"`
		Tax           string      `json:"tax"`
	}{
		Name:          i.Name,
		Quantity:      json.Number(i.Quantity.String()),
		Sum:           json.Number(i.Sum.String()),
		PaymentMethod: i.PaymentMethod,
		PaymentObject: i.PaymentObject,
		Tax:           i.Tax,
	})
}

// Receipt is the fiscal receipt attached to a payment URL
type Receipt struct {
	Sno   string        `json:"sno"`
	Items []ReceiptItem `json:"items"`
}

// NewReceipt builds a receipt from order items. Quantity defaults to 1 and
// each line sum is price × quantity; payment method, payment object and tax
// come from cfg, not from the items.
func NewReceipt(items []provider.Item, cfg *ReceiptConfig) (*Receipt, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no receipt config provided", ErrReceiptConfig)
	}

	if err := config.App().Validator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, fmt.Errorf("%w: missing required field in receipt config: %s", ErrReceiptConfig, strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("%w: %v", ErrReceiptConfig, err)
	}

	receipt := &Receipt{
		Sno:   cfg.Sno,
		Items: make([]ReceiptItem, 0, len(items)),
	}

	for _, item := range items {
		quantity := item.Quantity
		if quantity.IsZero() {
			quantity = decimal.NewFromInt(1)
		}

		receipt.Items = append(receipt.Items, ReceiptItem{
			Name:          item.Name,
			Quantity:      quantity,
			Sum:           item.Price.Mul(quantity),
			PaymentMethod: cfg.PaymentMethod,
			PaymentObject: cfg.PaymentObject,
			Tax:           cfg.Tax,
		})
	}

	return receipt, nil
}

// Encode returns the receipt as URI-encoded JSON, the form that is both
// signed and sent as the Receipt parameter
func (r *Receipt) Encode() (string, error) {
	encoded, err := EncodeJSONURI(r)
	if err != nil {
		return "", fmt.Errorf("robokassa: failed to encode receipt: %w", err)
	}
	return encoded, nil
}
