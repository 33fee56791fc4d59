package robokassa

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/robogate/infra/config"
	"github.com/mstgnz/robogate/infra/logger"
	"github.com/mstgnz/robogate/provider"
)

// GeneratePaymentURL builds the signed URL the customer is redirected to.
//
// A receipt is attached when the gateway has a receipt config and the order
// has items. The receipt is part of the signed values, so it is built first.
func (g *Gateway) GeneratePaymentURL(order provider.Order) (string, error) {
	if err := validateOrder(order); err != nil {
		return "", err
	}

	opts := SignatureOptions{
		InvoiceID:  order.InvoiceID,
		Currency:   order.Currency,
		CustomData: order.CustomData,
	}

	if g.cfg.Receipt != nil && len(order.Items) > 0 {
		receipt, err := NewReceipt(order.Items, g.cfg.Receipt)
		if err != nil {
			return "", err
		}
		if opts.Receipt, err = receipt.Encode(); err != nil {
			return "", err
		}
	}

	encoding := order.Encoding
	if encoding == "" {
		encoding = DefaultEncoding
	}

	u := g.baseURL
	query := u.Query()
	query.Set("MerchantLogin", g.cfg.MerchantLogin)
	query.Set("OutSum", order.Amount.String())
	query.Set("Description", order.Description)
	query.Set("SignatureValue", g.PaymentSignature(order.Amount, opts))
	query.Set("Encoding", encoding)

	if opts.Receipt != "" {
		query.Set("Receipt", opts.Receipt)
	}
	if order.InvoiceID != "" {
		query.Set("InvId", order.InvoiceID)
	}
	if order.Email != "" {
		query.Set("Email", order.Email)
	}
	if order.Currency != "" {
		query.Set("OutSumCurrency", order.Currency)
	}
	if g.cfg.TestMode {
		query.Set("IsTest", "1")
	}
	for key, value := range order.CustomData {
		query.Set(g.cfg.CustomDataPrefix+key, value)
	}

	u.RawQuery = query.Encode()
	paymentURL := u.String()

	if len(paymentURL) > MaxURLLength {
		logger.Warn("Payment URL too long", logger.LogContext{
			Provider: providerName,
			Fields: map[string]any{
				"invoice_id": order.InvoiceID,
				"length":     len(paymentURL),
			},
		})
		return "", ErrURLTooLong
	}

	logger.Debug("Payment URL generated", logger.LogContext{
		Provider: providerName,
		Fields: map[string]any{
			"invoice_id": order.InvoiceID,
			"amount":     order.Amount.String(),
			"receipt":    opts.Receipt != "",
		},
	})

	return paymentURL, nil
}

func validateOrder(order provider.Order) error {
	if order.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidOrder)
	}

	if err := config.App().Validator.Struct(order); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace())
			}
			return fmt.Errorf("%w: invalid fields: %s", ErrInvalidOrder, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	for key := range order.CustomData {
		if key == "" {
			return fmt.Errorf("%w: custom data key cannot be empty", ErrInvalidOrder)
		}
	}

	return nil
}
