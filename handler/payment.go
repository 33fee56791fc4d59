package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/robogate/infra/logger"
	"github.com/mstgnz/robogate/infra/middle"
	"github.com/mstgnz/robogate/infra/response"
	"github.com/mstgnz/robogate/provider"
)

// PaymentServiceInterface defines the payment operations the HTTP layer needs
type PaymentServiceInterface interface {
	GeneratePaymentURL(providerName string, order provider.Order) (string, error)
	ValidateResult(providerName string, req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult
	ValidateSuccess(providerName string, req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult
	ResultAck(providerName, invoiceID string) (string, error)
}

// PaymentURLResponse is the payload of a generated payment link
type PaymentURLResponse struct {
	URL string `json:"url"`
}

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
	}
}

// CreatePaymentURL decodes a JSON order and answers with the signed payment URL
func (h *PaymentHandler) CreatePaymentURL(w http.ResponseWriter, r *http.Request) {
	var order provider.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		response.Error(w, requestErrorStatus(err), "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(order); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	providerName := chi.URLParam(r, "provider")

	paymentURL, err := h.paymentService.GeneratePaymentURL(providerName, order)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, provider.ErrProviderNotConfigured) {
			status = http.StatusNotFound
		}
		response.Error(w, status, "Failed to generate payment URL", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment URL generated", PaymentURLResponse{URL: paymentURL})
}

// HandleResult verifies the gateway's server-to-server result notification.
// A valid callback is acknowledged with OK<InvId> in plain text, anything
// else with 400 so the gateway retries.
func (h *PaymentHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	req, err := RequestFields(r)
	if err != nil {
		response.Error(w, requestErrorStatus(err), "Invalid callback", err)
		return
	}

	result := h.paymentService.ValidateResult(providerName, req)
	log := logger.WithRequest(providerName, middle.GetRequestIDFromContext(r.Context())).
		AddField("invoice_id", result.Values["invId"])

	if !result.Validated {
		log.AddField("details", result.Details).Warn("Result callback rejected")
		response.Text(w, http.StatusBadRequest, result.Details)
		return
	}

	ack, err := h.paymentService.ResultAck(providerName, result.Values["invId"])
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to acknowledge callback", err)
		return
	}

	log.AddField("out_sum", result.Values["outSum"]).Info("Result callback accepted")
	response.Text(w, http.StatusOK, ack)
}

// HandleSuccess verifies the customer's redirect back to the shop and
// returns the validation result as JSON
func (h *PaymentHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	req, err := RequestFields(r)
	if err != nil {
		response.Error(w, requestErrorStatus(err), "Invalid callback", err)
		return
	}

	result := h.paymentService.ValidateSuccess(providerName, req)
	if !result.Validated {
		response.Error(w, http.StatusBadRequest, "Payment could not be verified", errors.New(result.Details))
		return
	}

	response.Success(w, http.StatusOK, "Payment verified", result)
}

// requestErrorStatus maps a body read failure to 413 when the size cap hit
func requestErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
