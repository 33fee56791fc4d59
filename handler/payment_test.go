package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/robogate/infra/response"
	"github.com/mstgnz/robogate/provider"
	_ "github.com/mstgnz/robogate/provider/robokassa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock PaymentService for testing
type mockPaymentService struct {
	generateFunc func(providerName string, order provider.Order) (string, error)
	resultFunc   func(providerName string, req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult
	successFunc  func(providerName string, req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult
	lastProvider string
}

func (m *mockPaymentService) GeneratePaymentURL(providerName string, order provider.Order) (string, error) {
	m.lastProvider = providerName
	if m.generateFunc != nil {
		return m.generateFunc(providerName, order)
	}
	return "https://pay.example.com/?OutSum=" + order.Amount.String(), nil
}

func (m *mockPaymentService) ValidateResult(providerName string, req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult {
	m.lastProvider = providerName
	if m.resultFunc != nil {
		return m.resultFunc(providerName, req, opts...)
	}
	return provider.ValidationResult{Validated: true, Details: "Result hash is valid", Values: map[string]string{"invId": "42"}}
}

func (m *mockPaymentService) ValidateSuccess(providerName string, req provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult {
	m.lastProvider = providerName
	if m.successFunc != nil {
		return m.successFunc(providerName, req, opts...)
	}
	return provider.ValidationResult{Validated: true, Details: "Result hash is valid"}
}

func (m *mockPaymentService) ResultAck(providerName, invoiceID string) (string, error) {
	return "OK" + invoiceID, nil
}

func newTestRouter(service PaymentServiceInterface) http.Handler {
	h := NewPaymentHandler(service, validator.New())

	r := chi.NewRouter()
	r.Post("/v1/payments/{provider}", h.CreatePaymentURL)
	r.Get("/v1/callback/{provider}/result", h.HandleResult)
	r.Get("/v1/callback/{provider}/success", h.HandleSuccess)
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreatePaymentURL(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		generateFunc func(string, provider.Order) (string, error)
		wantStatus   int
		wantURL      string
	}{
		{
			name:       "valid order",
			body:       `{"amount":"150.50","description":"Order 7","invoiceId":"7"}`,
			wantStatus: http.StatusOK,
			wantURL:    "https://pay.example.com/?OutSum=150.5",
		},
		{
			name:       "numeric amount",
			body:       `{"amount":100}`,
			wantStatus: http.StatusOK,
			wantURL:    "https://pay.example.com/?OutSum=100",
		},
		{
			name:       "malformed json",
			body:       `{"amount":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       `{"amount":100,"email":"nope"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "provider error",
			body: `{"amount":100}`,
			generateFunc: func(string, provider.Order) (string, error) {
				return "", errors.New("robokassa: final payment URL exceeds limit of 2048 symbols")
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "provider not configured",
			body: `{"amount":100}`,
			generateFunc: func(name string, _ provider.Order) (string, error) {
				return "", fmt.Errorf("%w: provider %s is not configured", provider.ErrProviderNotConfigured, name)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockPaymentService{generateFunc: tt.generateFunc}
			req := httptest.NewRequest(http.MethodPost, "/v1/payments/robokassa", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			newTestRouter(service).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			if tt.wantURL != "" {
				assert.True(t, resp.Success)
				assert.Equal(t, map[string]any{"url": tt.wantURL}, resp.Data)
				assert.Equal(t, "robokassa", service.lastProvider)
			} else {
				assert.False(t, resp.Success)
			}
		})
	}
}

func TestHandleResult_Mock(t *testing.T) {
	var gotOpts []provider.ResultOption
	service := &mockPaymentService{
		resultFunc: func(_ string, _ provider.CallbackRequest, opts ...provider.ResultOption) provider.ValidationResult {
			gotOpts = opts
			return provider.ValidationResult{Validated: true, Values: map[string]string{"invId": "99"}}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/callback/robokassa/result?OutSum=1", nil)
	w := httptest.NewRecorder()

	newTestRouter(service).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK99", w.Body.String())
	assert.Empty(t, gotOpts, "delivery method comes from the gateway config")
}

func TestHandleResult_PostNotRouted(t *testing.T) {
	called := false
	service := &mockPaymentService{
		resultFunc: func(string, provider.CallbackRequest, ...provider.ResultOption) provider.ValidationResult {
			called = true
			return provider.ValidationResult{Validated: true}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/callback/robokassa/result", strings.NewReader("OutSum=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	newTestRouter(service).ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.False(t, called)
}

func TestHandleResult_BodyTooLarge(t *testing.T) {
	service := &mockPaymentService{
		resultFunc: func(string, provider.CallbackRequest, ...provider.ResultOption) provider.ValidationResult {
			t.Fatal("validation must not run")
			return provider.ValidationResult{}
		},
	}
	h := NewPaymentHandler(service, validator.New())

	body := "OutSum=" + strings.Repeat("1", 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/v1/callback/robokassa/result", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(w, req.Body, 1<<20)

	h.HandleResult(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleResult_Rejected(t *testing.T) {
	service := &mockPaymentService{
		resultFunc: func(string, provider.CallbackRequest, ...provider.ResultOption) provider.ValidationResult {
			return provider.ValidationResult{Validated: false, Details: "Missing required key: OutSum"}
		},
	}

	w := httptest.NewRecorder()
	newTestRouter(service).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/callback/robokassa/result", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required key: OutSum", w.Body.String())
}

func TestHandleSuccess_Rejected(t *testing.T) {
	service := &mockPaymentService{
		successFunc: func(string, provider.CallbackRequest, ...provider.ResultOption) provider.ValidationResult {
			return provider.ValidationResult{Validated: false, Details: "Result hash is NOT valid"}
		},
	}

	w := httptest.NewRecorder()
	newTestRouter(service).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/callback/robokassa/success", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Result hash is NOT valid", resp.Error)
}

func newRobokassaService(t *testing.T) *provider.PaymentService {
	t.Helper()
	service := provider.NewPaymentService()
	require.NoError(t, service.AddProvider("robokassa", map[string]string{
		"merchantLogin": "myshop",
		"password1":     "Pass1",
		"password2":     "Pass2",
		"testPassword1": "123",
		"testPassword2": "TestPass2",
	}))
	return service
}

func TestPaymentFlow_Robokassa(t *testing.T) {
	router := newTestRouter(newRobokassaService(t))

	t.Run("payment url", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/robokassa", strings.NewReader(`{"amount":"100","invoiceId":"42"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)

		u, err := url.Parse(data["url"].(string))
		require.NoError(t, err)
		// md5("myshop:100:42:Pass1")
		assert.Equal(t, "628197892c99319027574dc6938a2168", u.Query().Get("SignatureValue"))
	})

	t.Run("unknown provider", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/yookassa", strings.NewReader(`{"amount":"100"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("result via query", func(t *testing.T) {
		// md5("100:42:Pass2")
		req := httptest.NewRequest(http.MethodGet,
			"/v1/callback/robokassa/result?OutSum=100&InvId=42&SignatureValue=448208368e196165d3a9846fccd7614e", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK42", w.Body.String())
	})

	t.Run("result via form is not accepted", func(t *testing.T) {
		form := url.Values{
			"OutSum":         {"100"},
			"InvId":          {"42"},
			"SignatureValue": {"448208368e196165d3a9846fccd7614e"},
		}
		req := httptest.NewRequest(http.MethodPost, "/v1/callback/robokassa/result", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("result signature is case insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/v1/callback/robokassa/result?OutSum=100&InvId=42&SignatureValue=448208368E196165D3A9846FCCD7614E", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK42", w.Body.String())
	})

	t.Run("result with bad signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/v1/callback/robokassa/result?OutSum=100&InvId=42&SignatureValue=448208368e196165d3a9846fccd7614f", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Result hash is NOT valid", w.Body.String())
	})

	t.Run("success redirect", func(t *testing.T) {
		// md5("100:42:Pass1")
		req := httptest.NewRequest(http.MethodGet,
			"/v1/callback/robokassa/success?OutSum=100&InvId=42&SignatureValue=e1ab70fdee289176f23e1d5c1c7099e5&Shp_unused=", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		req = httptest.NewRequest(http.MethodGet,
			"/v1/callback/robokassa/success?OutSum=100&InvId=42&SignatureValue=e1ab70fdee289176f23e1d5c1c7099e5", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, true, data["validated"])
		assert.Equal(t, "Result hash is valid", data["details"])
	})
}

func TestRequestFields(t *testing.T) {
	form := url.Values{"OutSum": {"100", "200"}, "Shp_a": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/cb?InvId=42", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	cb, err := RequestFields(req)
	require.NoError(t, err)

	invID, ok := cb.QueryFields().Get("InvId")
	assert.True(t, ok)
	assert.Equal(t, "42", invID)

	_, ok = cb.QueryFields().Get("OutSum")
	assert.False(t, ok)

	outSum, ok := cb.BodyFields().Get("OutSum")
	assert.True(t, ok)
	assert.Equal(t, "100", outSum)
	assert.ElementsMatch(t, []string{"OutSum", "Shp_a"}, cb.BodyFields().Keys())
}
