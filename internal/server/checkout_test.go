package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	checkoutdomain "github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/config"
	obsmetrics "github.com/coursely/payrelay/internal/observability/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCheckoutService struct {
	initializeCalls int
	processCalls    int

	initializeResult checkoutdomain.InitializeResult
	verifyResult     checkoutdomain.ConfirmedPayment
	processOutcome   checkoutdomain.ProcessOutcome
	err              error

	webhookPayload   []byte
	webhookSignature string
}

func (s *stubCheckoutService) Initialize(ctx context.Context, req checkoutdomain.InitializeRequest) (checkoutdomain.InitializeResult, error) {
	s.initializeCalls++
	return s.initializeResult, s.err
}

func (s *stubCheckoutService) Verify(ctx context.Context, reference string) (checkoutdomain.ConfirmedPayment, error) {
	return s.verifyResult, s.err
}

func (s *stubCheckoutService) ProcessOrder(ctx context.Context, req checkoutdomain.ProcessRequest) (checkoutdomain.ProcessOutcome, error) {
	s.processCalls++
	return s.processOutcome, s.err
}

func (s *stubCheckoutService) IngestWebhook(ctx context.Context, payload []byte, signature string) error {
	s.webhookPayload = payload
	s.webhookSignature = signature
	return s.err
}

func newTestServer(t *testing.T, svc checkoutdomain.Service, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := NewEngine(cfg, obsmetrics.New())
	srv := NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		Log:         zap.NewNop(),
		CheckoutSvc: svc,
	})
	srv.RegisterRoutes()
	return engine
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestInitializePayment(t *testing.T) {
	svc := &stubCheckoutService{
		initializeResult: checkoutdomain.InitializeResult{
			AuthorizationURL: "https://checkout.example/abc",
			AccessCode:       "abc",
			Reference:        "ref_1",
		},
	}
	engine := newTestServer(t, svc, config.Config{})

	w := doJSON(engine, http.MethodPost, "/initialize-payment",
		`{"email":"a@b.com","fullName":"Jane Doe","amount":4900}`)

	require.Equal(t, http.StatusOK, w.Code)
	var got checkoutdomain.InitializeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "https://checkout.example/abc", got.AuthorizationURL)
	assert.Equal(t, 1, svc.initializeCalls)
}

func TestInitializePaymentMissingEmail(t *testing.T) {
	svc := &stubCheckoutService{}
	engine := newTestServer(t, svc, config.Config{})

	w := doJSON(engine, http.MethodPost, "/initialize-payment",
		`{"fullName":"Jane Doe","amount":4900}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing_field")
	assert.Contains(t, w.Body.String(), `"field":"email"`)
	assert.Equal(t, 0, svc.initializeCalls, "invalid request must not reach the service")
}

func TestInitializePaymentRejectsMalformedJSON(t *testing.T) {
	engine := newTestServer(t, &stubCheckoutService{}, config.Config{})

	w := doJSON(engine, http.MethodPost, "/initialize-payment", `{"email":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}

func TestProcessOrderMissingReference(t *testing.T) {
	svc := &stubCheckoutService{}
	engine := newTestServer(t, svc, config.Config{})

	w := doJSON(engine, http.MethodPost, "/process-order",
		`{"email":"a@b.com","fullName":"Jane Doe"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"reference"`)
	assert.Equal(t, 0, svc.processCalls)
}

func TestProcessOrderReportsOutcome(t *testing.T) {
	svc := &stubCheckoutService{
		processOutcome: checkoutdomain.ProcessOutcome{
			AlreadyProcessed: true,
			Reference:        "txn_1",
		},
	}
	engine := newTestServer(t, svc, config.Config{})

	w := doJSON(engine, http.MethodPost, "/process-order",
		`{"email":"a@b.com","fullName":"Jane Doe","reference":"txn_1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var got checkoutdomain.ProcessOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.AlreadyProcessed)
	assert.Equal(t, "txn_1", got.Reference)
}

func TestVerifyPaymentMapsVerificationFailure(t *testing.T) {
	svc := &stubCheckoutService{err: checkoutdomain.ErrInvalidRequest}
	engine := newTestServer(t, svc, config.Config{})

	w := doJSON(engine, http.MethodGet, "/verify-payment/txn_1", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestWebhookPassesRawBodyAndSignature(t *testing.T) {
	svc := &stubCheckoutService{}
	engine := newTestServer(t, svc, config.Config{})

	body := `{"event":"charge.success","data":{"reference":"txn_1"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("x-paystack-signature", "deadbeef")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, body, string(svc.webhookPayload))
	assert.Equal(t, "deadbeef", svc.webhookSignature)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	svc := &stubCheckoutService{err: checkoutdomain.ErrInvalidSignature}
	engine := newTestServer(t, svc, config.Config{})

	w := doJSON(engine, http.MethodPost, "/webhook", `{"event":"charge.success"}`)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_signature")
}

func TestHealthReportsConfigurationPresence(t *testing.T) {
	cfg := config.Config{
		Gateway: config.GatewayConfig{SecretKey: "sk_test"},
		Chat:    config.ChatConfig{BotToken: "bot", ChatID: "42"},
	}
	engine := newTestServer(t, &stubCheckoutService{}, cfg)

	w := doJSON(engine, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Status     string          `json:"status"`
		Configured map[string]bool `json:"configured"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.True(t, got.Configured["gateway"])
	assert.True(t, got.Configured["chat"])
	assert.False(t, got.Configured["email"])
}
