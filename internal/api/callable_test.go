package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"entitlement-api/internal/apperror"
	"entitlement-api/internal/models"

	"firebase.google.com/go/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	if idToken == "user-1-token" {
		return &auth.Token{UID: "user-1"}, nil
	}
	return nil, errors.New("invalid token")
}

type stubSessions struct {
	order  models.OrderRequest
	called bool
	err    error
}

func (s *stubSessions) OpenSession(ctx context.Context, caller *models.Caller, order models.OrderRequest) (*models.PaymentSession, error) {
	s.called = true
	s.order = order
	if !caller.Authenticated() {
		return nil, apperror.Unauthenticated("User must be authenticated")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.PaymentSession{SessionID: "SESSION0001"}, nil
}

type stubPurchases struct {
	receipt models.PurchaseReceipt
	result  *models.VerifyResult
	err     error
}

func (s *stubPurchases) VerifyPurchase(ctx context.Context, caller *models.Caller, receipt models.PurchaseReceipt) (*models.VerifyResult, error) {
	s.receipt = receipt
	if !caller.Authenticated() {
		return nil, apperror.Unauthenticated("You must be logged in to verify purchases.")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubEntitlements struct{}

func (stubEntitlements) GetEntitlement(ctx context.Context, caller *models.Caller) (*models.EntitlementStatus, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthenticated("User must be authenticated")
	}
	return &models.EntitlementStatus{IsPremium: true, Active: true, PremiumExpiryDate: "2026-04-01T00:00:00Z", ProductID: "premium_monthly"}, nil
}

type testServer struct {
	router    *gin.Engine
	sessions  *stubSessions
	purchases *stubPurchases
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	ts := &testServer{
		router:    gin.New(),
		sessions:  &stubSessions{},
		purchases: &stubPurchases{result: &models.VerifyResult{Valid: true, IsPremium: true, PurchaseData: map[string]interface{}{"orderId": "GPA.1"}}},
	}
	SetupRoutes(ts.router, Dependencies{
		TokenVerifier: stubVerifier{},
		Sessions:      ts.sessions,
		Purchases:     ts.purchases,
		Entitlements:  stubEntitlements{},
	})
	return ts
}

func (ts *testServer) call(t *testing.T, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func errorOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	errBody, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "expected error envelope, got %v", body)
	return errBody
}

func TestCreatePaymentSession(t *testing.T) {
	ts := newTestServer()

	status, body := ts.call(t, "/createPaymentSession", "user-1-token",
		`{"data":{"orderId":"order-1","amount":9.99,"currency":"USD"}}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"sessionId": "SESSION0001"}, body["result"])
	assert.Equal(t, "order-1", ts.sessions.order.Reference())
	assert.Equal(t, `9.99`, string(ts.sessions.order.Amount))
	assert.Equal(t, `"USD"`, string(ts.sessions.order.Currency))
}

func TestCreatePaymentSession_Anonymous(t *testing.T) {
	ts := newTestServer()

	status, body := ts.call(t, "/createPaymentSession", "", `{"data":{"orderId":"order-1","amount":9.99,"currency":"USD"}}`)

	require.Equal(t, http.StatusUnauthorized, status)
	errBody := errorOf(t, body)
	assert.Equal(t, "UNAUTHENTICATED", errBody["status"])
	assert.Equal(t, "unauthenticated", errBody["code"])
	assert.Equal(t, "User must be authenticated", errBody["message"])
}

func TestCreatePaymentSession_AnonymousMalformedBody(t *testing.T) {
	ts := newTestServer()

	status, _ := ts.call(t, "/createPaymentSession", "", `{"data":{"orderId":`)

	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCreatePaymentSession_MalformedAmountReachesGateway(t *testing.T) {
	ts := newTestServer()
	ts.sessions.err = apperror.Internal("Failed to create payment session", errors.New("gateway returned 400: INVALID_REQUEST"))

	status, body := ts.call(t, "/createPaymentSession", "user-1-token", `{"data":{"orderId":"order-1","amount":"ten"}}`)

	require.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal", errorOf(t, body)["code"])
	require.True(t, ts.sessions.called)
	assert.Equal(t, `"ten"`, string(ts.sessions.order.Amount))
	assert.Empty(t, ts.sessions.order.Currency)
}

func TestCreatePaymentSession_NotJSON(t *testing.T) {
	ts := newTestServer()

	status, body := ts.call(t, "/createPaymentSession", "user-1-token", `orderId=order-1`)

	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid-argument", errorOf(t, body)["code"])
	assert.False(t, ts.sessions.called)
}

func TestCreatePaymentSession_GatewayFailure(t *testing.T) {
	ts := newTestServer()
	ts.sessions.err = apperror.Internal("Failed to create payment session", errors.New("gateway returned 502"))

	status, body := ts.call(t, "/createPaymentSession", "user-1-token", `{"data":{"orderId":"order-1","amount":1,"currency":"USD"}}`)

	require.Equal(t, http.StatusInternalServerError, status)
	errBody := errorOf(t, body)
	assert.Equal(t, "INTERNAL", errBody["status"])
	assert.Equal(t, "Failed to create payment session", errBody["message"])
}

func TestCreatePaymentSession_InvalidToken(t *testing.T) {
	ts := newTestServer()

	status, _ := ts.call(t, "/createPaymentSession", "forged", `{"data":{}}`)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, ts.sessions.called)
}

func TestVerifyPurchase(t *testing.T) {
	ts := newTestServer()

	status, body := ts.call(t, "/verifyPurchase", "user-1-token",
		`{"data":{"purchaseToken":"tok-1","productId":"premium_monthly","packageName":"com.example.app"}}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{
		"valid":        true,
		"isPremium":    true,
		"purchaseData": map[string]interface{}{"orderId": "GPA.1"},
	}, body["result"])
	assert.Equal(t, models.PurchaseReceipt{PurchaseToken: "tok-1", ProductID: "premium_monthly", PackageName: "com.example.app"}, ts.purchases.receipt)
}

func TestVerifyPurchase_InvalidRecord(t *testing.T) {
	ts := newTestServer()
	ts.purchases.result = &models.VerifyResult{Valid: false}

	status, body := ts.call(t, "/verifyPurchase", "user-1-token", `{"data":{"purchaseToken":"tok-1","productId":"coins"}}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]interface{}{"valid": false, "isPremium": false}, body["result"])
}

func TestVerifyPurchase_UpstreamDetails(t *testing.T) {
	ts := newTestServer()
	ts.purchases.err = apperror.Internal("Error verifying purchase: boom", errors.New("boom"))

	status, body := ts.call(t, "/verifyPurchase", "user-1-token", `{"data":{"purchaseToken":"tok-1","productId":"premium_monthly"}}`)

	require.Equal(t, http.StatusInternalServerError, status)
	errBody := errorOf(t, body)
	assert.Equal(t, "Error verifying purchase: boom", errBody["message"])
	assert.Equal(t, map[string]interface{}{"code": "unknown", "details": map[string]interface{}{}}, errBody["details"])
}

func TestVerifyPurchase_NotJSON(t *testing.T) {
	ts := newTestServer()

	status, body := ts.call(t, "/verifyPurchase", "user-1-token", `purchaseToken=tok-1`)

	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ARGUMENT", errorOf(t, body)["status"])
}

func TestGetEntitlement(t *testing.T) {
	ts := newTestServer()

	status, body := ts.call(t, "/getEntitlement", "user-1-token", `{"data":null}`)

	require.Equal(t, http.StatusOK, status)
	result := body["result"].(map[string]interface{})
	assert.Equal(t, true, result["active"])
	assert.Equal(t, "premium_monthly", result["productId"])

	status, _ = ts.call(t, "/getEntitlement", "", `{"data":null}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealth(t *testing.T) {
	ts := newTestServer()

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"entitlement-api"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer()
	ts.call(t, "/getEntitlement", "user-1-token", `{"data":null}`)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="/getEntitlement"`)
}
