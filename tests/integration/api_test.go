package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpHandler "qr-wallet-service/internal/adapter/http/handler"
	"qr-wallet-service/internal/adapter/qrimage"
	"qr-wallet-service/internal/service"
	"qr-wallet-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack on in-memory repos with a fake
// payment gateway. This exercises the real HTTP layer, middleware, handlers,
// and services end-to-end.

const (
	superadminEmail    = "root@example.com"
	superadminPassword = "RootPass123!"
)

type testApp struct {
	server *httptest.Server
}

// fakeGateway issues sequential order ids without talking to anything.
type fakeGateway struct {
	counter atomic.Int64
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (string, error) {
	return fmt.Sprintf("order_%06d", g.counter.Add(1)), nil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Core services with real implementations
	encSvc, err := service.NewAESEncryptionService("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	// In-memory repos
	userRepo := newInMemoryUserRepo()
	walletRepo := newInMemoryWalletRepo()
	qrRepo := newInMemoryQRRepo()
	custTxRepo := newInMemoryCustomerTxRepo(qrRepo)
	orderRepo := newInMemoryPaymentOrderRepo()
	transactor := newInMemoryTransactor()

	// Business services
	log := logger.New("debug", false)
	walletSvc := service.NewWalletService(walletRepo, log)
	authSvc := service.NewAuthService(userRepo, walletRepo, hashSvc, tokenSvc, transactor, log)
	qrSvc := service.NewQRService(qrRepo, custTxRepo, walletSvc, encSvc, qrimage.NewEncoder(0), transactor, log)
	paymentSvc := service.NewPaymentOrderService(orderRepo, walletSvc, &fakeGateway{}, transactor, "INR", log)

	require.NoError(t, authSvc.EnsureSuperAdmin(context.Background(), "Root", superadminEmail, superadminPassword))

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:    authSvc,
		WalletSvc:  walletSvc,
		QRSvc:      qrSvc,
		PaymentSvc: paymentSvc,
		CustTxRepo: custTxRepo,
		TokenSvc:   tokenSvc,
		Currency:   "INR",
		Logger:     log,
	})

	server := httptest.NewServer(router)

	return &testApp{server: server}
}

func (a *testApp) close() {
	a.server.Close()
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_SuperadminCreatesAdmin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	rootToken := loginAndGetToken(t, app, superadminEmail, superadminPassword)

	// Superadmin creates an admin
	resp := app.doJSON(t, http.MethodPost, "/api/v1/auth/admins", rootToken, map[string]string{
		"name":         "Shop One",
		"email":        "shop1@example.com",
		"password":     "ShopPass123!",
		"company_name": "Shop One Ltd",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "admin", data["role"])

	// Duplicate email is rejected
	resp2 := app.doJSON(t, http.MethodPost, "/api/v1/auth/admins", rootToken, map[string]string{
		"name":     "Shop Clone",
		"email":    "shop1@example.com",
		"password": "ShopPass123!",
	})
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)

	// New admin gets a zero-balance wallet and can log in
	adminToken := loginAndGetToken(t, app, "shop1@example.com", "ShopPass123!")
	balance := app.getBalance(t, adminToken)
	assert.Equal(t, int64(0), balance)
}

func TestIntegration_AdminCannotCreateAdmin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "shop2@example.com")

	resp := app.doJSON(t, http.MethodPost, "/api/v1/auth/admins", adminToken, map[string]string{
		"name":     "Sneaky",
		"email":    "sneaky@example.com",
		"password": "ShopPass123!",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIntegration_LoginWrongCredentials(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	resp := app.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong-password",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_TopupLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "shop3@example.com")

	// Create a top-up order
	resp := app.doJSON(t, http.MethodPost, "/api/v1/payments/orders", adminToken, map[string]interface{}{
		"amount": int64(1000),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var orderBody struct {
		Data struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orderBody))
	resp.Body.Close()
	assert.Equal(t, "PENDING", orderBody.Data.Status)

	// Wallet untouched while pending
	assert.Equal(t, int64(0), app.getBalance(t, adminToken))

	// Verify the order: wallet credited
	resp2 := app.doJSON(t, http.MethodPost, "/api/v1/payments/verify", adminToken, map[string]string{
		"order_id": orderBody.Data.OrderID,
	})
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var settleBody struct {
		Data struct {
			WalletBalance int64 `json:"wallet_balance"`
			Order         struct {
				Status string `json:"status"`
			} `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&settleBody))
	resp2.Body.Close()
	assert.Equal(t, "SUCCESS", settleBody.Data.Order.Status)
	assert.Equal(t, int64(1000), settleBody.Data.WalletBalance)

	// Second verify of the same order is rejected, no double credit
	resp3 := app.doJSON(t, http.MethodPost, "/api/v1/payments/verify", adminToken, map[string]string{
		"order_id": orderBody.Data.OrderID,
	})
	resp3.Body.Close()
	assert.Equal(t, http.StatusConflict, resp3.StatusCode)
	assert.Equal(t, int64(1000), app.getBalance(t, adminToken))
}

func TestIntegration_FailedOrderNeverCredits(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "shop4@example.com")
	orderID := app.createOrder(t, adminToken, 500)

	// Mark failed
	resp := app.doJSON(t, http.MethodPost, "/api/v1/payments/failure", adminToken, map[string]string{
		"order_id": orderID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Verify after failure is rejected and wallet stays at zero
	resp2 := app.doJSON(t, http.MethodPost, "/api/v1/payments/verify", adminToken, map[string]string{
		"order_id": orderID,
	})
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
	assert.Equal(t, int64(0), app.getBalance(t, adminToken))
}

func TestIntegration_QRLifecycle(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "shop5@example.com")
	app.topup(t, adminToken, 1000)

	// Issue a 300 QR: balance drops to 700 immediately
	resp := app.doJSON(t, http.MethodPost, "/api/v1/qr/generate", adminToken, map[string]interface{}{
		"amount": int64(300),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var qrBody struct {
		Data struct {
			ID       string `json:"id"`
			Amount   int64  `json:"amount"`
			IsActive bool   `json:"is_active"`
			Image    string `json:"image"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&qrBody))
	resp.Body.Close()
	assert.True(t, qrBody.Data.IsActive)
	assert.Contains(t, qrBody.Data.Image, "data:image/png;base64,")
	assert.Equal(t, int64(700), app.getBalance(t, adminToken))

	// Customer redeems once
	resp2 := app.doJSON(t, http.MethodPost, "/api/v1/qr/scan", adminToken, map[string]string{
		"qr_id":       qrBody.Data.ID,
		"customer_id": "cust-001",
	})
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var scanBody struct {
		Data struct {
			Amount     int64  `json:"amount"`
			CustomerID string `json:"customer_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&scanBody))
	resp2.Body.Close()
	assert.Equal(t, int64(300), scanBody.Data.Amount)

	// Second scan is rejected
	resp3 := app.doJSON(t, http.MethodPost, "/api/v1/qr/scan", adminToken, map[string]string{
		"qr_id":       qrBody.Data.ID,
		"customer_id": "cust-002",
	})
	resp3.Body.Close()
	assert.Equal(t, http.StatusConflict, resp3.StatusCode)

	// Redemption shows up in the transaction list
	resp4 := app.doJSON(t, http.MethodGet, "/api/v1/qr/transactions", adminToken, nil)
	require.Equal(t, http.StatusOK, resp4.StatusCode)
	var txBody struct {
		Data []struct {
			CustomerID string `json:"customer_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp4.Body).Decode(&txBody))
	resp4.Body.Close()
	require.Len(t, txBody.Data, 1)
	assert.Equal(t, "cust-001", txBody.Data[0].CustomerID)

	// Stats reflect one issued, now-inactive code
	resp5 := app.doJSON(t, http.MethodGet, "/api/v1/qr/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, resp5.StatusCode)
	var statsBody struct {
		Data struct {
			TotalAmountIssued int64 `json:"total_amount_issued"`
			Total             int64 `json:"total"`
			Active            int64 `json:"active"`
			Inactive          int64 `json:"inactive"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp5.Body).Decode(&statsBody))
	resp5.Body.Close()
	assert.Equal(t, int64(300), statsBody.Data.TotalAmountIssued)
	assert.Equal(t, int64(1), statsBody.Data.Total)
	assert.Equal(t, int64(0), statsBody.Data.Active)
	assert.Equal(t, int64(1), statsBody.Data.Inactive)
}

func TestIntegration_QRInsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "shop6@example.com")
	app.topup(t, adminToken, 100)

	resp := app.doJSON(t, http.MethodPost, "/api/v1/qr/generate", adminToken, map[string]interface{}{
		"amount": int64(500),
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	// Nothing was debited
	assert.Equal(t, int64(100), app.getBalance(t, adminToken))
}

func TestIntegration_DeactivateOwnership(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	ownerToken := app.createAdmin(t, "owner@example.com")
	otherToken := app.createAdmin(t, "other@example.com")
	app.topup(t, ownerToken, 1000)

	qrID := app.generateQR(t, ownerToken, 200)

	// A different admin cannot deactivate someone else's QR
	resp := app.doJSON(t, http.MethodPut, "/api/v1/qr/"+qrID+"/deactivate", otherToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The owner can
	resp2 := app.doJSON(t, http.MethodPut, "/api/v1/qr/"+qrID+"/deactivate", ownerToken, nil)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	// Deactivating an already-inactive QR is a no-op success
	resp3 := app.doJSON(t, http.MethodPut, "/api/v1/qr/"+qrID+"/deactivate", ownerToken, nil)
	resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)

	// A superadmin can deactivate anyone's QR
	rootToken := loginAndGetToken(t, app, superadminEmail, superadminPassword)
	qrID2 := app.generateQR(t, ownerToken, 200)
	resp4 := app.doJSON(t, http.MethodPut, "/api/v1/qr/"+qrID2+"/deactivate", rootToken, nil)
	resp4.Body.Close()
	assert.Equal(t, http.StatusOK, resp4.StatusCode)
}

func TestIntegration_DeactivatedQRCannotBeScanned(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "shop7@example.com")
	app.topup(t, adminToken, 1000)
	qrID := app.generateQR(t, adminToken, 200)

	resp := app.doJSON(t, http.MethodPut, "/api/v1/qr/"+qrID+"/deactivate", adminToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2 := app.doJSON(t, http.MethodPost, "/api/v1/qr/scan", adminToken, map[string]string{
		"qr_id":       qrID,
		"customer_id": "cust-001",
	})
	resp2.Body.Close()
	assert.Equal(t, http.StatusConflict, resp2.StatusCode)
}

func TestIntegration_PaymentStats(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "shop8@example.com")

	// One settled, one failed, one pending
	app.topup(t, adminToken, 1000)
	failedID := app.createOrder(t, adminToken, 500)
	resp := app.doJSON(t, http.MethodPost, "/api/v1/payments/failure", adminToken, map[string]string{"order_id": failedID})
	resp.Body.Close()
	app.createOrder(t, adminToken, 250)

	resp2 := app.doJSON(t, http.MethodGet, "/api/v1/payments/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var statsBody struct {
		Data struct {
			Total            int64 `json:"total"`
			Successful       int64 `json:"successful"`
			Failed           int64 `json:"failed"`
			Pending          int64 `json:"pending"`
			TotalAmountAdded int64 `json:"total_amount_added"`
			WalletBalance    int64 `json:"wallet_balance"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&statsBody))
	resp2.Body.Close()

	assert.Equal(t, int64(3), statsBody.Data.Total)
	assert.Equal(t, int64(1), statsBody.Data.Successful)
	assert.Equal(t, int64(1), statsBody.Data.Failed)
	assert.Equal(t, int64(1), statsBody.Data.Pending)
	assert.Equal(t, int64(1000), statsBody.Data.TotalAmountAdded)
	assert.Equal(t, int64(1000), statsBody.Data.WalletBalance)
}

func TestIntegration_JWT_Unauthorized(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/wallets/balance", nil)
	// No Authorization header
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// --- Helpers ---

var adminSeq atomic.Int64

func (a *testApp) doJSON(t *testing.T, method, path, token string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func loginAndGetToken(t *testing.T, app *testApp, email, password string) string {
	t.Helper()
	resp := app.doJSON(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	require.NotEmpty(t, loginResp.Data.Token)
	return loginResp.Data.Token
}

// createAdmin provisions an admin via the superadmin API and returns the
// new admin's token.
func (a *testApp) createAdmin(t *testing.T, email string) string {
	t.Helper()
	rootToken := loginAndGetToken(t, a, superadminEmail, superadminPassword)
	resp := a.doJSON(t, http.MethodPost, "/api/v1/auth/admins", rootToken, map[string]string{
		"name":     fmt.Sprintf("Admin %d", adminSeq.Add(1)),
		"email":    email,
		"password": "ShopPass123!",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return loginAndGetToken(t, a, email, "ShopPass123!")
}

func (a *testApp) getBalance(t *testing.T, token string) int64 {
	t.Helper()
	resp := a.doJSON(t, http.MethodGet, "/api/v1/wallets/balance", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data struct {
			Balance int64 `json:"balance"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data.Balance
}

func (a *testApp) createOrder(t *testing.T, token string, amount int64) string {
	t.Helper()
	resp := a.doJSON(t, http.MethodPost, "/api/v1/payments/orders", token, map[string]interface{}{
		"amount": amount,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		Data struct {
			OrderID string `json:"order_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data.OrderID
}

// topup creates and settles a top-up order in one step.
func (a *testApp) topup(t *testing.T, token string, amount int64) {
	t.Helper()
	orderID := a.createOrder(t, token, amount)
	resp := a.doJSON(t, http.MethodPost, "/api/v1/payments/verify", token, map[string]string{
		"order_id": orderID,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (a *testApp) generateQR(t *testing.T, token string, amount int64) string {
	t.Helper()
	resp := a.doJSON(t, http.MethodPost, "/api/v1/qr/generate", token, map[string]interface{}{
		"amount": amount,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data.ID
}
