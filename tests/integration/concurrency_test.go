package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentRedeems fires many scans at a single QR code. The
// conditional is_active flip guarantees exactly one wins; every other
// caller sees a conflict and no extra redemption record appears.
func TestConcurrentRedeems(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "race-redeem@example.com")
	app.topup(t, adminToken, 1000)
	qrID := app.generateQR(t, adminToken, 500)

	concurrency := 50
	var wg sync.WaitGroup
	var successCount atomic.Int64
	var conflictCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			resp := app.doJSON(t, http.MethodPost, "/api/v1/qr/scan", adminToken, map[string]string{
				"qr_id":       qrID,
				"customer_id": fmt.Sprintf("cust-%03d", idx),
			})
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusConflict:
				conflictCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), successCount.Load(), "exactly one scan must win")
	assert.Equal(t, int64(concurrency-1), conflictCount.Load())

	// Exactly one redemption record exists
	resp := app.doJSON(t, http.MethodGet, "/api/v1/qr/transactions", adminToken, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []struct {
			QRID string `json:"qr_id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
}

// TestConcurrentSettles fires many verify calls at a single pending order.
// The conditional PENDING check guarantees the wallet is credited once.
func TestConcurrentSettles(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "race-settle@example.com")
	orderID := app.createOrder(t, adminToken, 500)

	concurrency := 20
	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := app.doJSON(t, http.MethodPost, "/api/v1/payments/verify", adminToken, map[string]string{
				"order_id": orderID,
			})
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successCount.Load(), "exactly one verify must settle the order")
	assert.Equal(t, int64(500), app.getBalance(t, adminToken), "wallet credited exactly once")
}

// TestConcurrentIssues_InsufficientFunds fires more debits than the wallet
// can cover. The balance guard admits only as many as the funds allow and
// the balance never goes negative.
func TestConcurrentIssues_InsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "race-issue@example.com")
	app.topup(t, adminToken, 500)

	// 10 concurrent issues of 100 against a balance of 500
	concurrency := 10
	issueAmount := int64(100)

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var rejectedCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := app.doJSON(t, http.MethodPost, "/api/v1/qr/generate", adminToken, map[string]interface{}{
				"amount": issueAmount,
			})
			resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				rejectedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), successCount.Load(), "only funded issues succeed")
	assert.Equal(t, int64(5), rejectedCount.Load())
	assert.Equal(t, int64(0), app.getBalance(t, adminToken))
}

// TestMoneyConservation walks the full lifecycle and checks the books
// balance at every step: top up 1000, issue 300, redeem it.
func TestMoneyConservation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	adminToken := app.createAdmin(t, "conservation@example.com")

	app.topup(t, adminToken, 1000)
	require.Equal(t, int64(1000), app.getBalance(t, adminToken))

	qrID := app.generateQR(t, adminToken, 300)
	require.Equal(t, int64(700), app.getBalance(t, adminToken))

	resp := app.doJSON(t, http.MethodPost, "/api/v1/qr/scan", adminToken, map[string]string{
		"qr_id":       qrID,
		"customer_id": "cust-final",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Redemption moves value to the customer, not back to the wallet
	assert.Equal(t, int64(700), app.getBalance(t, adminToken))

	// balance + issued = total topped up
	resp2 := app.doJSON(t, http.MethodGet, "/api/v1/qr/stats", adminToken, nil)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var statsBody struct {
		Data struct {
			TotalAmountIssued int64 `json:"total_amount_issued"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&statsBody))
	assert.Equal(t, int64(1000), app.getBalance(t, adminToken)+statsBody.Data.TotalAmountIssued)
}
