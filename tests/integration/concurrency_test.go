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

// TestConcurrentTransfers fires more concurrent transfers than the sender's
// balance can cover. The transfer primitive re-checks the balance under its
// lock, so some subset succeeds, the total debited never exceeds the opening
// balance, and the balance never goes negative.
func TestConcurrentTransfers(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const (
		openingBalance = int64(1_000)
		transferAmount = int64(100)
		concurrency    = 20 // requests 20 * 100 = 2000, double the balance
	)

	sender := app.seedStudent(t, "AAAA11112222", "CWT-SENDER01", openingBalance)
	app.seedStudent(t, "BBBB33334444", "CWT-RECIPIENT", 0)
	cookie := app.sessionCookie(t, sender)

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var rejectedCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			resp := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/wallet/send", map[string]interface{}{
				"toAddress":    "CWT-RECIPIENT",
				"amount":       transferAmount,
				"currencyType": "mind_gems",
				"password":     testPassword,
				"requestId":    fmt.Sprintf("req-concurrent-%d", idx),
			}, cookie)
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				successCount.Add(1)
			default:
				rejectedCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	t.Logf("concurrent transfers: %d succeeded, %d rejected (out of %d)",
		successCount.Load(), rejectedCount.Load(), concurrency)

	assert.Equal(t, int64(concurrency), successCount.Load()+rejectedCount.Load(),
		"all requests should complete")
	assert.LessOrEqual(t, successCount.Load()*transferAmount, openingBalance,
		"total debited must never exceed the opening balance")
	assert.Greater(t, successCount.Load(), int64(0), "at least one transfer should go through")

	// The read side must agree with the accepted count exactly.
	balResp := doJSON(t, http.MethodGet, app.server.URL+"/api/v1/wallet", nil, cookie)
	defer balResp.Body.Close()
	require.Equal(t, http.StatusOK, balResp.StatusCode)

	var balances struct {
		MindGems int64 `json:"mind_gems_balance"`
	}
	require.NoError(t, json.NewDecoder(balResp.Body).Decode(&balances))

	assert.Equal(t, openingBalance-successCount.Load()*transferAmount, balances.MindGems)
	assert.GreaterOrEqual(t, balances.MindGems, int64(0), "balance must never go negative")
}

// TestConcurrentDuplicateRequest sends the same request id from many
// goroutines at once. The deterministic transaction hash backstops the
// idempotency layers, so the debit happens at most once.
func TestConcurrentDuplicateRequest(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const openingBalance = int64(1_000)

	sender := app.seedStudent(t, "AAAA11112222", "CWT-SENDER01", openingBalance)
	app.seedStudent(t, "BBBB33334444", "CWT-RECIPIENT", 0)
	cookie := app.sessionCookie(t, sender)

	const concurrency = 10

	var wg sync.WaitGroup
	var okCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp := doJSON(t, http.MethodPost, app.server.URL+"/api/v1/wallet/send", map[string]interface{}{
				"toAddress":    "CWT-RECIPIENT",
				"amount":       250,
				"currencyType": "mind_gems",
				"password":     testPassword,
				"requestId":    "req-duplicate-race",
			}, cookie)
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				okCount.Add(1)
			}
		}()
	}

	wg.Wait()

	require.Greater(t, okCount.Load(), int64(0), "the first request should succeed")

	balResp := doJSON(t, http.MethodGet, app.server.URL+"/api/v1/wallet", nil, cookie)
	defer balResp.Body.Close()

	var balances struct {
		MindGems int64 `json:"mind_gems_balance"`
	}
	require.NoError(t, json.NewDecoder(balResp.Body).Decode(&balances))
	assert.Equal(t, openingBalance-250, balances.MindGems,
		"a racing duplicate request id must debit exactly once")
}
