package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/payrail"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/random"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"
)

var paymentTestStart = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

// newPaymentRouter serves the payment handler on a zero-latency rail that
// always settles successfully
func newPaymentRouter(t *testing.T) (*gin.Engine, *clockwork.FakeClock) {
	t.Helper()

	cfg := payrail.DefaultConfig()
	cfg.MinLatency = 0
	cfg.MaxLatency = 0
	cfg.CredentialCost = bcrypt.MinCost
	clock := clockwork.NewFakeClockAt(paymentTestStart)
	rail, err := payrail.New(cfg, payrail.WithClock(clock), payrail.WithRandom(&random.Fixed{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rail.Close() })

	h := NewPaymentHandler(rail)
	router := gin.New()
	g := router.Group("/payments")
	g.POST("/accounts", h.CreateAccount)
	g.GET("/accounts/:id", h.GetAccount)
	g.GET("/accounts/:id/transactions", h.ListTransactions)
	g.POST("/links", h.CreateLink)
	g.GET("/links/:id", h.GetLink)
	g.POST("/settlements", h.Settle)
	g.GET("/transactions/:id", h.GetTransaction)
	g.GET("/transactions/verify/:reference", h.VerifyByReference)
	return router, clock
}

func createAccount(t *testing.T, router *gin.Engine) CollectionAccountResponse {
	t.Helper()

	w := performRequest(t, router, http.MethodPost, "/payments/accounts", CreateAccountRequest{
		CustomerID: "cust_1001",
		Purpose:    "seller payouts",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var account CollectionAccountResponse
	decodeData(t, w, &account)
	return account
}

func TestPaymentHandler_AccountLifecycle(t *testing.T) {
	router, _ := newPaymentRouter(t)

	account := createAccount(t, router)
	assert.Len(t, account.AccountNumber, 12)
	assert.Equal(t, "SBEM0000001", account.RoutingCode)
	assert.Contains(t, account.CollectionHandle, "@shopabell")
	assert.True(t, account.Balance.IsZero())

	w := performRequest(t, router, http.MethodPost, "/payments/settlements", SettleRequest{
		AccountID: account.ID,
		Amount:    250.75,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tx TransactionResponse
	decodeData(t, w, &tx)
	assert.Equal(t, "success", tx.Status)
	assert.Equal(t, "upi", tx.Method)
	assert.Len(t, tx.ReferenceNumber, 12)

	w = performRequest(t, router, http.MethodGet, "/payments/accounts/"+account.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &account)
	assert.Equal(t, "250.75", account.Balance.String())

	w = performRequest(t, router, http.MethodGet, "/payments/accounts/"+account.ID+"/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var txs []TransactionResponse
	decodeData(t, w, &txs)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.ID, txs[0].ID)

	w = performRequest(t, router, http.MethodGet, "/payments/transactions/"+tx.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(t, router, http.MethodGet, "/payments/transactions/verify/"+tx.ReferenceNumber, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var verified TransactionResponse
	decodeData(t, w, &verified)
	assert.Equal(t, tx.ID, verified.ID)
}

func TestPaymentHandler_LinkLifecycle(t *testing.T) {
	router, clock := newPaymentRouter(t)

	w := performRequest(t, router, http.MethodPost, "/payments/links", CreateLinkRequest{
		Amount:  499,
		Purpose: "Order 1001",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var link PaymentLinkResponse
	decodeData(t, w, &link)
	assert.Equal(t, "INR", link.Currency)
	assert.Equal(t, "active", link.Status)
	assert.Contains(t, link.PayURI, "upi://pay?")
	assert.Contains(t, link.QRImageURI, "data:image/png;base64,")

	w = performRequest(t, router, http.MethodPost, "/payments/settlements", SettleRequest{
		LinkID: link.ID,
		Amount: 499,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(t, router, http.MethodGet, "/payments/links/"+link.ID, nil)
	decodeData(t, w, &link)
	assert.Equal(t, "paid", link.Status)
	assert.NotEmpty(t, link.TransactionID)

	// A second link left alone reads as expired once its TTL passes
	w = performRequest(t, router, http.MethodPost, "/payments/links", CreateLinkRequest{Amount: 10, ExpiresInMinutes: 5})
	decodeData(t, w, &link)
	clock.Advance(6 * time.Minute)

	w = performRequest(t, router, http.MethodGet, "/payments/links/"+link.ID, nil)
	decodeData(t, w, &link)
	assert.Equal(t, "expired", link.Status)

	w = performRequest(t, router, http.MethodPost, "/payments/settlements", SettleRequest{LinkID: link.ID, Amount: 10})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, errorCode(t, w))
}

func TestPaymentHandler_Errors(t *testing.T) {
	router, _ := newPaymentRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"missing customer", http.MethodPost, "/payments/accounts", map[string]any{}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"zero link amount", http.MethodPost, "/payments/links", map[string]any{"amount": 0}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"bad currency", http.MethodPost, "/payments/links", map[string]any{"amount": 10, "currency": "RUPEE"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"negative settlement", http.MethodPost, "/payments/settlements", map[string]any{"amount": -5}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unknown method", http.MethodPost, "/payments/settlements", map[string]any{"amount": 5, "payment_method": "cash"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"unknown account", http.MethodPost, "/payments/settlements", map[string]any{"amount": 5, "account_id": "va_missing"}, http.StatusNotFound, dto.ErrCodeNotFound},
		{"get unknown account", http.MethodGet, "/payments/accounts/va_missing", nil, http.StatusNotFound, dto.ErrCodeNotFound},
		{"get unknown link", http.MethodGet, "/payments/links/plink_missing", nil, http.StatusNotFound, dto.ErrCodeNotFound},
		{"get unknown transaction", http.MethodGet, "/payments/transactions/txn_missing", nil, http.StatusNotFound, dto.ErrCodeNotFound},
		{"verify unknown reference", http.MethodGet, "/payments/transactions/verify/000000000000", nil, http.StatusNotFound, dto.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestPaymentHandler_AsyncSettlement(t *testing.T) {
	router, _ := newPaymentRouter(t)
	account := createAccount(t, router)

	w := performRequest(t, router, http.MethodPost, "/payments/settlements", SettleRequest{
		AccountID: account.ID,
		Amount:    100,
		Async:     true,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var accepted SettlementAcceptedResponse
	decodeData(t, w, &accepted)
	assert.Equal(t, "pending", accepted.Status)

	assert.Eventually(t, func() bool {
		w := performRequest(t, router, http.MethodGet, "/payments/accounts/"+account.ID+"/transactions", nil)
		var txs []TransactionResponse
		decodeData(t, w, &txs)
		return len(txs) == 1
	}, time.Second, 10*time.Millisecond)
}
