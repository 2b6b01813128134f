package payrail

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/random"
)

var utrPattern = regexp.MustCompile(`^\d{12}$`)

func TestSettle_CreditsAccountOnSuccess(t *testing.T) {
	e, _ := newTestEmulator(t, nil)
	ctx := context.Background()

	acct, err := e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "cust_1"})
	require.NoError(t, err)

	tx, err := e.Settle(ctx, SettleRequest{AccountID: acct.ID, Amount: decimal.NewFromInt(500), Method: "upi"})
	require.NoError(t, err)

	assert.Equal(t, TransactionStatusSuccess, tx.Status)
	assert.Equal(t, DirectionCredit, tx.Direction)
	assert.Regexp(t, utrPattern, tx.ReferenceNumber)

	balance, err := e.Balance(acct.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(balance))
}

func TestSettle_FailureLeavesStateUntouched(t *testing.T) {
	sender := &captureSender{}
	e, _ := newTestEmulator(t, func(c *Config) { c.WebhookURL = "http://receiver" },
		WithRandom(&random.Fixed{Roll: 0.99}), WithSender(sender))
	ctx := context.Background()

	acct, err := e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "cust_1"})
	require.NoError(t, err)
	link, err := e.CreatePaymentLink(ctx, CreateLinkRequest{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	tx, err := e.Settle(ctx, SettleRequest{AccountID: acct.ID, LinkID: link.ID, Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	assert.Equal(t, TransactionStatusFailed, tx.Status)
	assert.Empty(t, tx.ReferenceNumber)
	assert.Equal(t, DefaultMethod, tx.Method)

	balance, err := e.Balance(acct.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	got, err := e.GetPaymentLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, LinkStatusActive, got.Status)
	assert.Empty(t, sender.all())

	stored, err := e.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, TransactionStatusFailed, stored.Status)
}

func TestSettle_MarksLinkPaid(t *testing.T) {
	e, _ := newTestEmulator(t, nil)
	ctx := context.Background()

	link, err := e.CreatePaymentLink(ctx, CreateLinkRequest{Amount: decimal.NewFromInt(250)})
	require.NoError(t, err)

	tx, err := e.Settle(ctx, SettleRequest{LinkID: link.ID, Amount: decimal.NewFromInt(250)})
	require.NoError(t, err)
	require.True(t, tx.Succeeded())

	got, err := e.GetPaymentLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, LinkStatusPaid, got.Status)
	assert.Equal(t, tx.ID, got.TransactionID)
	require.NotNil(t, got.PaidAt)
	assert.Equal(t, testStart, *got.PaidAt)

	_, err = e.Settle(ctx, SettleRequest{LinkID: link.ID, Amount: decimal.NewFromInt(250)})
	assert.ErrorIs(t, err, ErrLinkNotActive)
}

func TestSettle_Validation(t *testing.T) {
	e, clock := newTestEmulator(t, nil)
	ctx := context.Background()

	link, err := e.CreatePaymentLink(ctx, CreateLinkRequest{Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	expiring, err := e.CreatePaymentLink(ctx, CreateLinkRequest{Amount: decimal.NewFromInt(100), ExpiresInMinutes: 1})
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	tests := []struct {
		name    string
		req     SettleRequest
		wantErr error
		kind    error
	}{
		{"zero amount", SettleRequest{Amount: decimal.Zero}, ErrInvalidAmount, shared.ErrValidation},
		{"unknown account", SettleRequest{AccountID: "va_x", Amount: decimal.NewFromInt(1)}, ErrAccountNotFound, shared.ErrNotFound},
		{"unknown link", SettleRequest{LinkID: "plink_x", Amount: decimal.NewFromInt(1)}, ErrLinkNotFound, shared.ErrNotFound},
		{"amount mismatch", SettleRequest{LinkID: link.ID, Amount: decimal.NewFromInt(99)}, ErrAmountMismatch, shared.ErrValidation},
		{"expired link", SettleRequest{LinkID: expiring.ID, Amount: decimal.NewFromInt(100)}, ErrLinkNotActive, shared.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Settle(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	assert.Empty(t, e.transactions, "rejected settlements store nothing")
}

func TestSettle_SuccessRateConverges(t *testing.T) {
	e, _ := newTestEmulator(t, nil, WithRandom(random.NewSource(42)))
	ctx := context.Background()

	acct, err := e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "bulk"})
	require.NoError(t, err)

	const runs = 10000
	successes := 0
	for i := 0; i < runs; i++ {
		tx, err := e.Settle(ctx, SettleRequest{AccountID: acct.ID, Amount: decimal.NewFromInt(1)})
		require.NoError(t, err)
		if tx.Succeeded() {
			successes++
			assert.Regexp(t, utrPattern, tx.ReferenceNumber)
		} else {
			assert.Empty(t, tx.ReferenceNumber)
		}
	}

	rate := float64(successes) / runs
	assert.InDelta(t, 0.95, rate, 0.01)

	balance, err := e.Balance(acct.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(int64(successes)).Equal(balance))

	txs, err := e.ListTransactions(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, txs, runs)
}

func TestSettleAsync_WaitsForLatency(t *testing.T) {
	e, clock := newTestEmulator(t, func(c *Config) {
		c.MinLatency = 5 * time.Second
		c.MaxLatency = 30 * time.Second
	}, WithRandom(&random.Fixed{Offset: 10000}))

	ch, err := e.SettleAsync(context.Background(), SettleRequest{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	clock.BlockUntil(1)
	clock.Advance(14 * time.Second)
	select {
	case <-ch:
		t.Fatal("settlement resolved before its latency elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Second)
	select {
	case res := <-ch:
		require.NoError(t, res.Err)
		assert.True(t, res.Transaction.Succeeded())
		assert.Equal(t, testStart.Add(15*time.Second), res.Transaction.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("settlement did not resolve")
	}
}

func TestSettleAsync_DoesNotBlockOtherCallers(t *testing.T) {
	e, clock := newTestEmulator(t, func(c *Config) {
		c.MinLatency = 30 * time.Second
		c.MaxLatency = 30 * time.Second
	})
	ctx := context.Background()

	ch, err := e.SettleAsync(ctx, SettleRequest{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	clock.BlockUntil(1)

	// other operations proceed while the settlement is pending
	_, err = e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "c"})
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	res := <-ch
	require.NoError(t, res.Err)
}

func TestSettleAsync_ContextCancellationStoresNothing(t *testing.T) {
	e, clock := newTestEmulator(t, func(c *Config) {
		c.MinLatency = 10 * time.Second
		c.MaxLatency = 10 * time.Second
	})

	acct, err := e.CreateAccount(context.Background(), CreateAccountRequest{CustomerID: "c"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := e.SettleAsync(ctx, SettleRequest{AccountID: acct.ID, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	clock.BlockUntil(1)
	cancel()

	res := <-ch
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Nil(t, res.Transaction)

	txs, err := e.ListTransactions(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSettle_LateSettlementOnExpiredLink(t *testing.T) {
	e, clock := newTestEmulator(t, func(c *Config) {
		c.MinLatency = 2 * time.Minute
		c.MaxLatency = 2 * time.Minute
	})
	ctx := context.Background()

	acct, err := e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "c"})
	require.NoError(t, err)
	link, err := e.CreatePaymentLink(ctx, CreateLinkRequest{Amount: decimal.NewFromInt(100), ExpiresInMinutes: 1})
	require.NoError(t, err)

	ch, err := e.SettleAsync(ctx, SettleRequest{AccountID: acct.ID, LinkID: link.ID, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	clock.BlockUntil(1)
	clock.Advance(2 * time.Minute)

	res := <-ch
	require.NoError(t, res.Err)
	require.True(t, res.Transaction.Succeeded())

	got, err := e.GetPaymentLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, LinkStatusExpired, got.Status)
	assert.Empty(t, got.TransactionID)

	balance, err := e.Balance(acct.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(balance))
}

func TestSettleAsync_OneSettlementPerLink(t *testing.T) {
	e, clock := newTestEmulator(t, func(c *Config) {
		c.MinLatency = 5 * time.Second
		c.MaxLatency = 5 * time.Second
	})
	ctx := context.Background()

	acct, err := e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "c"})
	require.NoError(t, err)
	link, err := e.CreatePaymentLink(ctx, CreateLinkRequest{Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	req := SettleRequest{AccountID: acct.ID, LinkID: link.ID, Amount: decimal.NewFromInt(500)}

	first, err := e.SettleAsync(ctx, req)
	require.NoError(t, err)

	_, err = e.SettleAsync(ctx, req)
	assert.ErrorIs(t, err, ErrLinkSettling)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	clock.BlockUntil(1)
	clock.Advance(6 * time.Second)
	res := <-first
	require.NoError(t, res.Err)
	require.True(t, res.Transaction.Succeeded())

	_, err = e.SettleAsync(ctx, req)
	assert.ErrorIs(t, err, ErrLinkNotActive)

	balance, err := e.Balance(acct.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(balance), "link collected %s", balance)

	txs, err := e.ListTransactions(ctx, acct.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestSettle_FailedSettlementFreesLink(t *testing.T) {
	e, _ := newTestEmulator(t, nil, WithRandom(&random.Fixed{Roll: 0.99}))
	ctx := context.Background()

	link, err := e.CreatePaymentLink(ctx, CreateLinkRequest{Amount: decimal.NewFromInt(40)})
	require.NoError(t, err)
	req := SettleRequest{LinkID: link.ID, Amount: decimal.NewFromInt(40)}

	tx, err := e.Settle(ctx, req)
	require.NoError(t, err)
	require.False(t, tx.Succeeded())

	tx, err = e.Settle(ctx, req)
	require.NoError(t, err, "a failed attempt releases the link for a retry")
	assert.False(t, tx.Succeeded())
}

func TestClose_AbortsPendingSettlements(t *testing.T) {
	e, clock := newTestEmulator(t, func(c *Config) {
		c.MinLatency = time.Minute
		c.MaxLatency = time.Minute
	})
	ctx := context.Background()

	ch, err := e.SettleAsync(ctx, SettleRequest{Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	clock.BlockUntil(1)

	require.NoError(t, e.Close())

	res := <-ch
	assert.ErrorIs(t, res.Err, ErrClosed)
	assert.ErrorIs(t, res.Err, shared.ErrUnavailable)

	_, err = e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "c"})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = e.SettleAsync(ctx, SettleRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrClosed)
}
