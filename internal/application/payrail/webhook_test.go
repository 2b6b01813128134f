package payrail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/webhook"
)

func TestSettle_FiresSignedWebhook(t *testing.T) {
	var (
		mu        sync.Mutex
		body      []byte
		signature string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = raw
		signature = r.Header.Get(webhook.SignatureHeader)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e, _ := newTestEmulator(t, func(c *Config) { c.WebhookURL = srv.URL },
		WithSender(webhook.NewAsyncSender(time.Second, nil, nil)))
	ctx := context.Background()

	acct, err := e.CreateAccount(ctx, CreateAccountRequest{CustomerID: "c"})
	require.NoError(t, err)

	tx, err := e.Settle(ctx, SettleRequest{
		AccountID: acct.ID,
		Amount:    decimal.NewFromInt(500),
		Metadata:  map[string]any{"order_id": "ord_7"},
	})
	require.NoError(t, err)
	require.True(t, tx.Succeeded())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return body != nil
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	var payload struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "payment.success", payload.Event)
	assert.Equal(t, tx.ID, payload.Data["transaction_id"])
	assert.Equal(t, acct.ID, payload.Data["account_id"])
	assert.Equal(t, 500.0, payload.Data["amount"])
	assert.Equal(t, tx.ReferenceNumber, payload.Data["utr_number"])
	assert.Equal(t, "upi", payload.Data["payment_method"])
	assert.Equal(t, map[string]any{"order_id": "ord_7"}, payload.Data["metadata"])
	assert.Contains(t, payload.Data, "timestamp")

	assert.True(t, webhook.Verify(signature, tx.ID, "500", tx.ReferenceNumber))
	assert.Equal(t, SignTransaction(tx), signature)
}

func TestSettle_WebhookFailureDoesNotFailSettlement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e, _ := newTestEmulator(t, func(c *Config) { c.WebhookURL = srv.URL },
		WithSender(webhook.SenderFunc(func(webhook.Delivery) error { return webhook.ErrQueueFull })))

	tx, err := e.Settle(context.Background(), SettleRequest{Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.True(t, tx.Succeeded())
}

func TestSettle_NoWebhookWithoutURL(t *testing.T) {
	sender := &captureSender{}
	e, _ := newTestEmulator(t, nil, WithSender(sender))

	_, err := e.Settle(context.Background(), SettleRequest{Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	assert.Empty(t, sender.all())

	e.SetWebhookURL("http://receiver/payments")
	_, err = e.Settle(context.Background(), SettleRequest{Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)

	deliveries := sender.all()
	require.Len(t, deliveries, 1)
	assert.Equal(t, EventPaymentSuccess, deliveries[0].Event)
	assert.Equal(t, "http://receiver/payments", deliveries[0].URL)
	assert.NotEmpty(t, deliveries[0].Headers[webhook.SignatureHeader])
}

func TestSettle_WebhookCarriesSettlementSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	sender := &captureSender{}
	e, _ := newTestEmulator(t, nil, WithSender(sender))
	e.SetWebhookURL("http://receiver/payments")

	_, err := e.Settle(context.Background(), SettleRequest{Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)

	deliveries := sender.all()
	require.Len(t, deliveries, 1)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "payrail.settle", spans[0].Name())
	assert.True(t, deliveries[0].Parent.IsValid())
	assert.Equal(t, spans[0].SpanContext().SpanID(), deliveries[0].Parent.SpanID())
	assert.Equal(t, spans[0].SpanContext().TraceID(), deliveries[0].Parent.TraceID())
}
