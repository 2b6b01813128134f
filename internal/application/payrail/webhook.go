package payrail

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/webhook"
)

// EventPaymentSuccess is the only event the payment rail emits
const EventPaymentSuccess = "payment.success"

// PaymentWebhook is the body POSTed to the webhook URL
type PaymentWebhook struct {
	Event string             `json:"event"`
	Data  PaymentWebhookData `json:"data"`
}

// PaymentWebhookData carries the settled transaction
type PaymentWebhookData struct {
	TransactionID string         `json:"transaction_id"`
	AccountID     string         `json:"account_id"`
	Amount        float64        `json:"amount"`
	UTRNumber     string         `json:"utr_number"`
	PaymentMethod string         `json:"payment_method"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata"`
}

// NewPaymentWebhook builds the webhook body for a transaction
func NewPaymentWebhook(tx *Transaction) PaymentWebhook {
	return PaymentWebhook{
		Event: EventPaymentSuccess,
		Data: PaymentWebhookData{
			TransactionID: tx.ID,
			AccountID:     tx.AccountID,
			Amount:        tx.Amount.InexactFloat64(),
			UTRNumber:     tx.ReferenceNumber,
			PaymentMethod: tx.Method,
			Timestamp:     tx.Timestamp,
			Metadata:      tx.Metadata,
		},
	}
}

// SignTransaction computes the signature header value for a transaction
func SignTransaction(tx *Transaction) string {
	return webhook.Sign(tx.ID, tx.Amount.String(), tx.ReferenceNumber)
}

// notifySettlement hands the webhook to the sender. Delivery problems never
// affect the settlement that triggered them.
func (e *Emulator) notifySettlement(ctx context.Context, tx *Transaction) {
	url := e.WebhookURL()
	if url == "" {
		return
	}

	delivery := webhook.NewDelivery(EventPaymentSuccess, url, NewPaymentWebhook(tx), map[string]string{
		webhook.SignatureHeader: SignTransaction(tx),
	}).WithParent(ctx)
	if err := e.sender.Send(delivery); err != nil {
		logger.WithLogger(ctx, e.logger).Warn("Payment webhook not sent",
			zap.String("transaction_id", tx.ID),
			zap.Error(err),
		)
	}
}
