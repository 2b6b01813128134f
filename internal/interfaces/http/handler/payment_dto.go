package handler

import (
	"github.com/shopspring/decimal"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/application/payrail"
)

// CollectionAccountResponse represents a virtual collection account
// @Description Virtual collection account details
type CollectionAccountResponse struct {
	ID               string          `json:"id" example:"va_3f0c6b1e-9a59-4a5a-8d0e-3c4f1b2a7e10"`
	CustomerID       string          `json:"customer_id" example:"cust_1001"`
	AccountNumber    string          `json:"account_number" example:"502100481234"`
	RoutingCode      string          `json:"routing_code" example:"SBEM0000001"`
	CollectionHandle string          `json:"collection_handle" example:"cust10014821@shopabell"`
	Balance          decimal.Decimal `json:"balance" swaggertype:"string" example:"0"`
	Purpose          string          `json:"purpose,omitempty" example:"seller payouts"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	CreatedAt        string          `json:"created_at" example:"2026-03-10T10:00:00Z"`
}

// PaymentLinkResponse represents a payment link
// @Description UPI payment link with QR image
type PaymentLinkResponse struct {
	ID            string          `json:"id" example:"plink_3f0c6b1e"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"499.00"`
	Currency      string          `json:"currency" example:"INR"`
	Purpose       string          `json:"purpose,omitempty" example:"Order #1001"`
	CustomerID    string          `json:"customer_id,omitempty" example:"cust_1001"`
	PayURI        string          `json:"pay_uri" example:"upi://pay?pa=shopabell@emulator&pn=Shopabell&am=499.00&cu=INR"`
	QRImageURI    string          `json:"qr_image_uri" example:"data:image/png;base64,iVBORw0KGgo="`
	Status        string          `json:"status" example:"active" enums:"active,paid,expired"`
	ExpiresAt     string          `json:"expires_at" example:"2026-03-10T11:00:00Z"`
	PaidAt        string          `json:"paid_at,omitempty" example:"2026-03-10T10:05:00Z"`
	TransactionID string          `json:"transaction_id,omitempty" example:"txn_9b1d"`
	CreatedAt     string          `json:"created_at" example:"2026-03-10T10:00:00Z"`
}

// TransactionResponse represents a resolved settlement
// @Description Settlement outcome
type TransactionResponse struct {
	ID              string          `json:"id" example:"txn_9b1d"`
	AccountID       string          `json:"account_id,omitempty" example:"va_3f0c6b1e"`
	LinkID          string          `json:"link_id,omitempty" example:"plink_3f0c6b1e"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"499.00"`
	Status          string          `json:"status" example:"success" enums:"success,failed"`
	Direction       string          `json:"direction" example:"credit"`
	Method          string          `json:"payment_method" example:"upi"`
	ReferenceNumber string          `json:"utr_number,omitempty" example:"418203957116"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	Timestamp       string          `json:"timestamp" example:"2026-03-10T10:00:12Z"`
}

func toAccountResponse(a *payrail.CollectionAccount) CollectionAccountResponse {
	return CollectionAccountResponse{
		ID:               a.ID,
		CustomerID:       a.CustomerID,
		AccountNumber:    a.AccountNumber,
		RoutingCode:      a.RoutingCode,
		CollectionHandle: a.CollectionHandle,
		Balance:          a.Balance,
		Purpose:          a.Purpose,
		Metadata:         a.Metadata,
		CreatedAt:        formatTime(a.CreatedAt),
	}
}

func toLinkResponse(l *payrail.PaymentLink) PaymentLinkResponse {
	return PaymentLinkResponse{
		ID:            l.ID,
		Amount:        l.Amount,
		Currency:      l.Currency,
		Purpose:       l.Purpose,
		CustomerID:    l.CustomerID,
		PayURI:        l.PayURI,
		QRImageURI:    l.QRImageURI,
		Status:        string(l.Status),
		ExpiresAt:     formatTime(l.ExpiresAt),
		PaidAt:        formatTimePtr(l.PaidAt),
		TransactionID: l.TransactionID,
		CreatedAt:     formatTime(l.CreatedAt),
	}
}

func toTransactionResponse(t *payrail.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		LinkID:          t.LinkID,
		Amount:          t.Amount,
		Status:          string(t.Status),
		Direction:       string(t.Direction),
		Method:          t.Method,
		ReferenceNumber: t.ReferenceNumber,
		Metadata:        t.Metadata,
		Timestamp:       formatTime(t.Timestamp),
	}
}

func toTransactionResponses(txs []*payrail.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}
