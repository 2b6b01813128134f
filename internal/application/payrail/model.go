package payrail

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// LinkStatus is the lifecycle state of a payment link
type LinkStatus string

const (
	LinkStatusActive  LinkStatus = "active"
	LinkStatusExpired LinkStatus = "expired"
	LinkStatusPaid    LinkStatus = "paid"
)

// TransactionStatus is the terminal outcome of a settlement
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Direction of money movement relative to the collection account
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// DefaultMethod is used when a settlement names no payment method
const DefaultMethod = "upi"

// CollectionAccount is a virtual account that receives settlements
type CollectionAccount struct {
	ID               string
	CustomerID       string
	AccountNumber    string
	RoutingCode      string
	CollectionHandle string
	Balance          decimal.Decimal
	Purpose          string
	CreatedAt        time.Time
	Metadata         map[string]any
}

// PaymentLink is a UPI deep link with an embedded QR image
type PaymentLink struct {
	ID            string
	Amount        decimal.Decimal
	Currency      string
	Purpose       string
	CustomerID    string
	PayURI        string
	QRImageURI    string
	ExpiresAt     time.Time
	Status        LinkStatus
	CreatedAt     time.Time
	PaidAt        *time.Time
	TransactionID string
}

// IsExpiredAt reports whether the link's validity window has passed at now
func (l *PaymentLink) IsExpiredAt(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// Transaction is a resolved settlement. Only terminal outcomes are ever stored.
type Transaction struct {
	ID              string
	AccountID       string
	LinkID          string
	Amount          decimal.Decimal
	Status          TransactionStatus
	Direction       Direction
	Method          string
	ReferenceNumber string
	Timestamp       time.Time
	Metadata        map[string]any
}

// Succeeded reports whether the settlement succeeded
func (t *Transaction) Succeeded() bool {
	return t.Status == TransactionStatusSuccess
}

func (a CollectionAccount) clone() *CollectionAccount {
	a.Metadata = maps.Clone(a.Metadata)
	return &a
}

func (l PaymentLink) clone() *PaymentLink {
	if l.PaidAt != nil {
		paidAt := *l.PaidAt
		l.PaidAt = &paidAt
	}
	return &l
}

func (t Transaction) clone() *Transaction {
	t.Metadata = maps.Clone(t.Metadata)
	return &t
}

// CreateAccountRequest holds the input for CreateAccount
type CreateAccountRequest struct {
	CustomerID string
	Purpose    string
	Metadata   map[string]any
}

// CreateLinkRequest holds the input for CreatePaymentLink
type CreateLinkRequest struct {
	Amount           decimal.Decimal
	Currency         string // default INR
	Purpose          string
	CustomerID       string
	ExpiresInMinutes int // 0 uses the configured TTL
}

// SettleRequest holds the input for Settle. AccountID and LinkID are both optional.
type SettleRequest struct {
	AccountID string
	LinkID    string
	Amount    decimal.Decimal
	Method    string
	Metadata  map[string]any
}

// SettlementResult is delivered on the channel returned by SettleAsync.
// A failed settlement is a Transaction with Status failed, not an Err.
type SettlementResult struct {
	Transaction *Transaction
	Err         error
}
