package payrail

import (
	"context"
	"maps"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
)

const (
	accountNumberLength = 12
	handleDigits        = 4
	maxSlugLength       = 20
)

// CreateAccount issues a virtual collection account with a zero balance
func (e *Emulator) CreateAccount(ctx context.Context, req CreateAccountRequest) (*CollectionAccount, error) {
	if e.isClosed() {
		return nil, ErrClosed
	}

	account := CollectionAccount{
		ID:          "va_" + uuid.NewString(),
		CustomerID:  req.CustomerID,
		RoutingCode: e.cfg.RoutingCode,
		Balance:     decimal.Zero,
		Purpose:     req.Purpose,
		CreatedAt:   e.now(),
		Metadata:    maps.Clone(req.Metadata),
	}

	e.mu.Lock()
	account.AccountNumber = e.cfg.BankCode + e.rnd.DigitN(uint(accountNumberLength-len(e.cfg.BankCode)))
	slug := customerSlug(req.CustomerID)
	digits := uint(handleDigits)
	for attempt := 1; ; attempt++ {
		// widen the suffix once a customer has exhausted most short ones
		if attempt%32 == 0 {
			digits++
		}
		handle := slug + e.rnd.DigitN(digits) + "@" + e.cfg.HandleSuffix
		if _, taken := e.handles[handle]; !taken {
			e.handles[handle] = struct{}{}
			account.CollectionHandle = handle
			break
		}
	}
	e.accounts[account.ID] = &accountEntry{account: account}
	e.mu.Unlock()

	e.metrics.AccountCreated()
	logger.WithLogger(ctx, e.logger).Info("Collection account created",
		zap.String("account_id", account.ID),
		zap.String("customer_id", account.CustomerID),
		zap.String("handle", account.CollectionHandle),
	)

	return account.clone(), nil
}

// GetAccount returns a snapshot of an account
func (e *Emulator) GetAccount(ctx context.Context, id string) (*CollectionAccount, error) {
	entry, ok := e.getAccountEntry(id)
	if !ok {
		return nil, ErrAccountNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.account.clone(), nil
}

func (e *Emulator) credit(accountID string, amount decimal.Decimal) (decimal.Decimal, bool) {
	entry, ok := e.getAccountEntry(accountID)
	if !ok {
		return decimal.Zero, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.account.Balance = entry.account.Balance.Add(amount)
	return entry.account.Balance, true
}

// customerSlug keeps the lowercase alphanumerics of a customer id
func customerSlug(customerID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(customerID) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
		if b.Len() == maxSlugLength {
			break
		}
	}
	if b.Len() == 0 {
		return "customer"
	}
	return b.String()
}
