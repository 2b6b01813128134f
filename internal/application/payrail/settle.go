package payrail

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/logger"
	"github.com/deyjyotipriya/Shopabell-sub001/internal/infrastructure/telemetry"
)

const referenceDigits = 12

// SettleAsync validates the request and resolves it in the background after a
// simulated network latency. The returned channel receives exactly one result.
// Validation problems are returned synchronously and no settlement starts.
// A referenced link accepts one settlement at a time.
func (e *Emulator) SettleAsync(ctx context.Context, req SettleRequest) (<-chan SettlementResult, error) {
	if err := e.validateSettlement(req); err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = DefaultMethod
	}
	req.Metadata = maps.Clone(req.Metadata)

	e.mu.Lock()
	if e.isClosed() {
		e.mu.Unlock()
		e.releaseLink(req.LinkID)
		return nil, ErrClosed
	}
	e.pending.Add(1)
	e.mu.Unlock()

	result := make(chan SettlementResult, 1)
	go func() {
		defer e.pending.Done()
		tx, err := e.resolve(ctx, req)
		e.releaseLink(req.LinkID)
		result <- SettlementResult{Transaction: tx, Err: err}
		close(result)
	}()
	return result, nil
}

// Settle is the blocking form of SettleAsync. A settlement that resolves to
// failed is returned as a Transaction with Status failed and a nil error.
func (e *Emulator) Settle(ctx context.Context, req SettleRequest) (*Transaction, error) {
	ch, err := e.SettleAsync(ctx, req)
	if err != nil {
		return nil, err
	}
	res := <-ch
	return res.Transaction, res.Err
}

func (e *Emulator) validateSettlement(req SettleRequest) error {
	if e.isClosed() {
		return ErrClosed
	}
	if !validAmount(req.Amount) {
		return ErrInvalidAmount
	}
	if req.AccountID != "" {
		if _, ok := e.getAccountEntry(req.AccountID); !ok {
			return ErrAccountNotFound
		}
	}
	if req.LinkID != "" {
		entry, ok := e.getLinkEntry(req.LinkID)
		if !ok {
			return ErrLinkNotFound
		}
		entry.mu.Lock()
		defer entry.mu.Unlock()
		e.expireIfDue(&entry.link)
		if entry.link.Status != LinkStatusActive {
			return ErrLinkNotActive
		}
		if !entry.link.Amount.Equal(req.Amount) {
			return ErrAmountMismatch
		}
		if entry.settling {
			return ErrLinkSettling
		}
		entry.settling = true
	}
	return nil
}

// releaseLink clears the in-flight mark set by validateSettlement
func (e *Emulator) releaseLink(linkID string) {
	if linkID == "" {
		return
	}
	if entry, ok := e.getLinkEntry(linkID); ok {
		entry.mu.Lock()
		entry.settling = false
		entry.mu.Unlock()
	}
}

func (e *Emulator) latency() time.Duration {
	span := e.cfg.MaxLatency - e.cfg.MinLatency
	if span <= 0 {
		return e.cfg.MinLatency
	}
	return e.cfg.MinLatency + time.Duration(e.rnd.IntRange(0, int(span/time.Millisecond)))*time.Millisecond
}

func (e *Emulator) resolve(ctx context.Context, req SettleRequest) (*Transaction, error) {
	ctx, span := telemetry.StartOperation(ctx, "payrail", "settle",
		attribute.String("account_id", req.AccountID),
		attribute.String("link_id", req.LinkID),
	)
	defer span.End()
	log := logger.WithLogger(ctx, e.logger)

	delay := e.latency()
	if delay > 0 {
		timer := e.clock.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.Chan():
		case <-ctx.Done():
			log.Debug("Settlement abandoned by caller", zap.Error(ctx.Err()))
			telemetry.Fail(span, ctx.Err())
			return nil, ctx.Err()
		case <-e.closed:
			telemetry.Fail(span, ErrClosed)
			return nil, ErrClosed
		}
	}
	if err := ctx.Err(); err != nil {
		telemetry.Fail(span, err)
		return nil, err
	}

	tx := &Transaction{
		ID:        "txn_" + uuid.NewString(),
		AccountID: req.AccountID,
		LinkID:    req.LinkID,
		Amount:    req.Amount,
		Status:    TransactionStatusFailed,
		Direction: DirectionCredit,
		Method:    req.Method,
		Timestamp: e.now(),
		Metadata:  req.Metadata,
	}
	if e.rnd.Float64() < e.cfg.SuccessRate {
		tx.Status = TransactionStatusSuccess
		tx.ReferenceNumber = e.rnd.DigitN(referenceDigits)
	}

	e.store(tx)

	fields := []zap.Field{
		zap.String("transaction_id", tx.ID),
		zap.String("status", string(tx.Status)),
		zap.String("amount", tx.Amount.StringFixed(2)),
		zap.Duration("latency", delay),
	}
	if tx.Succeeded() {
		e.applySuccess(ctx, tx)
		log.Info("Settlement succeeded", append(fields, zap.String("reference", tx.ReferenceNumber))...)
		e.notifySettlement(ctx, tx)
	} else {
		log.Info("Settlement failed", fields...)
	}
	e.metrics.ObserveSettlement(string(tx.Status), delay)
	telemetry.Annotate(span, "transaction_id", tx.ID, "status", string(tx.Status))

	return tx.clone(), nil
}

func (e *Emulator) store(tx *Transaction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transactions[tx.ID] = tx
	if tx.AccountID != "" {
		e.byAccount[tx.AccountID] = append(e.byAccount[tx.AccountID], tx.ID)
	}
	if tx.ReferenceNumber != "" {
		e.byReference[tx.ReferenceNumber] = tx.ID
	}
}

// applySuccess credits the account and pays the link. A link that expired
// while the settlement was in flight stays expired; the money is still credited.
func (e *Emulator) applySuccess(ctx context.Context, tx *Transaction) {
	log := logger.WithLogger(ctx, e.logger)

	if tx.AccountID != "" {
		if balance, ok := e.credit(tx.AccountID, tx.Amount); ok {
			log.Debug("Account credited",
				zap.String("account_id", tx.AccountID),
				zap.String("balance", balance.StringFixed(2)),
			)
		}
	}

	if tx.LinkID == "" {
		return
	}
	entry, ok := e.getLinkEntry(tx.LinkID)
	if !ok {
		return
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	e.expireIfDue(&entry.link)
	switch entry.link.Status {
	case LinkStatusActive:
		paidAt := tx.Timestamp
		entry.link.Status = LinkStatusPaid
		entry.link.PaidAt = &paidAt
		entry.link.TransactionID = tx.ID
	case LinkStatusExpired:
		log.Warn("Late settlement on expired payment link",
			zap.String("link_id", tx.LinkID),
			zap.String("transaction_id", tx.ID),
		)
	default:
		log.Warn("Payment link already paid",
			zap.String("link_id", tx.LinkID),
			zap.String("transaction_id", tx.ID),
			zap.String("paid_by", entry.link.TransactionID),
		)
	}
}

// Balance returns the current balance of an account
func (e *Emulator) Balance(accountID string) (decimal.Decimal, error) {
	entry, ok := e.getAccountEntry(accountID)
	if !ok {
		return decimal.Zero, ErrAccountNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.account.Balance, nil
}
