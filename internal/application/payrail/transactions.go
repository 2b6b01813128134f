package payrail

import "context"

// GetTransaction returns a stored transaction
func (e *Emulator) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tx, ok := e.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return tx.clone(), nil
}

// ListTransactions returns an account's transactions, newest first
func (e *Emulator) ListTransactions(ctx context.Context, accountID string) ([]*Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.accounts[accountID]; !ok {
		return nil, ErrAccountNotFound
	}

	ids := e.byAccount[accountID]
	out := make([]*Transaction, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, e.transactions[ids[i]].clone())
	}
	return out, nil
}

// VerifyByReference looks up a successful transaction by its settlement reference
func (e *Emulator) VerifyByReference(ctx context.Context, reference string) (*Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.byReference[reference]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return e.transactions[id].clone(), nil
}
