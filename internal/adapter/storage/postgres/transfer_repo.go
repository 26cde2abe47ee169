package postgres

import (
	"context"
	"fmt"

	"catalystwells-core/internal/core/domain"
	"catalystwells-core/internal/core/ports"
)

// TransferRepo invokes the execute_wallet_transfer stored procedure, the
// only code path allowed to touch wallet balances. The procedure locks both
// wallet rows in a deterministic order, re-checks balance and daily limit
// under the lock, moves the amount, bumps the sender's daily-spent counter
// and inserts the ledger row, all inside a single transaction.
type TransferRepo struct {
	pool Pool
}

// NewTransferRepo creates a new TransferRepo.
func NewTransferRepo(pool Pool) *TransferRepo {
	return &TransferRepo{pool: pool}
}

// Execute runs the transfer primitive and returns the ledger id and both
// post-transaction balances. Any error means no money moved.
func (r *TransferRepo) Execute(ctx context.Context, p ports.TransferParams) (*domain.TransferResult, error) {
	query := `SELECT transaction_id, transaction_hash, sender_balance, recipient_balance
		FROM execute_wallet_transfer($1, $2, $3, $4, $5, $6)`

	res := &domain.TransferResult{}
	err := r.pool.QueryRow(ctx, query,
		p.FromWalletID, p.ToWalletID, string(p.Currency), p.Amount, p.Memo, p.Hash,
	).Scan(&res.TransactionID, &res.Hash, &res.SenderBalance, &res.RecipientBalance)
	if err != nil {
		return nil, fmt.Errorf("execute wallet transfer: %w", err)
	}
	return res, nil
}
