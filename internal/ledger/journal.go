package ledger

import (
	"context"  // Context for journal writes
	"math/big" // Arbitrary precision integers
)

// Payee receives value sent out of the ledger
type Payee interface {
	Pay(ctx context.Context, to string, amount *big.Int) error
}

// Contribution describes an accepted contribution and the state it produced
type Contribution struct {
	Funder     string   // Contributor identity
	Position   int      // Index of Funder in the registry
	Funders    int      // Registry length after the contribution
	NewFunder  bool     // Funder was appended by this contribution
	Amount     *big.Int // Base units sent
	Accounting *big.Int // Amount converted to accounting units
	Balance    *big.Int // Funder balance after the contribution
	Held       *big.Int // Ledger custody after the contribution
}

// Withdrawal describes a withdrawal about to be settled
type Withdrawal struct {
	Owner   string   // Recipient
	Amount  *big.Int // Entire custody balance
	Funders []string // Registry contents before clearing
	Variant string   // domain.WithdrawStandard or domain.WithdrawCheap
}

// Journal persists ledger mutations. Each call runs while the ledger lock is held; an error
// makes the ledger discard the mutation.
type Journal interface {
	RecordContribution(ctx context.Context, c Contribution) error
	// RecordWithdrawal calls settle at most once and commits only if settle succeeds
	RecordWithdrawal(ctx context.Context, w Withdrawal, settle func(context.Context) error) error
}

type nopJournal struct{}

func (nopJournal) RecordContribution(context.Context, Contribution) error { return nil }

func (nopJournal) RecordWithdrawal(ctx context.Context, _ Withdrawal, settle func(context.Context) error) error {
	return settle(ctx)
}
