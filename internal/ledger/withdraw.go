package ledger

import (
	"context"                          // Context for payee and journal calls
	"crowdfund_ledger/internal/domain" // Withdrawal variants
	"fmt"                              // Error wrapping
	"math/big"                         // Arbitrary precision integers

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Withdraw zeroes every funder balance, clears the registry and pays the custody balance to the owner.
// On any failure the ledger is left as it was before the call.
func (l *Ledger) Withdraw(ctx context.Context, caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.requireOwner(caller); err != nil {
		return err
	}

	snap := l.snapshot()
	for i := 0; i < len(l.funders); i++ {
		delete(l.balances, l.funders[i])
	}
	l.funders = nil
	return l.settle(ctx, snap, domain.WithdrawStandard)
}

// CheapWithdraw has the same effects as Withdraw but reads the registry and its length once
// instead of on every iteration.
func (l *Ledger) CheapWithdraw(ctx context.Context, caller string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.requireOwner(caller); err != nil {
		return err
	}

	snap := l.snapshot()
	funders := l.funders
	n := len(funders)
	balances := l.balances
	for i := 0; i < n; i++ {
		delete(balances, funders[i])
	}
	l.funders = nil
	return l.settle(ctx, snap, domain.WithdrawCheap)
}

// settle moves the custody balance to the owner. Registry and balances are already cleared.
func (l *Ledger) settle(ctx context.Context, snap snapshot, variant string) error {
	amount := l.held
	l.held = new(big.Int)

	w := Withdrawal{
		Owner:   l.owner,
		Amount:  new(big.Int).Set(amount),
		Funders: snap.funders,
		Variant: variant,
	}
	err := l.journal.RecordWithdrawal(ctx, w, func(ctx context.Context) error {
		if err := l.payee.Pay(ctx, l.owner, w.Amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		l.restore(snap)
		logrus.WithFields(logrus.Fields{
			"owner":   l.owner,
			"amount":  amount.String(),
			"variant": variant,
			"error":   err.Error(),
		}).Error("Withdrawal failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"owner":   l.owner,
		"amount":  amount.String(),
		"funders": len(snap.funders),
		"variant": variant,
	}).Info("Withdrawal settled")
	return nil
}
