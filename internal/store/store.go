package store

import (
	"context"                          // Context for queries
	"crowdfund_ledger/internal/domain" // Importing domain models
	"crowdfund_ledger/internal/ledger" // Ledger state and journal types
	"errors"                           // Error inspection
	"fmt"                              // Error wrapping
	"math/big"                         // Arbitrary precision integers

	"github.com/shopspring/decimal" // Decimal columns
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking
)

// Store persists the ledger in SQL tables and journals every mutation
type Store struct {
	db *gorm.DB
}

// New creates a Store on an already migrated database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ErrStaleLedger is returned when the database no longer matches the ledger writing to it,
// for example after another process withdrew from the same tables
var ErrStaleLedger = errors.New("ledger out of sync with database")

type txKey struct{}

// conn returns the transaction carried by ctx, or the base connection
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

func toDecimal(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, 0)
}

// LoadOrCreate returns the persisted ledger, creating an empty one owned by owner if none exists.
// An existing ledger keeps its original owner.
func (s *Store) LoadOrCreate(ctx context.Context, owner, priceFeed string, minimum *big.Int) (ledger.State, error) {
	db := s.db.WithContext(ctx)
	var row domain.LedgerState
	err := db.First(&row, domain.LedgerStateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = domain.LedgerState{
			ID:                  domain.LedgerStateID,
			Owner:               owner,
			PriceFeed:           priceFeed,
			HeldBalance:         decimal.Zero,
			MinimumContribution: toDecimal(minimum),
		}
		if err := db.Create(&row).Error; err != nil {
			return ledger.State{}, fmt.Errorf("create ledger: %w", err)
		}
	} else if err != nil {
		return ledger.State{}, fmt.Errorf("load ledger: %w", err)
	}

	var funders []domain.Funder // Registry rows in order
	if err := db.Order("position asc").Find(&funders).Error; err != nil {
		return ledger.State{}, fmt.Errorf("load funders: %w", err)
	}
	state := ledger.State{
		Owner:               row.Owner,
		PriceFeed:           row.PriceFeed,
		MinimumContribution: row.MinimumContribution.BigInt(),
		Funders:             make([]string, 0, len(funders)),
		Balances:            make(map[string]*big.Int, len(funders)),
		Held:                row.HeldBalance.BigInt(),
	}
	for i, f := range funders {
		if f.Position != i {
			return ledger.State{}, fmt.Errorf("%w: registry gap at position %d", ledger.ErrInvalidState, i)
		}
		state.Funders = append(state.Funders, f.Address)
		state.Balances[f.Address] = f.Amount.BigInt()
	}
	return state, nil
}

// checkInSync locks the ledger row and verifies that custody and registry length are what
// the caller saw before its change
func checkInSync(tx *gorm.DB, held *big.Int, funders int) error {
	var row domain.LedgerState
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, domain.LedgerStateID).Error; err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	if !row.HeldBalance.Equal(toDecimal(held)) {
		return fmt.Errorf("%w: held balance is %s, expected %s", ErrStaleLedger, row.HeldBalance, held)
	}
	var count int64
	if err := tx.Model(&domain.Funder{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count funders: %w", err)
	}
	if count != int64(funders) {
		return fmt.Errorf("%w: %d funders stored, expected %d", ErrStaleLedger, count, funders)
	}
	return nil
}

// RecordContribution stores the funder balance, custody total and audit record atomically
func (s *Store) RecordContribution(ctx context.Context, c ledger.Contribution) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before := c.Funders // Registry length before this contribution
		if c.NewFunder {
			before--
		}
		if err := checkInSync(tx, new(big.Int).Sub(c.Held, c.Amount), before); err != nil {
			return err
		}
		if c.NewFunder {
			f := domain.Funder{Position: c.Position, Address: c.Funder, Amount: toDecimal(c.Balance)}
			if err := tx.Create(&f).Error; err != nil {
				return fmt.Errorf("insert funder: %w", err)
			}
		} else {
			res := tx.Model(&domain.Funder{}).Where("address = ?", c.Funder).Update("amount", toDecimal(c.Balance))
			if res.Error != nil {
				return fmt.Errorf("update funder: %w", res.Error)
			}
			if res.RowsAffected != 1 {
				return fmt.Errorf("update funder %s: %d rows affected", c.Funder, res.RowsAffected)
			}
		}
		if err := tx.Model(&domain.LedgerState{ID: domain.LedgerStateID}).Update("held_balance", toDecimal(c.Held)).Error; err != nil {
			return fmt.Errorf("update held balance: %w", err)
		}
		record := domain.Contribution{
			Address:    c.Funder,
			Amount:     toDecimal(c.Amount),
			Accounting: toDecimal(c.Accounting),
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert contribution: %w", err)
		}
		return nil
	})
}

// RecordWithdrawal clears the registry, zeroes custody and runs settle in the same transaction.
// settle sees the transaction through its context, so a Payee backed by this database commits
// or rolls back together with the journal.
func (s *Store) RecordWithdrawal(ctx context.Context, w ledger.Withdrawal, settle func(context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkInSync(tx, w.Amount, len(w.Funders)); err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Funder{}).Error; err != nil {
			return fmt.Errorf("clear funders: %w", err)
		}
		if err := tx.Model(&domain.LedgerState{ID: domain.LedgerStateID}).Update("held_balance", decimal.Zero).Error; err != nil {
			return fmt.Errorf("reset held balance: %w", err)
		}
		record := domain.Withdrawal{
			Owner:   w.Owner,
			Amount:  toDecimal(w.Amount),
			Funders: len(w.Funders),
			Variant: w.Variant,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("insert withdrawal: %w", err)
		}
		return settle(context.WithValue(ctx, txKey{}, tx)) // Rolls back everything above on error
	})
}

// Withdrawals returns the most recent withdrawal records, newest first
func (s *Store) Withdrawals(ctx context.Context, limit int) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

// AccountPayee credits withdrawn funds to a registered account. Payments to an
// unregistered address are rejected.
type AccountPayee struct {
	db *gorm.DB
}

// NewAccountPayee creates a payee on db
func NewAccountPayee(db *gorm.DB) *AccountPayee {
	return &AccountPayee{db: db}
}

// ErrNoAccount is returned when the recipient has no registered account
var ErrNoAccount = errors.New("recipient has no account")

func (p *AccountPayee) Pay(ctx context.Context, to string, amount *big.Int) error {
	db := conn(ctx, p.db)
	var acct domain.Account
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("address = ?", to).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNoAccount, to)
	} else if err != nil {
		return err
	}
	received := acct.Received.Add(toDecimal(amount))
	return db.Model(&acct).Update("received", received).Error
}
