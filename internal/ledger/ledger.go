package ledger

import (
	"context"                          // Context for oracle reads and journal writes
	"crowdfund_ledger/internal/oracle" // Price conversion
	"fmt"                              // Error wrapping
	"maps"                             // Map cloning for snapshots
	"math/big"                         // Arbitrary precision integers
	"slices"                           // Slice cloning for snapshots
	"strings"                          // Case-insensitive feed comparison
	"sync"                             // Serializes operations

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// DefaultMinimumContribution is 50 accounting units with 18 decimals
var DefaultMinimumContribution = new(big.Int).Mul(big.NewInt(50), big.NewInt(1e18))

// Option configures a Ledger
type Option func(*Ledger)

// WithMinimumContribution overrides the threshold, in accounting units. Non-positive values are ignored.
func WithMinimumContribution(threshold *big.Int) Option {
	return func(l *Ledger) {
		if threshold != nil && threshold.Sign() > 0 {
			l.minimum = new(big.Int).Set(threshold)
		}
	}
}

// WithJournal persists every mutation through j
func WithJournal(j Journal) Option {
	return func(l *Ledger) {
		if j != nil {
			l.journal = j
		}
	}
}

// State is a copy of the ledger contents
type State struct {
	Owner               string
	PriceFeed           string
	MinimumContribution *big.Int
	Funders             []string            // Registry in insertion order
	Balances            map[string]*big.Int // Base units per funder
	Held                *big.Int            // Base units in custody
}

// Ledger records contributions and pays the accumulated balance to its owner.
// All operations are serialized; a failed operation leaves no trace.
type Ledger struct {
	mu        sync.Mutex
	owner     string
	converter *oracle.Converter
	payee     Payee
	journal   Journal
	minimum   *big.Int

	funders  []string
	balances map[string]*big.Int
	held     *big.Int
}

// New creates an empty ledger owned by owner. The price feed is taken from converter.
func New(owner string, converter *oracle.Converter, payee Payee, opts ...Option) *Ledger {
	l := &Ledger{
		owner:     owner,
		converter: converter,
		payee:     payee,
		journal:   nopJournal{},
		minimum:   new(big.Int).Set(DefaultMinimumContribution),
		balances:  make(map[string]*big.Int),
		held:      new(big.Int),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Restore rebuilds a ledger from persisted state. The state's threshold wins over options.
func Restore(s State, converter *oracle.Converter, payee Payee, opts ...Option) (*Ledger, error) {
	if s.Owner == "" {
		return nil, fmt.Errorf("%w: missing owner", ErrInvalidState)
	}
	if !strings.EqualFold(s.PriceFeed, converter.Feed().Address()) {
		return nil, fmt.Errorf("%w: price feed %s does not match %s", ErrInvalidState, s.PriceFeed, converter.Feed().Address())
	}
	if len(s.Funders) != len(s.Balances) {
		return nil, fmt.Errorf("%w: %d funders but %d balances", ErrInvalidState, len(s.Funders), len(s.Balances))
	}
	l := New(s.Owner, converter, payee, append(slices.Clone(opts), WithMinimumContribution(s.MinimumContribution))...)
	total := new(big.Int)
	for _, f := range s.Funders {
		b, ok := s.Balances[f]
		if !ok || b == nil || b.Sign() <= 0 {
			return nil, fmt.Errorf("%w: funder %s has no balance", ErrInvalidState, f)
		}
		if _, dup := l.balances[f]; dup {
			return nil, fmt.Errorf("%w: funder %s listed twice", ErrInvalidState, f)
		}
		l.funders = append(l.funders, f)
		l.balances[f] = new(big.Int).Set(b)
		total.Add(total, b)
	}
	if s.Held != nil {
		l.held = new(big.Int).Set(s.Held)
	}
	if l.held.Cmp(total) < 0 {
		return nil, fmt.Errorf("%w: held %s below recorded balances %s", ErrInvalidState, l.held, total)
	}
	return l, nil
}

// Contribute converts amount to accounting units and records it for caller if it meets the minimum
func (l *Ledger) Contribute(ctx context.Context, caller string, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount == nil {
		amount = new(big.Int) // Nothing sent
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("%w: negative amount", ErrInsufficientContribution)
	}
	converted, err := l.converter.ConvertToAccountingUnits(ctx, amount)
	if err != nil {
		return fmt.Errorf("contribute: %w", err)
	}
	if converted.Cmp(l.minimum) < 0 {
		return ErrInsufficientContribution
	}

	snap := l.snapshot()
	balance, known := l.balances[caller]
	if !known {
		l.funders = append(l.funders, caller) // First contribution registers the funder
		balance = new(big.Int)
	}
	balance = new(big.Int).Add(balance, amount)
	l.balances[caller] = balance
	l.held = new(big.Int).Add(l.held, amount)

	c := Contribution{
		Funder:     caller,
		Position:   slices.Index(l.funders, caller),
		Funders:    len(l.funders),
		NewFunder:  !known,
		Amount:     new(big.Int).Set(amount),
		Accounting: converted,
		Balance:    new(big.Int).Set(balance),
		Held:       new(big.Int).Set(l.held),
	}
	if err := l.journal.RecordContribution(ctx, c); err != nil {
		l.restore(snap)
		return fmt.Errorf("record contribution: %w", err)
	}
	logContribution(c)
	return nil
}

func (l *Ledger) requireOwner(caller string) error {
	if caller != l.owner {
		return ErrNotOwner
	}
	return nil
}

// PriceFeed returns the address of the feed fixed at construction
func (l *Ledger) PriceFeed() string {
	return l.converter.Feed().Address()
}

// Owner returns the identity allowed to withdraw
func (l *Ledger) Owner() string {
	return l.owner
}

// MinimumContribution returns the threshold in accounting units
func (l *Ledger) MinimumContribution() *big.Int {
	return new(big.Int).Set(l.minimum)
}

// FunderAt returns the funder at index in registry order
func (l *Ledger) FunderAt(index int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.funders) {
		return "", fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(l.funders))
	}
	return l.funders[index], nil
}

// ContributedAmount returns the base units recorded for identity, zero if none
func (l *Ledger) ContributedAmount(identity string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.balances[identity]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// FunderCount returns the registry length
func (l *Ledger) FunderCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.funders)
}

// HeldBalance returns the base units in custody
func (l *Ledger) HeldBalance() *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.held)
}

// State returns a copy of the ledger contents
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	balances := make(map[string]*big.Int, len(l.balances))
	for k, v := range l.balances {
		balances[k] = new(big.Int).Set(v)
	}
	return State{
		Owner:               l.owner,
		PriceFeed:           l.converter.Feed().Address(),
		MinimumContribution: new(big.Int).Set(l.minimum),
		Funders:             slices.Clone(l.funders),
		Balances:            balances,
		Held:                new(big.Int).Set(l.held),
	}
}

// snapshot holds the mutable fields. Balances are never modified in place, so sharing
// the *big.Int values is safe.
type snapshot struct {
	funders  []string
	balances map[string]*big.Int
	held     *big.Int
}

func (l *Ledger) snapshot() snapshot {
	return snapshot{
		funders:  slices.Clone(l.funders),
		balances: maps.Clone(l.balances),
		held:     l.held,
	}
}

func (l *Ledger) restore(s snapshot) {
	l.funders = s.funders
	l.balances = s.balances
	l.held = s.held
}

func logContribution(c Contribution) {
	logrus.WithFields(logrus.Fields{
		"funder":     c.Funder,
		"amount":     c.Amount.String(),
		"accounting": c.Accounting.String(),
		"new_funder": c.NewFunder,
	}).Info("Contribution recorded")
}
