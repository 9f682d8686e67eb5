package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"crowdfund_ledger/internal/oracle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedAddr = "0x694aa1769357215de4fac081bf1f309adc325306"

var (
	ownerAddr = addr(0)
	wei       = big.NewInt(1)
)

func addr(i int) string {
	return fmt.Sprintf("0x%040x", i)
}

// usd returns the wei amount worth units dollars at the 2000 USD mock price
func usd(units int64) *big.Int {
	// units / 2000 ETH = units * 5e14 wei
	return new(big.Int).Mul(big.NewInt(units), big.NewInt(5e14))
}

type recordingPayee struct {
	mu       sync.Mutex
	reject   error
	received map[string]*big.Int
}

func newPayee() *recordingPayee {
	return &recordingPayee{received: make(map[string]*big.Int)}
}

func (p *recordingPayee) Pay(_ context.Context, to string, amount *big.Int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject != nil {
		return p.reject
	}
	prev, ok := p.received[to]
	if !ok {
		prev = new(big.Int)
	}
	p.received[to] = new(big.Int).Add(prev, amount)
	return nil
}

func (p *recordingPayee) total(to string) *big.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.received[to]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

type failingJournal struct {
	contributions []Contribution
	failNext      bool
}

func (j *failingJournal) RecordContribution(_ context.Context, c Contribution) error {
	if j.failNext {
		return errors.New("disk full")
	}
	j.contributions = append(j.contributions, c)
	return nil
}

func (j *failingJournal) RecordWithdrawal(ctx context.Context, _ Withdrawal, settle func(context.Context) error) error {
	if j.failNext {
		return errors.New("disk full")
	}
	return settle(ctx)
}

type fixture struct {
	ledger *Ledger
	feed   *oracle.StaticFeed
	payee  *recordingPayee
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	feed := oracle.NewMockFeed(feedAddr)
	payee := newPayee()
	return fixture{
		ledger: New(ownerAddr, oracle.NewConverter(feed), payee, opts...),
		feed:   feed,
		payee:  payee,
	}
}

func TestConstructor_SetsPriceFeedAndOwner(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, feedAddr, f.ledger.PriceFeed())
	assert.Equal(t, ownerAddr, f.ledger.Owner())
	assert.Equal(t, DefaultMinimumContribution, f.ledger.MinimumContribution())
}

func TestContribute_ZeroValueFails(t *testing.T) {
	f := newFixture(t)

	err := f.ledger.Contribute(context.Background(), addr(1), big.NewInt(0))
	assert.ErrorIs(t, err, ErrInsufficientContribution)

	err = f.ledger.Contribute(context.Background(), addr(1), nil)
	assert.ErrorIs(t, err, ErrInsufficientContribution)
}

func TestContribute_NegativeValueFails(t *testing.T) {
	f := newFixture(t)

	err := f.ledger.Contribute(context.Background(), addr(1), big.NewInt(-1))
	assert.ErrorIs(t, err, ErrInsufficientContribution)
	assert.Zero(t, f.ledger.FunderCount())
}

func TestContribute_BelowThresholdLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.ledger.Contribute(ctx, addr(1), usd(100)))
	before := f.ledger.State()

	// 49.99 USD
	amount := new(big.Int).Sub(usd(50), big.NewInt(5e12))
	err := f.ledger.Contribute(ctx, addr(2), amount)
	assert.ErrorIs(t, err, ErrInsufficientContribution)

	err = f.ledger.Contribute(ctx, addr(1), amount)
	assert.ErrorIs(t, err, ErrInsufficientContribution)

	assert.Equal(t, before, f.ledger.State())
}

func TestContribute_ScenarioA(t *testing.T) {
	f := newFixture(t)

	amount, _ := new(big.Int).SetString("24995000000000000", 10) // 49.99 USD
	err := f.ledger.Contribute(context.Background(), addr(1), amount)

	assert.ErrorIs(t, err, ErrInsufficientContribution)
	assert.Zero(t, f.ledger.HeldBalance().Sign())
	_, err = f.ledger.FunderAt(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestContribute_ExactlyThresholdPasses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Contribute(ctx, addr(1), usd(50)))
	assert.Equal(t, usd(50), f.ledger.ContributedAmount(addr(1)))

	// One wei less converts below 50 USD
	err := f.ledger.Contribute(ctx, addr(2), new(big.Int).Sub(usd(50), wei))
	assert.ErrorIs(t, err, ErrInsufficientContribution)
}

func TestContribute_ScenarioB(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ledger.Contribute(context.Background(), addr(1), usd(100)))

	assert.Equal(t, usd(100), f.ledger.ContributedAmount(addr(1)))
	funder, err := f.ledger.FunderAt(0)
	require.NoError(t, err)
	assert.Equal(t, addr(1), funder)
	assert.Equal(t, usd(100), f.ledger.HeldBalance())
}

func TestContribute_ScenarioC_RepeatFunderIsNotReappended(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.ledger.Contribute(ctx, addr(1), usd(100)))
	require.NoError(t, f.ledger.Contribute(ctx, addr(1), usd(200)))

	assert.Equal(t, 1, f.ledger.FunderCount())
	assert.Equal(t, usd(300), f.ledger.ContributedAmount(addr(1)))
	_, err := f.ledger.FunderAt(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestContribute_RegistryKeepsInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, i := range []int{3, 1, 2, 1, 3} {
		require.NoError(t, f.ledger.Contribute(ctx, addr(i), usd(60)))
	}

	s := f.ledger.State()
	assert.Equal(t, []string{addr(3), addr(1), addr(2)}, s.Funders)
	assert.Equal(t, usd(120), s.Balances[addr(3)])
	assert.Equal(t, usd(60), s.Balances[addr(2)])
	assert.Equal(t, usd(300), s.Held)
}

func TestContribute_PriceChangeMovesThreshold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 100 USD at 2000 is only 25 USD at 500
	f.feed.UpdateAnswer(big.NewInt(500_00000000))
	err := f.ledger.Contribute(ctx, addr(1), usd(100))
	assert.ErrorIs(t, err, ErrInsufficientContribution)

	f.feed.UpdateAnswer(big.NewInt(4000_00000000))
	assert.NoError(t, f.ledger.Contribute(ctx, addr(1), usd(30)))
}

func TestContribute_OracleUnavailable(t *testing.T) {
	f := newFixture(t)
	f.feed.UpdateAnswer(big.NewInt(0))

	err := f.ledger.Contribute(context.Background(), addr(1), usd(100))
	assert.ErrorIs(t, err, oracle.ErrOracleUnavailable)
	assert.Zero(t, f.ledger.FunderCount())
	assert.Zero(t, f.ledger.HeldBalance().Sign())
}

func TestContribute_JournalFailureRollsBack(t *testing.T) {
	j := &failingJournal{}
	f := newFixture(t, WithJournal(j))
	ctx := context.Background()
	require.NoError(t, f.ledger.Contribute(ctx, addr(1), usd(100)))
	before := f.ledger.State()

	j.failNext = true
	err := f.ledger.Contribute(ctx, addr(2), usd(100))
	require.Error(t, err)
	err = f.ledger.Contribute(ctx, addr(1), usd(100))
	require.Error(t, err)

	assert.Equal(t, before, f.ledger.State())
	require.Len(t, j.contributions, 1)
	c := j.contributions[0]
	assert.Equal(t, addr(1), c.Funder)
	assert.True(t, c.NewFunder)
	assert.Equal(t, 0, c.Position)
	assert.Equal(t, usd(100), c.Balance)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18)), c.Accounting)
}

func TestContribute_ConcurrentCallersAreSerialized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		for range 5 {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				assert.NoError(t, f.ledger.Contribute(ctx, addr(id), usd(100)))
			}(i)
		}
	}
	wg.Wait()

	s := f.ledger.State()
	assert.Len(t, s.Funders, 20)
	assert.Len(t, s.Balances, 20)
	for _, funder := range s.Funders {
		assert.Equal(t, usd(500), s.Balances[funder])
	}
	assert.Equal(t, usd(10000), s.Held)
}

func TestContributedAmount_UnknownIsZero(t *testing.T) {
	f := newFixture(t)

	assert.Zero(t, f.ledger.ContributedAmount(addr(42)).Sign())
}

func TestFunderAt_NegativeIndex(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ledger.Contribute(context.Background(), addr(1), usd(100)))

	_, err := f.ledger.FunderAt(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestWithMinimumContribution(t *testing.T) {
	threshold := new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))
	f := newFixture(t, WithMinimumContribution(threshold), WithMinimumContribution(big.NewInt(0)))

	assert.Equal(t, threshold, f.ledger.MinimumContribution())
	assert.NoError(t, f.ledger.Contribute(context.Background(), addr(1), usd(10)))
}

func TestRestore(t *testing.T) {
	feed := oracle.NewMockFeed(feedAddr)
	state := State{
		Owner:               ownerAddr,
		PriceFeed:           feedAddr,
		MinimumContribution: DefaultMinimumContribution,
		Funders:             []string{addr(2), addr(1)},
		Balances:            map[string]*big.Int{addr(1): usd(100), addr(2): usd(200)},
		Held:                usd(300),
	}

	l, err := Restore(state, oracle.NewConverter(feed), newPayee())
	require.NoError(t, err)
	assert.Equal(t, state, l.State())

	require.NoError(t, l.Contribute(context.Background(), addr(1), usd(100)))
	assert.Equal(t, 2, l.FunderCount())
}

func TestRestore_LeavesCallerOptionsAlone(t *testing.T) {
	conv := oracle.NewConverter(oracle.NewMockFeed(feedAddr))
	state := State{Owner: ownerAddr, PriceFeed: feedAddr, MinimumContribution: usd(1), Held: new(big.Int)}

	opts := make([]Option, 1, 4) // Spare capacity an append would write into
	opts[0] = WithMinimumContribution(usd(2))
	_, err := Restore(state, conv, newPayee(), opts...)
	require.NoError(t, err)

	assert.Nil(t, opts[:2][1], "restore wrote into the caller's slice")
}

func TestRestore_RejectsBrokenState(t *testing.T) {
	conv := oracle.NewConverter(oracle.NewMockFeed(feedAddr))
	valid := func() State {
		return State{
			Owner:     ownerAddr,
			PriceFeed: feedAddr,
			Funders:   []string{addr(1)},
			Balances:  map[string]*big.Int{addr(1): usd(100)},
			Held:      usd(100),
		}
	}

	cases := map[string]func(*State){
		"no owner":        func(s *State) { s.Owner = "" },
		"other feed":      func(s *State) { s.PriceFeed = addr(9) },
		"missing balance": func(s *State) { s.Funders = append(s.Funders, addr(2)) },
		"zero balance":    func(s *State) { s.Balances[addr(1)] = big.NewInt(0) },
		"duplicate": func(s *State) {
			s.Funders = []string{addr(1), addr(1)}
			s.Balances[addr(2)] = usd(1)
		},
		"held too low": func(s *State) { s.Held = usd(1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := valid()
			mutate(&s)
			_, err := Restore(s, conv, newPayee())
			assert.ErrorIs(t, err, ErrInvalidState)
		})
	}
}
