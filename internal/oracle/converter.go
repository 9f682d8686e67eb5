package oracle

import (
	"context"  // Context for feed reads
	"fmt"      // Error wrapping
	"math/big" // Arbitrary precision integers
)

// AccountingDecimals is the scale of every accounting-unit amount, and also of base units (wei)
const AccountingDecimals = 18

var accountingScale = pow10(AccountingDecimals)

// Converter turns base-currency amounts into accounting units using a PriceFeed
type Converter struct {
	feed PriceFeed
}

// NewConverter wraps a feed
func NewConverter(feed PriceFeed) *Converter {
	return &Converter{feed: feed}
}

// Feed returns the underlying price feed
func (c *Converter) Feed() PriceFeed {
	return c.feed
}

// Price returns the latest answer rescaled to AccountingDecimals
func (c *Converter) Price(ctx context.Context) (*big.Int, error) {
	round, err := c.feed.LatestRoundData(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	if round.Answer == nil || round.Answer.Sign() <= 0 {
		return nil, fmt.Errorf("%w: non-positive answer from %s", ErrOracleUnavailable, c.feed.Address())
	}
	price := new(big.Int).Set(round.Answer)
	switch {
	case round.Decimals < AccountingDecimals:
		price.Mul(price, pow10(AccountingDecimals-int(round.Decimals)))
	case round.Decimals > AccountingDecimals:
		price.Quo(price, pow10(int(round.Decimals)-AccountingDecimals))
	}
	if price.Sign() <= 0 {
		// Too many decimals for the answer to survive rescaling
		return nil, fmt.Errorf("%w: answer rounds to zero", ErrOracleUnavailable)
	}
	return price, nil
}

// ConvertToAccountingUnits returns amountBase * price / 10^18
func (c *Converter) ConvertToAccountingUnits(ctx context.Context, amountBase *big.Int) (*big.Int, error) {
	price, err := c.Price(ctx)
	if err != nil {
		return nil, err
	}
	if amountBase == nil {
		return new(big.Int), nil
	}
	out := new(big.Int).Mul(amountBase, price)
	return out.Quo(out, accountingScale), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
