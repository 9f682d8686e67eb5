package oracle

import (
	"context"  // Context for feed reads
	"errors"   // Error values
	"math/big" // Arbitrary precision integers
	"time"     // Round timestamps
)

// ErrOracleUnavailable is returned when the feed cannot supply a usable price
var ErrOracleUnavailable = errors.New("oracle unavailable")

// Round is one price answer reported by a feed
type Round struct {
	Answer    *big.Int  // Price in accounting units per whole base unit, scaled by 10^Decimals
	Decimals  uint8     // Decimal places of Answer
	UpdatedAt time.Time // Zero when the feed does not report it
}

// PriceFeed is a read-only source of the base/accounting exchange rate
type PriceFeed interface {
	Address() string                                    // Identity of the feed
	LatestRoundData(ctx context.Context) (Round, error) // Most recent answer
}
