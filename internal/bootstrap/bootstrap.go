package bootstrap

import (
	"context"                          // Context for loading the ledger
	"crowdfund_ledger/internal/config" // Custom import path (Config)
	"crowdfund_ledger/internal/domain" // Address validation
	"crowdfund_ledger/internal/ledger" // Contribution ledger
	"crowdfund_ledger/internal/oracle" // Price conversion
	"crowdfund_ledger/internal/store"  // Ledger persistence
	"fmt"                              // Error wrapping
	"math/big"                         // Arbitrary precision integers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/gorm"                 // GORM ORM library
)

// MockFeedAddress identifies the in-process feed used on development chains
const MockFeedAddress = "0x5fbdb2315678afecb367f032d93f642f64180aa3"

// PriceFeed picks the feed for the configured network. Development chains get a mock
// aggregator; other networks read the answer published to Redis for the chain's feed.
func PriceFeed(cfg *config.Config, rdb *redis.Client) (oracle.PriceFeed, error) {
	address := cfg.PriceFeed
	if address == "" {
		if oracle.IsDevChain(cfg.Network) {
			address = MockFeedAddress
		} else if a, ok := oracle.FeedAddress(cfg.ChainID); ok {
			address = a
		} else {
			return nil, fmt.Errorf("no price feed known for network %s (chain %d)", cfg.Network, cfg.ChainID)
		}
	}
	address, err := domain.NormalizeAddress(address)
	if err != nil {
		return nil, fmt.Errorf("price feed %q: %w", cfg.PriceFeed, err)
	}

	if oracle.IsDevChain(cfg.Network) {
		logrus.WithField("price_feed", address).Info("Local network detected, using mock price feed")
		return oracle.NewMockFeed(address), nil
	}
	if rdb == nil {
		return nil, fmt.Errorf("network %s needs redis for price feed %s", cfg.Network, address)
	}
	return oracle.NewRedisFeed(rdb, address, cfg.PriceFeedMaxAge), nil
}

// MinimumContribution converts the configured whole-unit threshold to 18-decimal accounting units
func MinimumContribution(cfg *config.Config) *big.Int {
	if cfg.MinimumUSD == nil {
		return new(big.Int).Set(ledger.DefaultMinimumContribution)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(oracle.AccountingDecimals), nil)
	return new(big.Int).Mul(cfg.MinimumUSD, scale)
}

// Ledger restores the persisted ledger, constructing it with the deployer as owner on first run
func Ledger(ctx context.Context, cfg *config.Config, db *gorm.DB, feed oracle.PriceFeed) (*ledger.Ledger, *oracle.Converter, error) {
	deployer, err := domain.NormalizeAddress(cfg.Deployer)
	if err != nil {
		return nil, nil, fmt.Errorf("deployer %q: %w", cfg.Deployer, err)
	}
	st := store.New(db)
	state, err := st.LoadOrCreate(ctx, deployer, feed.Address(), MinimumContribution(cfg))
	if err != nil {
		return nil, nil, err
	}
	if state.Owner != deployer {
		logrus.WithFields(logrus.Fields{
			"owner":    state.Owner,
			"deployer": deployer,
		}).Warn("Ledger already constructed by another deployer; keeping original owner")
	}
	conv := oracle.NewConverter(feed)
	l, err := ledger.Restore(state, conv, store.NewAccountPayee(db), ledger.WithJournal(st))
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(logrus.Fields{
		"owner":      l.Owner(),
		"price_feed": l.PriceFeed(),
		"funders":    l.FunderCount(),
		"held":       l.HeldBalance().String(),
	}).Info("Ledger ready")
	return l, conv, nil
}
