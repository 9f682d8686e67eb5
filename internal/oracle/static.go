package oracle

import (
	"context"  // Context for feed reads
	"math/big" // Arbitrary precision integers
	"sync"     // Guards the mutable answer
	"time"     // Round timestamps
)

// Local mock aggregator defaults
const (
	DefaultDecimals      uint8 = 8
	DefaultInitialAnswer int64 = 200000000000 // 2000 with 8 decimals
)

// StaticFeed is an in-process feed whose answer is set explicitly
type StaticFeed struct {
	mu        sync.RWMutex
	address   string
	decimals  uint8
	answer    *big.Int
	updatedAt time.Time
}

// NewStaticFeed creates a feed reporting answer with the given decimals
func NewStaticFeed(address string, decimals uint8, answer *big.Int) *StaticFeed {
	f := &StaticFeed{address: address, decimals: decimals}
	f.UpdateAnswer(answer)
	return f
}

// NewMockFeed creates a StaticFeed with the local development defaults
func NewMockFeed(address string) *StaticFeed {
	return NewStaticFeed(address, DefaultDecimals, big.NewInt(DefaultInitialAnswer))
}

// UpdateAnswer replaces the reported price
func (f *StaticFeed) UpdateAnswer(answer *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if answer != nil {
		answer = new(big.Int).Set(answer)
	}
	f.answer = answer
	f.updatedAt = time.Now()
}

func (f *StaticFeed) Address() string {
	return f.address
}

func (f *StaticFeed) LatestRoundData(context.Context) (Round, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var answer *big.Int
	if f.answer != nil {
		answer = new(big.Int).Set(f.answer)
	}
	return Round{Answer: answer, Decimals: f.decimals, UpdatedAt: f.updatedAt}, nil
}
