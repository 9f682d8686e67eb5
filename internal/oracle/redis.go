package oracle

import (
	"context"  // Context for Redis reads
	"errors"   // Error values
	"fmt"      // Error wrapping
	"math/big" // Arbitrary precision integers
	"strconv"  // Parsing hash fields
	"time"     // Staleness checks

	"github.com/redis/go-redis/v9" // Redis client
)

// RedisFeed reads answers published by an external updater into a Redis hash.
//
// Key layout: pricefeed:<address> with fields answer, decimals and updated_at (unix seconds).
type RedisFeed struct {
	rdb     *redis.Client
	address string
	maxAge  time.Duration // Zero disables the staleness check
	now     func() time.Time
}

// NewRedisFeed creates a feed for address. maxAge of zero accepts answers of any age.
func NewRedisFeed(rdb *redis.Client, address string, maxAge time.Duration) *RedisFeed {
	return &RedisFeed{rdb: rdb, address: address, maxAge: maxAge, now: time.Now}
}

// FeedKey returns the hash key an updater writes for address
func FeedKey(address string) string {
	return "pricefeed:" + address
}

func (f *RedisFeed) Address() string {
	return f.address
}

func (f *RedisFeed) LatestRoundData(ctx context.Context) (Round, error) {
	fields, err := f.rdb.HGetAll(ctx, FeedKey(f.address)).Result()
	if err != nil {
		return Round{}, fmt.Errorf("read feed %s: %w", f.address, err)
	}
	return parseRound(fields, f.now(), f.maxAge)
}

// Publish writes an answer the way an updater does; used by tooling and local setups
func (f *RedisFeed) Publish(ctx context.Context, answer *big.Int, decimals uint8) error {
	return f.rdb.HSet(ctx, FeedKey(f.address),
		"answer", answer.String(),
		"decimals", strconv.Itoa(int(decimals)),
		"updated_at", strconv.FormatInt(f.now().Unix(), 10),
	).Err()
}

func parseRound(fields map[string]string, now time.Time, maxAge time.Duration) (Round, error) {
	if len(fields) == 0 {
		return Round{}, errors.New("no answer published")
	}
	answer, ok := new(big.Int).SetString(fields["answer"], 10)
	if !ok {
		return Round{}, fmt.Errorf("malformed answer %q", fields["answer"])
	}
	decimals, err := strconv.ParseUint(fields["decimals"], 10, 8)
	if err != nil {
		return Round{}, fmt.Errorf("malformed decimals %q", fields["decimals"])
	}
	round := Round{Answer: answer, Decimals: uint8(decimals)}
	if ts := fields["updated_at"]; ts != "" {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return Round{}, fmt.Errorf("malformed updated_at %q", ts)
		}
		round.UpdatedAt = time.Unix(sec, 0)
	}
	if maxAge > 0 {
		if round.UpdatedAt.IsZero() || now.Sub(round.UpdatedAt) > maxAge {
			return Round{}, fmt.Errorf("stale answer from %s", round.UpdatedAt.Format(time.RFC3339))
		}
	}
	return round, nil
}
