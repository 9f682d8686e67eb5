package api

import (
	"context"                          // Context for Redis operations
	"crowdfund_ledger/internal/domain" // Address validation
	"crowdfund_ledger/internal/ledger" // Contribution ledger
	"crowdfund_ledger/internal/oracle" // Price conversion
	"crowdfund_ledger/internal/utils"  // Utility functions
	"net/http"                         // HTTP status codes
	"strconv"                          // String conversion
	"time"                             // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Display formatting
	"github.com/sirupsen/logrus"    // Logging library
)

// cacheTTL bounds how long a query answer may be served from Redis
const cacheTTL = 60 * time.Second

// FunderResponse is the answer to a registry lookup
type FunderResponse struct {
	Index   int    `json:"index"`   // Registry position
	Address string `json:"address"` // Funder at that position
}

// ContributionResponse is the answer to a balance lookup
type ContributionResponse struct {
	Address   string  `json:"address"`              // Queried identity
	Amount    string  `json:"amount"`               // Base units (wei)
	AmountUSD *string `json:"amount_usd,omitempty"` // Value at the current price, two decimals
}

// PriceFeedHandler returns the oracle address fixed at construction
func PriceFeedHandler(l *ledger.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"price_feed": l.PriceFeed()})
	}
}

// FunderAtHandler returns the funder at a registry index
func FunderAtHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Index must be a non-negative integer"})
			return
		}
		ctx := context.Background()                               // Context for Redis operations
		cacheKey := cachePrefix + "funder:" + strconv.Itoa(index) // Cache key for the position
		var resp FunderResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
			c.JSON(http.StatusOK, resp)
			return
		}
		address, err := l.FunderAt(index)
		if err != nil {
			respondError(c, err, logrus.Fields{"index": index}, "Funder lookup failed")
			return
		}
		resp = FunderResponse{Index: index, Address: address}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL) // Positions only change on withdrawal
		c.JSON(http.StatusOK, resp)
	}
}

// ContributionHandler returns the amount an address has contributed since the last withdrawal
func ContributionHandler(l *ledger.Ledger, conv *oracle.Converter, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		address, err := domain.NormalizeAddress(c.Param("address"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Address must be 0x followed by 40 hex digits"})
			return
		}
		ctx := context.Background()          // Context for Redis operations
		cacheKey := contributionKey(address) // Cache key for the address
		var resp ContributionResponse
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &resp); err == nil && found {
			c.JSON(http.StatusOK, resp)
			return
		}
		amount := l.ContributedAmount(address) // Zero when absent
		resp = ContributionResponse{Address: address, Amount: amount.String()}
		if usd, err := conv.ConvertToAccountingUnits(c.Request.Context(), amount); err == nil {
			s := decimal.NewFromBigInt(usd, -oracle.AccountingDecimals).StringFixed(2)
			resp.AmountUSD = &s
		} else {
			logrus.WithFields(logrus.Fields{"address": address, "error": err.Error()}).Warn("Price unavailable for contribution query")
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)
		c.JSON(http.StatusOK, resp)
	}
}
