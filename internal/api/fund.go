package api

import (
	"context"                          // Context for Redis operations
	"crowdfund_ledger/internal/ledger" // Contribution ledger
	"crowdfund_ledger/internal/utils"  // Utility functions
	"math/big"                         // Arbitrary precision integers
	"net/http"                         // HTTP status codes
	"time"                             // Timestamps

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// FundRequest represents a contribution
type FundRequest struct {
	Amount string `json:"amount" binding:"required"` // Base units (wei) as a decimal string
}

// contributionKey is the cache key of an address's contributed amount
func contributionKey(address string) string {
	return cachePrefix + "contribution:" + address
}

// cachePrefix covers every cached ledger query
const cachePrefix = "ledger:"

// FundHandler records a contribution from the authenticated address
func FundHandler(l *ledger.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.GetString("address") // Get address from context
		if address == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req FundRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		amount, ok := new(big.Int).SetString(req.Amount, 10)
		if !ok || amount.Sign() < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		if err := l.Contribute(c.Request.Context(), address, amount); err != nil {
			respondError(c, err, logrus.Fields{
				"address": address,         // Contributor
				"amount":  amount.String(), // Base units sent
			}, "Contribution failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"address":   address,                         // Contributor
			"amount":    amount.String(),                 // Base units sent
			"type":      "contribution",                  // Operation type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Contribution transaction")
		_ = utils.DeleteCachePrefix(context.Background(), rdb, contributionKey(address)) // Invalidate cached amount
		c.JSON(http.StatusOK, gin.H{
			"message": "Contribution recorded",
			"amount":  amount.String(),
			"total":   l.ContributedAmount(address).String(),
		})
	}
}

// WithdrawHandler pays the ledger balance to the owner. cheap selects the single-read variant.
func WithdrawHandler(l *ledger.Ledger, rdb *redis.Client, cheap bool) gin.HandlerFunc {
	withdraw := l.Withdraw
	if cheap {
		withdraw = l.CheapWithdraw
	}
	return func(c *gin.Context) {
		address := c.GetString("address") // Get address from context
		if address == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := withdraw(c.Request.Context(), address); err != nil {
			respondError(c, err, logrus.Fields{
				"address": address, // Caller
				"cheap":   cheap,   // Variant
			}, "Withdrawal failed")
			return
		}
		_ = utils.DeleteCachePrefix(context.Background(), rdb, cachePrefix) // Registry and balances are gone
		logrus.WithFields(logrus.Fields{
			"address":   address,                         // Owner
			"cheap":     cheap,                           // Variant
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Withdrawal transaction")
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal successful"})
	}
}
