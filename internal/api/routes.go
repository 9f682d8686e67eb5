package api

import (
	"crowdfund_ledger/internal/ledger"     // Contribution ledger
	"crowdfund_ledger/internal/middleware" // Custom package for middleware
	"crowdfund_ledger/internal/oracle"     // Price conversion

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// RegisterRoutes mounts every endpoint on r
func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, l *ledger.Ledger, conv *oracle.Converter, jwtSecret string) {
	// Account routes
	r.POST("/account", RegisterHandler(db))               // Registration endpoint
	r.POST("/account/login", LoginHandler(db, jwtSecret)) // Login endpoint

	// Ledger queries (public)
	r.GET("/price-feed", PriceFeedHandler(l))                           // Oracle address
	r.GET("/funders/:index", FunderAtHandler(l, rdb))                   // Registry lookup
	r.GET("/contributions/:address", ContributionHandler(l, conv, rdb)) // Balance lookup

	// Ledger operations (protected by JWT and a registered account)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware(jwtSecret), middleware.AccountMiddleware(db))
	auth.POST("/fund", FundHandler(l, rdb))                     // Contribute endpoint
	auth.POST("/withdraw", WithdrawHandler(l, rdb, false))      // Standard withdrawal
	auth.POST("/withdraw/cheap", WithdrawHandler(l, rdb, true)) // Cost-optimized withdrawal
}
