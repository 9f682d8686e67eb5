package middleware

import (
	"crowdfund_ledger/internal/domain" // Importing domain models
	"net/http"                         // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// AccountMiddleware checks on each request that the caller still has a registered account
func AccountMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.GetString("address") // Get address from context
		// Check if address exists in context
		if address == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var account domain.Account // Fetch account from database
		if err := db.Where("address = ?", address).First(&account).Error; err != nil {
			// If account not found or any error, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account not found"})
			return
		}
		c.Next()
	}
}
