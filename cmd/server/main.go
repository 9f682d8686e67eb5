package main

import (
	"context"                             // context package is needed for Redis operations
	"crowdfund_ledger/internal/api"       // Custom package for API handlers
	"crowdfund_ledger/internal/bootstrap" // Price feed and ledger construction
	"crowdfund_ledger/internal/config"    // Custom package for configuration
	"crowdfund_ledger/internal/db"        // Database connection
	"log"                                 // log package is needed for logging

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	gdb, err := db.Open(db.DSN(cfg))
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Pick the price feed and restore the ledger
	feed, err := bootstrap.PriceFeed(cfg, redisClient)
	if err != nil {
		logrus.Fatalf("failed to configure price feed: %v", err)
	}
	l, conv, err := bootstrap.Ledger(context.Background(), cfg, gdb, feed)
	if err != nil {
		logrus.Fatalf("failed to load ledger: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, gdb, redisClient, l, conv, cfg.JWTSecret)

	log.Println("Server running on " + cfg.AppPort)  // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil { // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
