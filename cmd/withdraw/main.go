package main

import (
	"context"                          // Context for the withdrawal
	"crowdfund_ledger/internal/client" // Ledger server client
	"crowdfund_ledger/internal/config" // Custom package for configuration
	"crowdfund_ledger/internal/domain" // Address validation
	"crowdfund_ledger/internal/utils"  // JWT and cache helpers
	"flag"                             // Command line flags
	"time"                             // Timeout

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Withdraws the ledger balance to its owner through the running server, acting as the configured deployer.
// The server holds the live ledger, so this never builds a second copy from the database.
func main() {
	cheap := flag.Bool("cheap", false, "use the single-read withdrawal")
	timeout := flag.Duration("timeout", 30*time.Second, "give up after this long")
	flag.Parse()

	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	caller, err := domain.NormalizeAddress(cfg.Deployer)
	if err != nil {
		logrus.Fatalf("invalid deployer address: %v", err)
	}
	token, err := utils.GenerateJWT(caller, cfg.JWTSecret) // Sign in as the deployer
	if err != nil {
		logrus.Fatalf("failed to sign token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logrus.WithField("server", cfg.ServerURL).Info("Withdrawing from ledger...")
	msg, err := client.New(cfg.ServerURL, token).Withdraw(ctx, *cheap)
	if err != nil {
		logrus.Fatalf("withdrawal failed: %v", err)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := utils.DeleteCachePrefix(ctx, rdb, "ledger:"); err != nil {
			logrus.Warnf("failed to clear cached queries: %v", err) // Entries still expire on their own
		}
	}
	logrus.WithField("cheap", *cheap).Info(msg)
}
