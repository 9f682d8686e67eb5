package main

import (
	"crowdfund_ledger/internal/config" // Custom import path (Config)
	"crowdfund_ledger/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(db.DSN(cfg))
}
