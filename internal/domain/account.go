package domain

import "github.com/shopspring/decimal" // Arbitrary precision decimal

// Account Model
type Account struct {
	ID       uint            `gorm:"primaryKey"`                            // Primary key
	Address  string          `gorm:"size:42;uniqueIndex;not null"`          // Lowercase hex address
	Password string          `gorm:"not null"`                              // Hashed password
	Received decimal.Decimal `gorm:"type:decimal(65,0);not null;default:0"` // Base units paid out to this account
}
