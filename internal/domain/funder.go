package domain

import "github.com/shopspring/decimal" // Arbitrary precision decimal

// Funder is one registry entry together with its balance
type Funder struct {
	ID       uint            `gorm:"primaryKey"`                   // Primary key
	Position int             `gorm:"uniqueIndex;not null"`         // Index in the funder registry
	Address  string          `gorm:"size:42;uniqueIndex;not null"` // Contributor address
	Amount   decimal.Decimal `gorm:"type:decimal(65,0);not null"`  // Accumulated base units
}
