package domain

import "github.com/shopspring/decimal" // Arbitrary precision decimal

// LedgerStateID is the primary key of the single ledger row
const LedgerStateID uint = 1

// LedgerState Model
type LedgerState struct {
	ID                  uint            `gorm:"primaryKey"`                            // Always LedgerStateID
	Owner               string          `gorm:"size:42;not null"`                      // Fixed at construction
	PriceFeed           string          `gorm:"size:42;not null"`                      // Oracle feed address
	HeldBalance         decimal.Decimal `gorm:"type:decimal(65,0);not null;default:0"` // Base units in custody
	MinimumContribution decimal.Decimal `gorm:"type:decimal(65,0);not null"`           // Threshold in accounting units
}
