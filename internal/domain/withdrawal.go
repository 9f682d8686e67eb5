package domain

import "github.com/shopspring/decimal" // Arbitrary precision decimal

// Withdrawal variants
const (
	WithdrawStandard = "standard"
	WithdrawCheap    = "cheap"
)

// Withdrawal is an audit record of a successful withdrawal
type Withdrawal struct {
	ID        uint            `gorm:"primaryKey"`                  // Primary key
	Owner     string          `gorm:"size:42;not null"`            // Recipient
	Amount    decimal.Decimal `gorm:"type:decimal(65,0);not null"` // Base units paid out
	Funders   int             `gorm:"not null"`                    // Registry length before clearing
	Variant   string          `gorm:"size:16;not null"`            // standard or cheap
	CreatedAt int64           `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
}
