package domain

import "github.com/shopspring/decimal" // Arbitrary precision decimal

// Contribution is an audit record of an accepted contribution
type Contribution struct {
	ID         uint            `gorm:"primaryKey"`                  // Primary key
	Address    string          `gorm:"size:42;index;not null"`      // Contributor address
	Amount     decimal.Decimal `gorm:"type:decimal(65,0);not null"` // Base units sent
	Accounting decimal.Decimal `gorm:"type:decimal(65,0);not null"` // Converted accounting units
	CreatedAt  int64           `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
}
