package pricing

import (
	"github.com/shopspring/decimal"
)

// Rewards converts between currency and loyalty points.
type Rewards struct {
	// PointsPerUnit is the number of points earned per currency unit spent.
	PointsPerUnit decimal.Decimal
	// BlockSize is the smallest redeemable number of points.
	BlockSize int
	// BlockValue is the currency value of one block.
	BlockValue decimal.Decimal
}

// DefaultRewards earns one point per unit and redeems 100 points for 5 units.
func DefaultRewards() Rewards {
	return Rewards{
		PointsPerUnit: decimal.NewFromInt(1),
		BlockSize:     100,
		BlockValue:    decimal.NewFromInt(5),
	}
}

// EarnPoints returns floor(subtotal × PointsPerUnit), never negative.
func (r Rewards) EarnPoints(subtotal decimal.Decimal) int {
	if !subtotal.IsPositive() {
		return 0
	}
	return int(subtotal.Mul(r.PointsPerUnit).Floor().IntPart())
}

// CalculateRedeemValue returns the currency value of whole blocks in points.
// Remainders below a block are ignored.
func (r Rewards) CalculateRedeemValue(points int) decimal.Decimal {
	if points <= 0 || r.BlockSize <= 0 {
		return decimal.Zero
	}
	blocks := points / r.BlockSize
	return r.BlockValue.Mul(decimal.NewFromInt(int64(blocks))).Round(2)
}

// NormalizeRedeemRequest floors a redemption request to whole blocks that the
// balance can cover. Requests below one block yield zero.
func (r Rewards) NormalizeRedeemRequest(balance, requested int) int {
	if r.BlockSize <= 0 || requested < r.BlockSize {
		return 0
	}
	usable := min(balance, requested)
	if usable < 0 {
		return 0
	}
	return (usable / r.BlockSize) * r.BlockSize
}
