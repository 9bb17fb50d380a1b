package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRewards_CalculateRedeemValue(t *testing.T) {
	r := DefaultRewards()

	tests := []struct {
		points   int
		expected string
	}{
		{0, "0"},
		{-50, "0"},
		{99, "0"},
		{100, "5.00"},
		{250, "10.00"},
		{1000, "50.00"},
	}

	for _, tt := range tests {
		got := r.CalculateRedeemValue(tt.points)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
			"points=%d: expected %s, got %s", tt.points, tt.expected, got)
	}
}

func TestRewards_NormalizeRedeemRequest(t *testing.T) {
	r := DefaultRewards()

	tests := []struct {
		name      string
		balance   int
		requested int
		expected  int
	}{
		{"Floors to available blocks", 150, 250, 100},
		{"Below one block yields zero", 1000, 99, 0},
		{"Exact blocks", 500, 300, 300},
		{"Remainder of request dropped", 500, 349, 300},
		{"Balance below a block", 80, 200, 0},
		{"Negative balance", -10, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.NormalizeRedeemRequest(tt.balance, tt.requested))
		})
	}
}

func TestRewards_EarnPoints(t *testing.T) {
	r := DefaultRewards()

	assert.Equal(t, 13, r.EarnPoints(decimal.RequireFromString("13.50")))
	assert.Equal(t, 0, r.EarnPoints(decimal.RequireFromString("0.99")))
	assert.Equal(t, 0, r.EarnPoints(decimal.RequireFromString("-4")))

	double := Rewards{PointsPerUnit: decimal.NewFromInt(2), BlockSize: 100, BlockValue: decimal.NewFromInt(5)}
	assert.Equal(t, 27, double.EarnPoints(decimal.RequireFromString("13.50")))
}
