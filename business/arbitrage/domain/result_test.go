package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestArbitrageResult_Profitable(t *testing.T) {
	tests := []struct {
		profit string
		want   bool
	}{
		{"0.0485", true},
		{"0.000000000000000001", true},
		{"0", false},
		{"-0.015", false},
	}

	for _, tt := range tests {
		t.Run(tt.profit, func(t *testing.T) {
			r := ArbitrageResult{RelativeProfit: decimal.RequireFromString(tt.profit)}
			assert.Equal(t, tt.want, r.Profitable())
		})
	}
}

func TestStrategyParams_Validate(t *testing.T) {
	ok := StrategyParams{Principal: decimal.NewFromInt(1), RiskPremium: decimal.RequireFromString("0.005")}
	assert.NoError(t, ok.Validate())

	assert.Error(t, StrategyParams{Principal: decimal.Zero}.Validate())
	assert.Error(t, StrategyParams{Principal: decimal.NewFromInt(1), RiskPremium: decimal.NewFromInt(-1)}.Validate())
}
