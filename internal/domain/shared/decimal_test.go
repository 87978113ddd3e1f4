package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"half rounds up", "1.235", "1.24"},
		{"below half rounds down", "1.234", "1.23"},
		{"negative half rounds away from zero", "-19.625", "-19.63"},
		{"already at scale", "100.50", "100.5"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := decimal.RequireFromString(tt.input)
			assert.True(t, RoundMoney(v).Equal(decimal.RequireFromString(tt.expected)),
				"RoundMoney(%s) = %s", tt.input, RoundMoney(v))
		})
	}
}

func TestRoundRate(t *testing.T) {
	v := decimal.RequireFromString("0.123456")
	assert.Equal(t, "0.1235", RoundRate(v).StringFixed(4))
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(decimal.NewFromInt(10)).Equal(decimal.RequireFromString("0.1")))
	assert.True(t, Percent(decimal.Zero).Equal(decimal.Zero))
}
