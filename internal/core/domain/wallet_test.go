package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransferAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   bool
	}{
		{"positive", 100, true},
		{"small fraction", 0.01, true},
		{"zero", 0, false},
		{"negative", -5, false},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTransferAmount(tt.amount))
		})
	}
}

func TestSanitizeMemo(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "lunch money", "lunch money"},
		{"script tag stripped", `<script>alert(1)</script>thanks`, "alert(1)thanks"},
		{"nested tags", "<b><i>hi</i></b>", "hi"},
		{"whitespace trimmed", "  spaced out  ", "spaced out"},
		{"empty", "", ""},
		{"only tags", "<div></div>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeMemo(tt.in))
		})
	}
}

func TestCurrency(t *testing.T) {
	assert.True(t, CurrencyMindGems.Valid())
	assert.True(t, CurrencyFluxon.Valid())
	assert.False(t, Currency("dogecoin").Valid())

	assert.Equal(t, float64(MaxTransferGems), CurrencyMindGems.MaxTransfer())
	assert.Equal(t, float64(MaxTransferFluxon), CurrencyFluxon.MaxTransfer())
}

func TestWallet_CurrencyAccessors(t *testing.T) {
	w := &Wallet{
		MindGemsBalance:  500,
		FluxonBalance:    12.5,
		DailySpentGems:   100,
		DailyLimitGems:   1000,
		DailySpentFluxon: 3.25,
		DailyLimitFluxon: 50,
	}

	assert.Equal(t, 500.0, w.Balance(CurrencyMindGems))
	assert.Equal(t, 12.5, w.Balance(CurrencyFluxon))
	assert.Equal(t, 100.0, w.DailySpent(CurrencyMindGems))
	assert.Equal(t, 3.25, w.DailySpent(CurrencyFluxon))
	assert.Equal(t, 1000.0, w.DailyLimit(CurrencyMindGems))
	assert.Equal(t, 50.0, w.DailyLimit(CurrencyFluxon))
}
