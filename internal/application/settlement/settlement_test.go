package settlement

import (
	"errors"
	"testing"

	"scrapmarket-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_TenPercentOfFiveHundred(t *testing.T) {
	res, err := Compute(domain.MustMoney("500.00"), domain.MustRate("0.10"))
	require.NoError(t, err)
	assert.Equal(t, "50.00", res.PlatformProfit.String())
	assert.Equal(t, "450.00", res.SellerPayout.String())
}

func TestCompute_RoundsHalfUp(t *testing.T) {
	// 0.25 × 0.10 = 0.025 -> 0.03
	res, err := Compute(domain.MustMoney("0.25"), domain.MustRate("0.10"))
	require.NoError(t, err)
	assert.Equal(t, "0.03", res.PlatformProfit.String())
	assert.Equal(t, "0.22", res.SellerPayout.String())

	// 12.34 × 0.02 = 0.2468 -> 0.25
	res, err = Compute(domain.MustMoney("12.34"), domain.MustRate("0.02"))
	require.NoError(t, err)
	assert.Equal(t, "0.25", res.PlatformProfit.String())
	assert.Equal(t, "12.09", res.SellerPayout.String())
}

func TestCompute_NegativeTotal(t *testing.T) {
	_, err := Compute(domain.MustMoney("-0.01"), domain.MustRate("0.10"))
	assert.True(t, errors.Is(err, domain.ErrInvalidAmount))
}

func TestCompute_ZeroTotal(t *testing.T) {
	res, err := Compute(domain.MustMoney("0"), domain.MustRate("0.5"))
	require.NoError(t, err)
	assert.True(t, res.PlatformProfit.IsZero())
	assert.True(t, res.SellerPayout.IsZero())
}

func TestCompute_ProfitPlusPayoutEqualsTotal(t *testing.T) {
	totals := []string{"0", "0.01", "0.05", "0.0021", "1.005", "9.99", "12.34", "333.33", "500.00", "1234567.891", "99999.995"}
	rates := []string{"0", "0.001", "0.02", "0.025", "0.1", "0.10", "0.3333", "0.5", "0.999", "1"}
	for _, ts := range totals {
		for _, rs := range rates {
			total := domain.MustMoney(ts)
			res, err := Compute(total, domain.MustRate(rs))
			require.NoError(t, err)
			assert.True(t, res.PlatformProfit.Add(res.SellerPayout).Equal(total), "total=%s rate=%s", ts, rs)
			assert.LessOrEqual(t, -res.PlatformProfit.Decimal().Exponent(), int32(domain.MinorUnits), "total=%s rate=%s", ts, rs)
		}
	}
}
