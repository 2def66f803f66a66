package billing

import (
	"math/rand"
	"testing"

	"go-print-erp/internal/apperr"
	"go-print-erp/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateLine(t *testing.T) {
	tests := []struct {
		name string
		in   LineInput
		want LineResult
	}{
		{
			name: "percentage discount",
			in:   LineInput{Quantity: 2, Rate: 100, DiscountType: DiscountPercentage, DiscountValue: 10, BaseCost: 60},
			want: LineResult{Quantity: 2, Subtotal: 200, DiscountAmount: 20, Total: 180, Profit: 60},
		},
		{
			name: "fixed discount larger than subtotal clamps to zero",
			in:   LineInput{Quantity: 2, Rate: 100, DiscountType: DiscountFixed, DiscountValue: 250},
			want: LineResult{Quantity: 2, Subtotal: 200, DiscountAmount: 200, Total: 0, Profit: 0},
		},
		{
			name: "no discount",
			in:   LineInput{Quantity: 3, Rate: 12.5, DiscountType: DiscountFixed},
			want: LineResult{Quantity: 3, Subtotal: 37.5, Total: 37.5, Profit: 37.5},
		},
		{
			name: "loss making line",
			in:   LineInput{Quantity: 10, Rate: 5, DiscountType: DiscountFixed, BaseCost: 6},
			want: LineResult{Quantity: 10, Subtotal: 50, Total: 50, Profit: -10},
		},
		{
			name: "fractional quantity rounds to three places",
			in:   LineInput{Quantity: 1.2345, Rate: 100, DiscountType: DiscountPercentage},
			want: LineResult{Quantity: 1.235, Subtotal: 123.5, Total: 123.5, Profit: 123.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateLine(tt.in))
		})
	}
}

func TestCalculateLineTotalNeverNegative(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		in := LineInput{
			Quantity:      money.Round3(r.Float64()*50 + 0.001),
			Rate:          money.Round2(r.Float64() * 1000),
			DiscountValue: money.Round2(r.Float64() * 5000),
			DiscountType:  DiscountFixed,
		}
		if i%2 == 0 {
			in.DiscountType = DiscountPercentage
			in.DiscountValue = money.Round2(r.Float64() * 100)
		}
		got := CalculateLine(in)
		assert.GreaterOrEqual(t, got.Total, 0.0)
		assert.Equal(t, money.Round2(got.Total), got.Total)
		assert.LessOrEqual(t, got.DiscountAmount, got.Subtotal)
	}
}

func TestLineInputValidate(t *testing.T) {
	require.NoError(t, LineInput{Quantity: 1, DiscountType: DiscountFixed}.Validate())

	err := LineInput{Quantity: 0, Rate: -1, DiscountType: "bogus", DiscountValue: -5, BaseCost: -1}.Validate()
	require.Error(t, err)
	details := apperr.As(err).Details
	assert.Len(t, details, 5)
	assert.Contains(t, details, "quantity")
	assert.Contains(t, details, "rate")
	assert.Contains(t, details, "discountType")
	assert.Contains(t, details, "discountValue")
	assert.Contains(t, details, "baseCost")

	err = LineInput{Quantity: 1, DiscountType: DiscountPercentage, DiscountValue: 120}.Validate()
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSummarize(t *testing.T) {
	a := CalculateLine(LineInput{Quantity: 2, Rate: 100, DiscountType: DiscountPercentage, DiscountValue: 10, BaseCost: 50})
	b := CalculateLine(LineInput{Quantity: 1, Rate: 49.99, DiscountType: DiscountFixed, DiscountValue: 0.5, BaseCost: 20})

	s := Summarize([]LineResult{a, b}, false)
	assert.Equal(t, 249.99, s.Subtotal)
	assert.Equal(t, 20.5, s.TotalDiscount)
	assert.Equal(t, 229.49, s.GrandTotal)
	assert.Equal(t, money.Round2(s.Subtotal-s.TotalDiscount), s.GrandTotal)
	assert.Equal(t, 109.49, s.TotalProfit)

	rounded := Summarize([]LineResult{a, b}, true)
	assert.Equal(t, 229.0, rounded.GrandTotal)
	assert.True(t, rounded.RoundOffTotal)
}

func TestSummarizeScenarios(t *testing.T) {
	pct := CalculateLine(LineInput{Quantity: 2, Rate: 100, DiscountType: DiscountPercentage, DiscountValue: 10})
	s := Summarize([]LineResult{pct}, false)
	assert.Equal(t, 180.0, pct.Total)
	assert.Equal(t, 200.0, s.Subtotal)
	assert.Equal(t, 20.0, s.TotalDiscount)
	assert.Equal(t, 180.0, s.GrandTotal)

	fixed := CalculateLine(LineInput{Quantity: 2, Rate: 100, DiscountType: DiscountFixed, DiscountValue: 250})
	s = Summarize([]LineResult{fixed}, false)
	assert.Equal(t, 0.0, fixed.Total)
	assert.Equal(t, 0.0, s.GrandTotal)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil, false))
}

func TestDueAmount(t *testing.T) {
	due, err := DueAmount(180, 180)
	require.NoError(t, err)
	assert.Equal(t, 0.0, due)

	due, err = DueAmount(180, 79.5)
	require.NoError(t, err)
	assert.Equal(t, 100.5, due)

	_, err = DueAmount(180, 200)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = DueAmount(180, -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDueAmountInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		grand := money.Round2(r.Float64() * 10000)
		paid := money.Round2(r.Float64() * grand)
		due, err := DueAmount(grand, paid)
		require.NoError(t, err)
		assert.Equal(t, grand, money.Round2(due+paid))
	}
}
