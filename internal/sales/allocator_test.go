package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func priced(prices ...string) []PricedLineItem {
	out := make([]PricedLineItem, len(prices))
	for i, p := range prices {
		out[i] = PricedLineItem{ID: int64(i + 1), Quantity: 1, Price: decimal.RequireFromString(p)}
	}
	return out
}

func discounts(items []DiscountedLineItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Discount.StringFixed(2)
	}
	return out
}

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		name  string
		items []PricedLineItem
		total string
		want  []string
	}{
		{name: "even split", items: priced("200", "49.99"), total: "10", want: []string{"5.00", "5.00"}},
		{name: "remainder on last", items: priced("1", "1", "1"), total: "10", want: []string{"3.33", "3.33", "3.34"}},
		{name: "single item", items: priced("5"), total: "10", want: []string{"10.00"}},
		{name: "zero discount", items: priced("1", "2"), total: "0", want: []string{"0.00", "0.00"}},
		{name: "half rounds away from zero", items: priced("1", "1", "1", "1", "1", "1", "1", "1"), total: "1",
			want: []string{"0.13", "0.13", "0.13", "0.13", "0.13", "0.13", "0.13", "0.09"}},
		{name: "six way", items: priced("1", "1", "1", "1", "1", "1"), total: "1",
			want: []string{"0.17", "0.17", "0.17", "0.17", "0.17", "0.15"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyDiscount(tc.items, decimal.RequireFromString(tc.total))
			require.Equal(t, tc.want, discounts(got))
			for i := range got {
				require.Equal(t, tc.items[i], got[i].PricedLineItem)
			}
		})
	}
}

func TestApplyDiscountEmpty(t *testing.T) {
	require.Empty(t, ApplyDiscount(nil, decimal.NewFromInt(10)))
}

func TestApplyDiscountConservesTotal(t *testing.T) {
	for n := 1; n <= 25; n++ {
		items := make([]PricedLineItem, n)
		for i := range items {
			items[i] = PricedLineItem{ID: int64(i + 1), Quantity: 1, Price: decimal.NewFromInt(1)}
		}
		for _, total := range []int64{0, 1, 7, 10, 99, 1000, 12345} {
			got := ApplyDiscount(items, decimal.NewFromInt(total))
			sum := decimal.Zero
			for i, item := range got {
				require.True(t, item.Discount.Equal(item.Discount.Round(2)), "n=%d total=%d item=%d", n, total, i)
				sum = sum.Add(item.Discount)
			}
			require.True(t, sum.Equal(decimal.NewFromInt(total)), "n=%d total=%d sum=%s", n, total, sum)
		}
	}
}
