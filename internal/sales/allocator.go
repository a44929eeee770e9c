package sales

import "github.com/shopspring/decimal"

const discountPlaces = 2

// ApplyDiscount splits a flat discount evenly across items. Every item but
// the last gets total/n rounded to cents; the last gets the remainder, so the
// shares always add up to total. Rounding is half away from zero.
func ApplyDiscount(items []PricedLineItem, total decimal.Decimal) []DiscountedLineItem {
	out := make([]DiscountedLineItem, len(items))
	if len(items) == 0 {
		return out
	}
	share := divideRounded(total, int64(len(items)))
	accumulated := decimal.Zero
	for i, item := range items {
		discount := share
		if i == len(items)-1 {
			discount = total.Sub(accumulated).Round(discountPlaces)
		} else {
			accumulated = accumulated.Add(share)
		}
		out[i] = DiscountedLineItem{PricedLineItem: item, Discount: discount}
	}
	return out
}

// divideRounded computes total/n rounded to discountPlaces using exact
// integer division on the shifted amount.
func divideRounded(total decimal.Decimal, n int64) decimal.Decimal {
	divisor := decimal.NewFromInt(n)
	scaled := total.Shift(discountPlaces)
	q, r := scaled.QuoRem(divisor, 0)
	if r.Abs().Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(divisor) {
		if scaled.IsNegative() {
			q = q.Sub(decimal.NewFromInt(1))
		} else {
			q = q.Add(decimal.NewFromInt(1))
		}
	}
	return q.Shift(-discountPlaces)
}
