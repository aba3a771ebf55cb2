// Package pricing computes order subtotals, adjustment amounts and totals.
// All money values are integers in the currency's minor unit and must fit in
// an int64; the Checked* helpers report inputs that would not.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"tableorder/models"
)

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.NewFromInt(math.MaxInt64)
)

func magnitude(subtotal int64, spec models.AdjustmentSpec) decimal.Decimal {
	value := decimal.NewFromFloat(spec.Value)
	if spec.ValueType == models.ValuePercentage {
		value = decimal.NewFromInt(subtotal).Mul(value).Div(hundred)
	}
	return value.Round(0).Abs()
}

// AmountFits reports whether the adjustment amount against subtotal is
// representable.
func AmountFits(subtotal int64, spec models.AdjustmentSpec) bool {
	if math.IsNaN(spec.Value) || math.IsInf(spec.Value, 0) {
		return false
	}
	return magnitude(subtotal, spec).LessThanOrEqual(maxAmount)
}

// ComputeAmount returns the signed amount of an adjustment against subtotal.
// Percentages are rounded half away from zero. Discounts come back negated,
// surcharges as-is. The value is not validated here; a magnitude beyond
// int64 saturates at math.MaxInt64 so the sign always follows the type.
func ComputeAmount(subtotal int64, spec models.AdjustmentSpec) int64 {
	m := magnitude(subtotal, spec)
	if m.GreaterThan(maxAmount) {
		m = maxAmount
	}
	amount := m.IntPart()
	if spec.Type == models.AdjustmentDiscount {
		return -amount
	}
	return amount
}

// Subtotal sums price*quantity over the items.
func Subtotal(items []models.OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// CheckedSubtotal is Subtotal for untrusted items. It returns the index of
// the first item whose line total, or the running sum up to it, overflows.
func CheckedSubtotal(items []models.OrderItem) (int64, int, bool) {
	var total int64
	for i, item := range items {
		if item.Price < 0 || item.Quantity < 0 {
			return 0, i, false
		}
		if item.Quantity > 0 && item.Price > math.MaxInt64/int64(item.Quantity) {
			return 0, i, false
		}
		line := item.Price * int64(item.Quantity)
		if total > math.MaxInt64-line {
			return 0, i, false
		}
		total += line
	}
	return total, -1, true
}

// Total adds every adjustment amount to subtotal. No clamping at zero.
func Total(subtotal int64, adjustments []models.OrderAdjustment) int64 {
	total := subtotal
	for _, adj := range adjustments {
		total += adj.Amount
	}
	return total
}

// TotalFits reports whether subtotal plus every amount, and each partial
// sum on the way, stays within int64.
func TotalFits(subtotal int64, adjustments []models.OrderAdjustment) bool {
	total := subtotal
	for _, adj := range adjustments {
		if (adj.Amount > 0 && total > math.MaxInt64-adj.Amount) ||
			(adj.Amount < 0 && total < math.MinInt64-adj.Amount) {
			return false
		}
		total += adj.Amount
	}
	return true
}

// Reprice rebuilds every derived figure of the order from its stored
// subtotal and adjustment specs.
func Reprice(order *models.Order) {
	for i := range order.Adjustments {
		order.Adjustments[i].Amount = ComputeAmount(order.Subtotal, order.Adjustments[i].Spec())
	}
	order.TotalPrice = Total(order.Subtotal, order.Adjustments)
}
