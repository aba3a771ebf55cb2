package services

import (
	"fmt"
	"math"
	"strings"

	"tableorder/models"
	"tableorder/pricing"
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return models.NewValidationError(field, field+" is required")
	}
	return nil
}

func validateCreateOrder(in models.CreateOrderInput) error {
	if err := required("shopId", in.ShopID); err != nil {
		return err
	}
	if err := required("tableNo", in.TableNo); err != nil {
		return err
	}
	if len(in.Items) == 0 {
		return models.NewValidationError("items", "items cannot be empty")
	}
	for i, item := range in.Items {
		if err := validateItem(item, i); err != nil {
			return err
		}
	}
	subtotal, bad, ok := pricing.CheckedSubtotal(in.Items)
	if !ok {
		return models.NewValidationError(fmt.Sprintf("items[%d].price", bad), "order subtotal exceeds the supported range")
	}
	adjs := make([]models.OrderAdjustment, 0, len(in.Adjustments))
	for i, spec := range in.Adjustments {
		if err := validateAdjustment(spec, fmt.Sprintf("adjustments[%d]", i)); err != nil {
			return err
		}
		adjs = append(adjs, models.OrderAdjustment{Name: spec.Name, Type: spec.Type, ValueType: spec.ValueType, Value: spec.Value})
	}
	return validateAmounts(subtotal, adjs, func(i int) string { return fmt.Sprintf("adjustments[%d].value", i) })
}

// validateAmounts rejects adjustments whose amount, or whose effect on the
// running total, falls outside int64.
func validateAmounts(subtotal int64, adjs []models.OrderAdjustment, field func(i int) string) error {
	priced := make([]models.OrderAdjustment, len(adjs))
	for i, adj := range adjs {
		if !pricing.AmountFits(subtotal, adj.Spec()) {
			return models.NewValidationError(field(i), "adjustment amount exceeds the supported range")
		}
		adj.Amount = pricing.ComputeAmount(subtotal, adj.Spec())
		priced[i] = adj
		if !pricing.TotalFits(subtotal, priced[:i+1]) {
			return models.NewValidationError(field(i), "order total exceeds the supported range")
		}
	}
	return nil
}

func validateItem(item models.OrderItem, index int) error {
	prefix := fmt.Sprintf("items[%d]", index)
	if strings.TrimSpace(item.Name) == "" {
		return models.NewValidationError(prefix+".name", "item name is required")
	}
	if item.Quantity <= 0 {
		return models.NewValidationError(prefix+".quantity", "item quantity must be greater than 0")
	}
	if item.Price < 0 {
		return models.NewValidationError(prefix+".price", "item price must not be negative")
	}
	return nil
}

// validateAdjustment checks a spec before its amount is computed. prefix is
// prepended to field names; pass "" for a top-level adjustment body.
func validateAdjustment(spec models.AdjustmentSpec, prefix string) error {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}
	if spec.Type != models.AdjustmentDiscount && spec.Type != models.AdjustmentSurcharge {
		return models.NewValidationError(field("type"), "type must be one of: discount, surcharge")
	}
	if spec.ValueType != models.ValueFixed && spec.ValueType != models.ValuePercentage {
		return models.NewValidationError(field("valueType"), "valueType must be one of: fixed, percentage")
	}
	if math.IsNaN(spec.Value) || math.IsInf(spec.Value, 0) {
		return models.NewValidationError(field("value"), "value must be a finite number")
	}
	if spec.Value < 0 {
		return models.NewValidationError(field("value"), "value must not be negative")
	}
	return nil
}

func validateMenuItem(item models.MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return models.NewValidationError("name", "menu item name is required")
	}
	if item.Price < 0 {
		return models.NewValidationError("price", "menu item price must not be negative")
	}
	return nil
}
