package domain

// DiscountType distinguishes percentage codes from fixed-amount codes.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DiscountCode is an order-level code. MinAmount and MaxDiscount are zero
// when absent.
type DiscountCode struct {
	Code        string
	Type        DiscountType
	Value       int64
	MinAmount   int64
	MaxDiscount int64
	Active      bool
}

// vatPercent is the flat VAT applied to the post-discount taxable amount.
const vatPercent = 10

// PricingBreakdown carries the derived money fields for an order, before the
// aggregate adds the shipping fee.
//
// Subtotal intentionally ignores OrderItem.Discount: the per-item discount
// and the order-level code are two separate concepts that the invoice
// surfaces independently; they are never netted against each other here.
type PricingBreakdown struct {
	Subtotal int64
	Discount int64
	Tax      int64
	Total    int64
}

// CalculatePricing derives subtotal, discount, tax, and total from the line
// items and an optional discount code. An invalid or inactive code yields a
// zero discount, never an error.
func CalculatePricing(items []OrderItem, code *DiscountCode) PricingBreakdown {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	discount := discountFor(subtotal, code)
	taxable := subtotal - discount
	tax := roundPercent(taxable, vatPercent)
	return PricingBreakdown{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    subtotal - discount + tax,
	}
}

func discountFor(subtotal int64, code *DiscountCode) int64 {
	if code == nil || !code.Active {
		return 0
	}
	if code.MinAmount > 0 && subtotal < code.MinAmount {
		return 0
	}
	switch code.Type {
	case DiscountPercentage:
		discount := roundPercent(subtotal, code.Value)
		if code.MaxDiscount > 0 && discount > code.MaxDiscount {
			discount = code.MaxDiscount
		}
		return discount
	case DiscountFixed:
		if code.Value > subtotal {
			return subtotal
		}
		return code.Value
	default:
		return 0
	}
}

// roundPercent computes amount*percent/100 rounded half-up to the nearest
// minor unit. Amounts are non-negative throughout the pricing path.
func roundPercent(amount, percent int64) int64 {
	return (amount*percent + 50) / 100
}
