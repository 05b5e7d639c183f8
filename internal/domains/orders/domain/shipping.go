package domain

// ShippingPolicy computes the shipping fee for an order. The city table below
// is a stand-in; integrators swap the policy without touching the aggregate.
type ShippingPolicy interface {
	Fee(items []OrderItem, info *ShippingInfo) int64
}

// CityTablePolicy maps cities to flat fees with a default for unknown cities.
type CityTablePolicy struct {
	Fees       map[string]int64
	DefaultFee int64
}

// DefaultShippingPolicy returns the built-in city table.
func DefaultShippingPolicy() *CityTablePolicy {
	return &CityTablePolicy{
		Fees: map[string]int64{
			"TP. Hồ Chí Minh": 30000,
			"Hà Nội":          30000,
			"Đà Nẵng":         35000,
			"Cần Thơ":         35000,
		},
		DefaultFee: 40000,
	}
}

// Fee returns 0 for all-digital orders regardless of shipping info; otherwise
// it looks up the city, falling back to the default fee.
func (p *CityTablePolicy) Fee(items []OrderItem, info *ShippingInfo) int64 {
	physical := false
	for _, item := range items {
		if item.Physical() {
			physical = true
			break
		}
	}
	if !physical {
		return 0
	}
	if info != nil {
		if fee, ok := p.Fees[info.City]; ok {
			return fee
		}
	}
	return p.DefaultFee
}

var _ ShippingPolicy = (*CityTablePolicy)(nil)
