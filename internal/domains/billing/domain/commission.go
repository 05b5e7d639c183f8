package domain

import "time"

// CommissionRate is the platform/partner split for one item category, in
// whole percent. The two always sum to 100.
type CommissionRate struct {
	Category    string
	PlatformPct int64
	PartnerPct  int64
}

// commissionRates is the configured split table, in priority order. An
// unknown category falls back to the first entry.
var commissionRates = []CommissionRate{
	{Category: "course", PlatformPct: 15, PartnerPct: 85},
	{Category: "document", PlatformPct: 20, PartnerPct: 80},
	{Category: "subscription", PlatformPct: 10, PartnerPct: 90},
	{Category: "membership", PlatformPct: 25, PartnerPct: 75},
}

// RateFor resolves the split for a category, falling back to the first
// configured rate for unknown categories.
func RateFor(category string) CommissionRate {
	for _, rate := range commissionRates {
		if rate.Category == category {
			return rate
		}
	}
	return commissionRates[0]
}

// CommissionSplit divides a gross amount between the platform and a partner.
// The rounding remainder goes to the partner so the two shares always sum to
// the gross amount.
type CommissionSplit struct {
	PartnerID     string
	Category      string
	Gross         int64
	PlatformShare int64
	PartnerShare  int64
}

// CalculateCommission splits amount per the configured rate table. The
// platform share rounds half-up; the partner takes the remainder.
func CalculateCommission(amount int64, partnerID, category string) CommissionSplit {
	rate := RateFor(category)
	platform := (amount*rate.PlatformPct + 50) / 100
	return CommissionSplit{
		PartnerID:     partnerID,
		Category:      category,
		Gross:         amount,
		PlatformShare: platform,
		PartnerShare:  amount - platform,
	}
}

// CommissionStatus tracks a commission entry's lifecycle. Entries start
// pending and move to paid once the partner payout settles; a refunded order
// moves its entries to refunded with the clawed-back amount recorded.
type CommissionStatus string

const (
	CommissionPending  CommissionStatus = "pending"
	CommissionPaid     CommissionStatus = "paid"
	CommissionFailed   CommissionStatus = "failed"
	CommissionRefunded CommissionStatus = "refunded"
)

// CommissionTransaction is one recorded split for an order line. NetAmount is
// what the partner is owed after the platform cut; RefundAmount is zero until
// the entry is refunded.
type CommissionTransaction struct {
	ID            uint64
	OrderNo       string
	PartnerID     string
	Category      string
	GrossAmount   int64
	PlatformShare int64
	PartnerShare  int64
	NetAmount     int64
	RefundAmount  int64
	Status        CommissionStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
