package payment

import (
	"sort"

	"github.com/nyaruka/phonenumbers"
	"github.com/saradorri/edrewards/internal/domain"
)

// DiscountTier applies Percent off list prices of at least MinPrice
type DiscountTier struct {
	MinPrice int64
	Percent  int64
}

// Pricer computes the server-side price of a machine type
type Pricer struct {
	tiers []DiscountTier
}

// NewPricer creates a pricer; the highest matching tier wins
func NewPricer(tiers []DiscountTier) *Pricer {
	sorted := make([]DiscountTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPrice > sorted[j].MinPrice })
	return &Pricer{tiers: sorted}
}

// Price returns the discounted price and the applied percentage
func (p *Pricer) Price(listPrice int64) (int64, int64) {
	for _, tier := range p.tiers {
		if listPrice >= tier.MinPrice && tier.Percent > 0 {
			return listPrice - listPrice*tier.Percent/100, tier.Percent
		}
	}
	return listPrice, 0
}

// normalizePhone validates a mobile number of region and returns its national significant number
func normalizePhone(raw, region string) (string, error) {
	invalid := domain.NewAppError(domain.ErrCodeInvalidPhone, "Phone number is not a valid mobile number", 400, nil)
	if raw == "" {
		return "", invalid
	}

	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", invalid
	}
	if !phonenumbers.IsValidNumberForRegion(number, region) {
		return "", invalid
	}

	switch phonenumbers.GetNumberType(number) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return phonenumbers.GetNationalSignificantNumber(number), nil
	default:
		return "", invalid
	}
}

// NormalizePhone is normalizePhone for other packages that accept payout numbers
func NormalizePhone(raw, region string) (string, error) {
	return normalizePhone(raw, region)
}
