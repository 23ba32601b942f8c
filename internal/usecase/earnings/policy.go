package earnings

import (
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/shopspring/decimal"
)

// RewardPolicy sizes an ad reward from the amount reported by the ad SDK
type RewardPolicy func(reported decimal.Decimal, session *domain.AdSession) decimal.Decimal

// ClampPolicy accepts the reported amount bounded to [0, max]
func ClampPolicy(max decimal.Decimal) RewardPolicy {
	return func(reported decimal.Decimal, _ *domain.AdSession) decimal.Decimal {
		if reported.IsNegative() {
			return decimal.Zero
		}
		return decimal.Min(reported, max)
	}
}
