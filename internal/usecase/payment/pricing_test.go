package payment

import (
	"testing"

	"github.com/saradorri/edrewards/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPricer(t *testing.T) {
	pricer := NewPricer([]DiscountTier{
		{MinPrice: 200000, Percent: 10},
		{MinPrice: 50000, Percent: 5},
	})

	tests := []struct {
		name         string
		listPrice    int64
		wantPrice    int64
		wantDiscount int64
	}{
		{name: "Below_All_Tiers", listPrice: 10000, wantPrice: 10000, wantDiscount: 0},
		{name: "Exactly_First_Tier", listPrice: 50000, wantPrice: 47500, wantDiscount: 5},
		{name: "Between_Tiers", listPrice: 100000, wantPrice: 95000, wantDiscount: 5},
		{name: "Highest_Tier_Wins", listPrice: 250000, wantPrice: 225000, wantDiscount: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, discount := pricer.Price(tt.listPrice)
			assert.Equal(t, tt.wantPrice, price)
			assert.Equal(t, tt.wantDiscount, discount)
		})
	}
}

func TestPricerWithoutTiers(t *testing.T) {
	price, discount := NewPricer(nil).Price(100000)
	assert.Equal(t, int64(100000), price)
	assert.Equal(t, int64(0), discount)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "National_Mobile", raw: "677123456", want: "677123456"},
		{name: "International_Format", raw: "+237 677 12 34 56", want: "677123456"},
		{name: "Empty", raw: "", wantErr: true},
		{name: "Too_Short", raw: "12345", wantErr: true},
		{name: "Letters", raw: "not-a-number", wantErr: true},
		{name: "Other_Region", raw: "+33612345678", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, "CM")
			if tt.wantErr {
				assert.True(t, domain.HasCode(err, domain.ErrCodeInvalidPhone), "got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
