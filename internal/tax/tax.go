package tax

import "github.com/shopspring/decimal"

// Statutory rates applied to ticket sales in Ghana. The three levies are
// charged on the base price; VAT is charged on the levy-inclusive amount.
var (
	RateNHIL     = decimal.NewFromFloat(0.025) // National Health Insurance Levy
	RateGETFund  = decimal.NewFromFloat(0.025) // Ghana Education Trust Fund Levy
	RateCOVIDHRL = decimal.NewFromFloat(0.01)  // COVID-19 Health Recovery Levy
	RateVAT      = decimal.NewFromFloat(0.15)

	// effectiveMultiplier converts a base price straight to the
	// tax-inclusive total: (1 + levies) * (1 + VAT) = 1.06 * 1.15.
	effectiveMultiplier = decimal.NewFromInt(1).
				Add(RateNHIL).Add(RateGETFund).Add(RateCOVIDHRL).
				Mul(decimal.NewFromInt(1).Add(RateVAT))
)

// Breakdown itemizes the levies and VAT charged on a base price.
// All amounts are in major currency units (cedis).
type Breakdown struct {
	BasePrice   decimal.Decimal `json:"base_price"`
	NHIL        decimal.Decimal `json:"nhil"`
	GETFund     decimal.Decimal `json:"getfund"`
	COVIDHRL    decimal.Decimal `json:"covid_hrl"`
	TotalLevies decimal.Decimal `json:"total_levies"`
	VAT         decimal.Decimal `json:"vat"`
	Total       decimal.Decimal `json:"total"`
}

// Calculate computes the levy and VAT breakdown for a base price.
func Calculate(basePrice decimal.Decimal) Breakdown {
	nhil := basePrice.Mul(RateNHIL)
	getfund := basePrice.Mul(RateGETFund)
	covid := basePrice.Mul(RateCOVIDHRL)
	levies := nhil.Add(getfund).Add(covid)

	vat := basePrice.Add(levies).Mul(RateVAT)

	return Breakdown{
		BasePrice:   basePrice,
		NHIL:        nhil,
		GETFund:     getfund,
		COVIDHRL:    covid,
		TotalLevies: levies,
		VAT:         vat,
		Total:       basePrice.Add(levies).Add(vat),
	}
}

// BaseFromTotal recovers the base price from a tax-inclusive total.
func BaseFromTotal(total decimal.Decimal) decimal.Decimal {
	return total.Div(effectiveMultiplier)
}

// EffectiveMultiplier returns the combined levy+VAT multiplier (~1.219).
func EffectiveMultiplier() decimal.Decimal {
	return effectiveMultiplier
}
