package paystack

import "github.com/shopspring/decimal"

// minorUnitFactor converts cedis to pesewas.
var minorUnitFactor = decimal.NewFromInt(100)

// CedisToPesewas converts a major-unit amount to the integer minor unit
// the gateway expects, rounding to the nearest pesewa.
func CedisToPesewas(cedis decimal.Decimal) int64 {
	return cedis.Mul(minorUnitFactor).Round(0).IntPart()
}

// PesewasToCedis converts an integer minor-unit amount back to cedis.
func PesewasToCedis(pesewas int64) decimal.Decimal {
	return decimal.NewFromInt(pesewas).Div(minorUnitFactor)
}
