package Ledger

import "github.com/shopspring/decimal"

// Valuate returns the agreed value of a vendor's contract lines.
//
// Transport rates are per trip and are summed once per vehicle; trip history is not consulted.
// Explosive suppliers and unknown tags value at zero.
func Valuate(v Vendor) decimal.Decimal {
	total := decimal.Zero
	switch v.Type {
	case Transport:
		for _, vehicle := range v.Vehicles {
			total = total.Add(vehicle.RatePerTrip.Decimal).Add(vehicle.PadiKasu.Decimal)
		}
	case Labour:
		for _, contract := range v.Contracts {
			total = total.Add(contract.AgreedRate.Decimal.Mul(contract.LabourCount.Decimal))
		}
	}
	return total
}
