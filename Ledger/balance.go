package Ledger

import "github.com/shopspring/decimal"

// Status is how a balance should be presented.
type Status string

const (
	StatusOwed        Status = "owed"
	StatusCredit      Status = "credit"
	StatusSettled     Status = "settled"
	StatusUnavailable Status = "unavailable"
)

// Balance is the resolved position of one vendor. Outstanding is never clamped:
// a negative value means the vendor holds credit.
type Balance struct {
	Key
	ContractTotal     decimal.Decimal `json:"contractTotal"`
	OpeningBalance    decimal.Decimal `json:"openingBalance"`
	AdvancePaid       decimal.Decimal `json:"advancePaid"`
	LedgerNet         decimal.Decimal `json:"ledgerNet"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	IsCredit          bool            `json:"isCredit"`
	LedgerUnavailable bool            `json:"ledgerUnavailable,omitempty"`
}

// Resolve computes
//
//	outstanding = contract total + opening balance − advance paid + ledger net
//
// using only the entries that belong to v.
func Resolve(v Vendor, entries []Entry) Balance {
	b := ResolvePartial(v)
	b.LedgerNet = Aggregate(v.Key, entries)
	b.Outstanding = b.Outstanding.Add(b.LedgerNet)
	b.IsCredit = b.Outstanding.IsNegative()
	b.LedgerUnavailable = false
	return b
}

// ResolvePartial is the figure shown when the ledger could not be loaded.
// LedgerNet stays zero and the result is marked unavailable rather than complete.
func ResolvePartial(v Vendor) Balance {
	b := Balance{
		Key:            v.Key,
		ContractTotal:  Valuate(v),
		OpeningBalance: v.OpeningBalance.Decimal,
		AdvancePaid:    v.AdvancePaid.Decimal,
		LedgerNet:      decimal.Zero,
	}
	b.Outstanding = b.ContractTotal.Add(b.OpeningBalance).Sub(b.AdvancePaid)
	b.IsCredit = b.Outstanding.IsNegative()
	b.LedgerUnavailable = true
	return b
}

// ResolveAll resolves every vendor against one ledger and returns the entries
// that matched no vendor.
func ResolveAll(vendors []Vendor, entries []Entry) (map[Key]Balance, []Entry) {
	index := IndexEntries(entries)
	balances := make(map[Key]Balance, len(vendors))
	for _, v := range vendors {
		balances[v.Key] = Resolve(v, index[v.Key])
	}
	return balances, Orphans(vendors, entries)
}

// Status classifies the balance for display.
func (b Balance) Status() Status {
	switch {
	case b.LedgerUnavailable:
		return StatusUnavailable
	case b.Outstanding.IsNegative():
		return StatusCredit
	case b.Outstanding.IsZero():
		return StatusSettled
	default:
		return StatusOwed
	}
}
