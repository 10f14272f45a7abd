package Ledger

import "github.com/shopspring/decimal"

// Contribution is what one entry adds to the amount still owed.
func (e Entry) Contribution() decimal.Decimal {
	return e.InvoiceAmount.Decimal.Sub(e.PaidAmount.Decimal)
}

// Aggregate folds invoice − paid over the entries belonging to key.
// Entries of any other (id, type) pair are skipped.
func Aggregate(key Key, entries []Entry) decimal.Decimal {
	net := decimal.Zero
	for _, e := range entries {
		if e.VendorID != key.ID || e.VendorType != key.Type {
			continue
		}
		net = net.Add(e.Contribution())
	}
	return net
}

// IndexEntries groups entries by vendor key in one pass.
func IndexEntries(entries []Entry) map[Key][]Entry {
	index := make(map[Key][]Entry)
	for _, e := range entries {
		index[e.Key()] = append(index[e.Key()], e)
	}
	return index
}

// Orphans returns the entries whose key matches none of the vendors.
func Orphans(vendors []Vendor, entries []Entry) []Entry {
	known := make(map[Key]struct{}, len(vendors))
	for _, v := range vendors {
		known[v.Key] = struct{}{}
	}
	var orphans []Entry
	for _, e := range entries {
		if _, ok := known[e.Key()]; !ok {
			orphans = append(orphans, e)
		}
	}
	return orphans
}
