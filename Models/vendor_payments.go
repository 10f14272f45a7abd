package Models

import (
	"Quarry/Ledger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VendorPayment is one ledger entry. It references its vendor by (vendor_id, vendor_type)
// because ids repeat across the vendor tables. Rows are never edited, only deleted.
type VendorPayment struct {
	gorm.Model
	VendorID        uint              `json:"vendorId" gorm:"not null;index:idx_vendor_payments_vendor,priority:1"`
	VendorType      Ledger.VendorType `json:"vendorType" gorm:"type:varchar(20);not null;index:idx_vendor_payments_vendor,priority:2"`
	VendorName      string            `json:"vendorName" gorm:"size:255"`
	Date            datatypes.Date    `json:"date" gorm:"not null;index"`
	InvoiceAmount   Ledger.Money      `json:"invoiceAmount" gorm:"type:decimal(20,2);not null;default:0"`
	PaidAmount      Ledger.Money      `json:"paidAmount" gorm:"type:decimal(20,2);not null;default:0"`
	PaymentMode     string            `json:"paymentMode" gorm:"size:30"`
	ReferenceNumber string            `json:"referenceNumber" gorm:"size:100"`
	Notes           string            `json:"notes" gorm:"type:text"`
}

func (p VendorPayment) VendorKey() Ledger.Key {
	return Ledger.Key{ID: p.VendorID, Type: p.VendorType}
}

func (p VendorPayment) Entry() Ledger.Entry {
	return Ledger.Entry{
		ID:            p.ID,
		VendorID:      p.VendorID,
		VendorType:    p.VendorType,
		InvoiceAmount: p.InvoiceAmount,
		PaidAmount:    p.PaidAmount,
	}
}

// Entries converts payment rows for the engine.
func Entries(payments []VendorPayment) []Ledger.Entry {
	entries := make([]Ledger.Entry, 0, len(payments))
	for _, p := range payments {
		entries = append(entries, p.Entry())
	}
	return entries
}
