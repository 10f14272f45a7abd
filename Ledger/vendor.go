// Package Ledger computes how much is owed to each vendor.
//
// Every function here is pure: no I/O, no clock, no shared state. Persistence and transport
// live in Models and Client and convert their records into these types before calling in.
package Ledger

import (
	"fmt"
	"strings"
	"time"
)

// VendorType is the tag of the vendor variant.
type VendorType string

const (
	Transport VendorType = "transport"
	Labour    VendorType = "labour"
	Explosive VendorType = "explosive"
)

// VendorTypes lists every variant in display order.
var VendorTypes = []VendorType{Transport, Labour, Explosive}

// ParseVendorType accepts the path segment used by the API ("transport", "Labour", ...).
func ParseVendorType(s string) (VendorType, error) {
	t := VendorType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown vendor type %q", s)
	}
	return t, nil
}

func (t VendorType) Valid() bool {
	switch t {
	case Transport, Labour, Explosive:
		return true
	}
	return false
}

// Label is the human name of the variant.
func (t VendorType) Label() string {
	switch t {
	case Transport:
		return "Transport Vendor"
	case Labour:
		return "Labour Contractor"
	case Explosive:
		return "Explosive Supplier"
	}
	return string(t)
}

// Key identifies a vendor across collections. Ids are only unique within a type.
type Key struct {
	ID   uint       `json:"vendorId"`
	Type VendorType `json:"vendorType"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Type, k.ID)
}

// VehicleRate is one vehicle on a transport vendor's contract.
type VehicleRate struct {
	VehicleNo   string `json:"vehicleNo,omitempty"`
	RatePerTrip Money  `json:"ratePerTrip"`
	PadiKasu    Money  `json:"padiKasu"`
}

// WorkContract is one agreed labour term.
type WorkContract struct {
	RateType    string `json:"rateType,omitempty"`
	AgreedRate  Money  `json:"agreedRate"`
	LabourCount Money  `json:"labourCount"`
}

// Vendor is the tagged variant. Only the line slice matching Key.Type is read;
// the other one is ignored even when populated.
type Vendor struct {
	Key
	Name           string         `json:"name"`
	CompanyName    string         `json:"companyName,omitempty"`
	OpeningBalance Money          `json:"openingBalance"`
	AdvancePaid    Money          `json:"advancePaid"`
	Vehicles       []VehicleRate  `json:"vehicles,omitempty"`
	Contracts      []WorkContract `json:"contracts,omitempty"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Entry is one recorded invoice/payment event.
type Entry struct {
	ID            uint       `json:"id"`
	VendorID      uint       `json:"vendorId"`
	VendorType    VendorType `json:"vendorType"`
	InvoiceAmount Money      `json:"invoiceAmount"`
	PaidAmount    Money      `json:"paidAmount"`
}

func (e Entry) Key() Key {
	return Key{ID: e.VendorID, Type: e.VendorType}
}
