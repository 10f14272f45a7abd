package Models

import (
	"Quarry/Ledger"

	"gorm.io/gorm"
)

// VendorProfile holds the fields every vendor variant shares.
type VendorProfile struct {
	Name           string       `json:"name" gorm:"not null;index" validate:"required,max=255"`
	CompanyName    string       `json:"companyName" gorm:"size:255"`
	Phone          string       `json:"phone" gorm:"size:50"`
	OpeningBalance Ledger.Money `json:"openingBalance" gorm:"type:decimal(20,2);not null;default:0"`
	AdvancePaid    Ledger.Money `json:"advancePaid" gorm:"type:decimal(20,2);not null;default:0"`
}

// TransportVendor supplies trucks and tippers at a per-trip rate.
type TransportVendor struct {
	gorm.Model
	VendorProfile
	Vehicles []VehicleRate `json:"vehicles" gorm:"foreignKey:TransportVendorID;constraint:OnDelete:CASCADE"`
}

type VehicleRate struct {
	gorm.Model
	TransportVendorID uint         `json:"transportVendorId" gorm:"not null;index"`
	VehicleNo         string       `json:"vehicleNo" gorm:"size:50"`
	RatePerTrip       Ledger.Money `json:"ratePerTrip" gorm:"type:decimal(20,2);not null;default:0"`
	PadiKasu          Ledger.Money `json:"padiKasu" gorm:"type:decimal(20,2);not null;default:0"`
}

// LabourContractor supplies crews under one or more work contracts.
type LabourContractor struct {
	gorm.Model
	VendorProfile
	Contracts []WorkContract `json:"contracts" gorm:"foreignKey:LabourContractorID;constraint:OnDelete:CASCADE"`
}

type WorkContract struct {
	gorm.Model
	LabourContractorID uint         `json:"labourContractorId" gorm:"not null;index"`
	RateType           string       `json:"rateType" gorm:"size:50"` // daily, weekly, per_ton, ...
	AgreedRate         Ledger.Money `json:"agreedRate" gorm:"type:decimal(20,2);not null;default:0"`
	LabourCount        Ledger.Money `json:"labourCount" gorm:"type:decimal(12,2);not null;default:0"`
}

// ExplosiveSupplier carries no contract lines.
type ExplosiveSupplier struct {
	gorm.Model
	VendorProfile
	LicenseNo string `json:"licenseNo" gorm:"size:100"`
}

// VendorRecord is any persisted vendor variant.
type VendorRecord interface {
	VendorType() Ledger.VendorType
	GetID() uint
	Profile() *VendorProfile
	ToLedger() Ledger.Vendor
}

func (v *TransportVendor) VendorType() Ledger.VendorType   { return Ledger.Transport }
func (v *LabourContractor) VendorType() Ledger.VendorType  { return Ledger.Labour }
func (v *ExplosiveSupplier) VendorType() Ledger.VendorType { return Ledger.Explosive }

func (v *TransportVendor) GetID() uint   { return v.ID }
func (v *LabourContractor) GetID() uint  { return v.ID }
func (v *ExplosiveSupplier) GetID() uint { return v.ID }

func (v *TransportVendor) Profile() *VendorProfile   { return &v.VendorProfile }
func (v *LabourContractor) Profile() *VendorProfile  { return &v.VendorProfile }
func (v *ExplosiveSupplier) Profile() *VendorProfile { return &v.VendorProfile }

func (v *TransportVendor) ToLedger() Ledger.Vendor {
	lv := v.VendorProfile.ledgerVendor(v.Model, Ledger.Transport)
	lv.Vehicles = make([]Ledger.VehicleRate, 0, len(v.Vehicles))
	for _, vehicle := range v.Vehicles {
		lv.Vehicles = append(lv.Vehicles, Ledger.VehicleRate{
			VehicleNo:   vehicle.VehicleNo,
			RatePerTrip: vehicle.RatePerTrip,
			PadiKasu:    vehicle.PadiKasu,
		})
	}
	return lv
}

func (v *LabourContractor) ToLedger() Ledger.Vendor {
	lv := v.VendorProfile.ledgerVendor(v.Model, Ledger.Labour)
	lv.Contracts = make([]Ledger.WorkContract, 0, len(v.Contracts))
	for _, contract := range v.Contracts {
		lv.Contracts = append(lv.Contracts, Ledger.WorkContract{
			RateType:    contract.RateType,
			AgreedRate:  contract.AgreedRate,
			LabourCount: contract.LabourCount,
		})
	}
	return lv
}

func (v *ExplosiveSupplier) ToLedger() Ledger.Vendor {
	return v.VendorProfile.ledgerVendor(v.Model, Ledger.Explosive)
}

func (p VendorProfile) ledgerVendor(m gorm.Model, t Ledger.VendorType) Ledger.Vendor {
	return Ledger.Vendor{
		Key:            Ledger.Key{ID: m.ID, Type: t},
		Name:           p.Name,
		CompanyName:    p.CompanyName,
		OpeningBalance: p.OpeningBalance,
		AdvancePaid:    p.AdvancePaid,
		UpdatedAt:      m.UpdatedAt,
	}
}

// NewVendorRecord returns an empty record of the given variant, ready for binding.
func NewVendorRecord(t Ledger.VendorType) (VendorRecord, error) {
	switch t {
	case Ledger.Transport:
		return &TransportVendor{}, nil
	case Ledger.Labour:
		return &LabourContractor{}, nil
	case Ledger.Explosive:
		return &ExplosiveSupplier{}, nil
	}
	return nil, ErrUnknownVendorType
}
