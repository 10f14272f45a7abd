package Models

import (
	"errors"
	"fmt"

	"Quarry/Ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrVendorNotFound    = errors.New("vendor not found")
	ErrUnknownVendorType = errors.New("unknown vendor type")
)

// ListVendors loads every vendor of one variant with its contract lines.
func ListVendors(db *gorm.DB, t Ledger.VendorType) ([]VendorRecord, error) {
	var records []VendorRecord
	switch t {
	case Ledger.Transport:
		var vendors []TransportVendor
		if err := db.Preload("Vehicles").Order("name").Find(&vendors).Error; err != nil {
			return nil, fmt.Errorf("list transport vendors: %w", err)
		}
		for i := range vendors {
			records = append(records, &vendors[i])
		}
	case Ledger.Labour:
		var contractors []LabourContractor
		if err := db.Preload("Contracts").Order("name").Find(&contractors).Error; err != nil {
			return nil, fmt.Errorf("list labour contractors: %w", err)
		}
		for i := range contractors {
			records = append(records, &contractors[i])
		}
	case Ledger.Explosive:
		var suppliers []ExplosiveSupplier
		if err := db.Order("name").Find(&suppliers).Error; err != nil {
			return nil, fmt.Errorf("list explosive suppliers: %w", err)
		}
		for i := range suppliers {
			records = append(records, &suppliers[i])
		}
	default:
		return nil, ErrUnknownVendorType
	}
	return records, nil
}

// FindVendor loads one vendor by its composite key.
func FindVendor(db *gorm.DB, key Ledger.Key) (VendorRecord, error) {
	record, err := NewVendorRecord(key.Type)
	if err != nil {
		return nil, err
	}

	query := db
	switch key.Type {
	case Ledger.Transport:
		query = query.Preload("Vehicles")
	case Ledger.Labour:
		query = query.Preload("Contracts")
	}

	if err := query.First(record, key.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("find vendor %s: %w", key, err)
	}
	return record, nil
}

// AddAdvance raises a vendor's advance paid by amount and returns the new total.
// The sum is taken in decimal on a locked row; sqlite would add NUMERIC columns as floats.
func AddAdvance(db *gorm.DB, key Ledger.Key, amount decimal.Decimal) (Ledger.Money, error) {
	var total Ledger.Money
	err := db.Transaction(func(tx *gorm.DB) error {
		record, err := NewVendorRecord(key.Type)
		if err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(record, key.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVendorNotFound
			}
			return fmt.Errorf("lock vendor %s: %w", key, err)
		}
		total = Ledger.Money{Decimal: record.Profile().AdvancePaid.Add(amount)}
		if err := tx.Model(record).Update("advance_paid", total).Error; err != nil {
			return fmt.Errorf("update advance of %s: %w", key, err)
		}
		return nil
	})
	return total, err
}

// AllLedgerVendors loads every vendor of every variant in engine form.
func AllLedgerVendors(db *gorm.DB) ([]Ledger.Vendor, map[Ledger.Key]string, error) {
	var vendors []Ledger.Vendor
	names := make(map[Ledger.Key]string)
	for _, t := range Ledger.VendorTypes {
		records, err := ListVendors(db, t)
		if err != nil {
			return nil, nil, err
		}
		for _, r := range records {
			lv := r.ToLedger()
			vendors = append(vendors, lv)
			names[lv.Key] = lv.Name
		}
	}
	return vendors, names, nil
}

// LedgerEntries loads payment rows, newest first. A nil key loads the whole ledger.
func LedgerEntries(db *gorm.DB, key *Ledger.Key) ([]VendorPayment, error) {
	var payments []VendorPayment
	query := db.Model(&VendorPayment{})
	if key != nil {
		query = query.Where("vendor_id = ? AND vendor_type = ?", key.ID, key.Type)
	}
	if err := query.Order("date DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("load ledger entries: %w", err)
	}
	return payments, nil
}

// ReplaceVehicles swaps a transport vendor's vehicle rows inside tx.
func ReplaceVehicles(tx *gorm.DB, vendorID uint, vehicles []VehicleRate) error {
	if err := tx.Unscoped().Where("transport_vendor_id = ?", vendorID).Delete(&VehicleRate{}).Error; err != nil {
		return err
	}
	if len(vehicles) == 0 {
		return nil
	}
	for i := range vehicles {
		vehicles[i].ID = 0
		vehicles[i].TransportVendorID = vendorID
	}
	return tx.Create(&vehicles).Error
}

// ReplaceContracts swaps a labour contractor's work contract rows inside tx.
func ReplaceContracts(tx *gorm.DB, contractorID uint, contracts []WorkContract) error {
	if err := tx.Unscoped().Where("labour_contractor_id = ?", contractorID).Delete(&WorkContract{}).Error; err != nil {
		return err
	}
	if len(contracts) == 0 {
		return nil
	}
	for i := range contracts {
		contracts[i].ID = 0
		contracts[i].LabourContractorID = contractorID
	}
	return tx.Create(&contracts).Error
}

// LedgerEntriesOfType loads the ledger rows of one vendor variant.
func LedgerEntriesOfType(db *gorm.DB, t Ledger.VendorType) ([]VendorPayment, error) {
	var payments []VendorPayment
	if err := db.Where("vendor_type = ?", t).Order("date DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("load %s ledger entries: %w", t, err)
	}
	return payments, nil
}
