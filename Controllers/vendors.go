package Controllers

import (
	"errors"
	"strconv"

	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VendorController handles the per-variant vendor endpoints
type VendorController struct {
	DB   *gorm.DB
	Memo *Ledger.Memo
}

// NewVendorController creates a new VendorController
func NewVendorController(db *gorm.DB, memo *Ledger.Memo) *VendorController {
	return &VendorController{DB: db, Memo: memo}
}

type VehicleInput struct {
	VehicleNo   string       `json:"vehicleNo" validate:"max=50"`
	RatePerTrip Ledger.Money `json:"ratePerTrip" validate:"gte=0,lte=1e15"`
	PadiKasu    Ledger.Money `json:"padiKasu" validate:"gte=0,lte=1e15"`
}

type ContractInput struct {
	RateType    string       `json:"rateType" validate:"max=50"`
	AgreedRate  Ledger.Money `json:"agreedRate" validate:"gte=0,lte=1e15"`
	LabourCount Ledger.Money `json:"labourCount" validate:"gte=0,lte=1e9"`
}

// VendorInput is the create/update body for every variant. Lines that do not
// belong to the variant in the path are ignored.
type VendorInput struct {
	Name           string          `json:"name" validate:"required,max=255"`
	CompanyName    string          `json:"companyName" validate:"max=255"`
	Phone          string          `json:"phone" validate:"max=50"`
	OpeningBalance Ledger.Money    `json:"openingBalance" validate:"gte=-1e15,lte=1e15"`
	AdvancePaid    Ledger.Money    `json:"advancePaid" validate:"gte=0,lte=1e15"`
	LicenseNo      string          `json:"licenseNo" validate:"max=100"`
	Vehicles       []VehicleInput  `json:"vehicles" validate:"dive"`
	Contracts      []ContractInput `json:"contracts" validate:"dive"`
}

func (in VendorInput) profile() Models.VendorProfile {
	return Models.VendorProfile{
		Name:           in.Name,
		CompanyName:    in.CompanyName,
		Phone:          in.Phone,
		OpeningBalance: in.OpeningBalance,
		AdvancePaid:    in.AdvancePaid,
	}
}

func (in VendorInput) vehicles() []Models.VehicleRate {
	rows := make([]Models.VehicleRate, 0, len(in.Vehicles))
	for _, v := range in.Vehicles {
		rows = append(rows, Models.VehicleRate{VehicleNo: v.VehicleNo, RatePerTrip: v.RatePerTrip, PadiKasu: v.PadiKasu})
	}
	return rows
}

func (in VendorInput) contracts() []Models.WorkContract {
	rows := make([]Models.WorkContract, 0, len(in.Contracts))
	for _, c := range in.Contracts {
		rows = append(rows, Models.WorkContract{RateType: c.RateType, AgreedRate: c.AgreedRate, LabourCount: c.LabourCount})
	}
	return rows
}

func (in VendorInput) record(t Ledger.VendorType) Models.VendorRecord {
	switch t {
	case Ledger.Transport:
		return &Models.TransportVendor{VendorProfile: in.profile(), Vehicles: in.vehicles()}
	case Ledger.Labour:
		return &Models.LabourContractor{VendorProfile: in.profile(), Contracts: in.contracts()}
	default:
		return &Models.ExplosiveSupplier{VendorProfile: in.profile(), LicenseNo: in.LicenseNo}
	}
}

// VendorWithBalance pairs a stored vendor with its resolved balance
type VendorWithBalance struct {
	Vendor  Models.VendorRecord `json:"vendor"`
	Balance Ledger.Balance      `json:"balance"`
	Status  Ledger.Status       `json:"status"`
}

func vendorTypeParam(ctx *fiber.Ctx) (Ledger.VendorType, error) {
	return Ledger.ParseVendorType(ctx.Params("type"))
}

func vendorKeyParams(ctx *fiber.Ctx) (Ledger.Key, error) {
	t, err := vendorTypeParam(ctx)
	if err != nil {
		return Ledger.Key{}, err
	}
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return Ledger.Key{}, errors.New("Invalid vendor ID")
	}
	return Ledger.Key{ID: uint(id), Type: t}, nil
}

func (c *VendorController) findVendor(ctx *fiber.Ctx) (Models.VendorRecord, error) {
	key, err := vendorKeyParams(ctx)
	if err != nil {
		return nil, badRequest(ctx, err.Error())
	}
	record, err := Models.FindVendor(c.DB, key)
	if err != nil {
		if errors.Is(err, Models.ErrVendorNotFound) {
			return nil, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
		}
		Logger.L.Error("Failed to fetch vendor", "vendor", key.String(), "error", err)
		return nil, ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch vendor"})
	}
	return record, nil
}

// GetVendors lists the vendors of one variant with their balances
func (c *VendorController) GetVendors(ctx *fiber.Ctx) error {
	t, err := vendorTypeParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	records, err := Models.ListVendors(c.DB, t)
	if err != nil {
		Logger.L.Error("Failed to retrieve vendors", "type", t, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve vendors"})
	}

	payments, err := Models.LedgerEntriesOfType(c.DB, t)
	if err != nil {
		Logger.L.Error("Failed to retrieve ledger", "type", t, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve ledger"})
	}
	index := Ledger.IndexEntries(Models.Entries(payments))

	response := make([]VendorWithBalance, 0, len(records))
	for _, record := range records {
		lv := record.ToLedger()
		balance := c.Memo.Resolve(lv, index[lv.Key])
		response = append(response, VendorWithBalance{Vendor: record, Balance: balance, Status: balance.Status()})
	}

	return ctx.JSON(response)
}

// GetVendor retrieves a single vendor with its contract lines
func (c *VendorController) GetVendor(ctx *fiber.Ctx) error {
	record, err := c.findVendor(ctx)
	if record == nil {
		return err
	}
	return ctx.JSON(record)
}

// CreateVendor creates a vendor of the variant in the path
func (c *VendorController) CreateVendor(ctx *fiber.Ctx) error {
	t, err := vendorTypeParam(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var input VendorInput
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, err.Error())
	}
	if fields := validateInput(input); fields != nil {
		return invalidInput(ctx, fields)
	}

	record := input.record(t)
	if err := c.DB.Create(record).Error; err != nil {
		Logger.L.Error("Failed to create vendor", "type", t, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create vendor"})
	}

	Logger.L.Info("Vendor created", "vendor", record.ToLedger().Key.String(), "name", input.Name)
	return ctx.Status(fiber.StatusCreated).JSON(record)
}

// UpdateVendor updates the profile and replaces the contract lines
func (c *VendorController) UpdateVendor(ctx *fiber.Ctx) error {
	record, err := c.findVendor(ctx)
	if record == nil {
		return err
	}

	var input VendorInput
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, err.Error())
	}
	if fields := validateInput(input); fields != nil {
		return invalidInput(ctx, fields)
	}

	profile := record.Profile()
	if input.AdvancePaid.LessThan(profile.AdvancePaid.Decimal) {
		return badRequest(ctx, "advancePaid cannot decrease")
	}

	*profile = input.profile()
	if supplier, ok := record.(*Models.ExplosiveSupplier); ok {
		supplier.LicenseNo = input.LicenseNo
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(record).Error; err != nil {
			return err
		}
		switch r := record.(type) {
		case *Models.TransportVendor:
			return Models.ReplaceVehicles(tx, r.ID, input.vehicles())
		case *Models.LabourContractor:
			return Models.ReplaceContracts(tx, r.ID, input.contracts())
		}
		return nil
	})
	if err != nil {
		Logger.L.Error("Failed to update vendor", "vendor", record.ToLedger().Key.String(), "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update vendor"})
	}

	updated, err := Models.FindVendor(c.DB, record.ToLedger().Key)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reload vendor"})
	}
	return ctx.JSON(updated)
}

// DeleteVendor soft deletes a vendor. Its ledger rows stay and are reported as orphans.
func (c *VendorController) DeleteVendor(ctx *fiber.Ctx) error {
	record, err := c.findVendor(ctx)
	if record == nil {
		return err
	}

	key := record.ToLedger().Key
	if err := c.DB.Delete(record).Error; err != nil {
		Logger.L.Error("Failed to delete vendor", "vendor", key.String(), "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete vendor"})
	}

	var remaining int64
	err = c.DB.Model(&Models.VendorPayment{}).Where("vendor_id = ? AND vendor_type = ?", key.ID, key.Type).Count(&remaining).Error
	if err != nil {
		Logger.L.Error("Failed to count ledger entries of deleted vendor", "vendor", key.String(), "error", err)
	} else if remaining > 0 {
		Logger.L.Warn("Deleted vendor still has ledger entries", "vendor", key.String(), "entries", remaining)
	}

	return ctx.JSON(fiber.Map{"message": "Vendor deleted successfully"})
}

// GetVendorBalance returns the full balance breakdown for one vendor
func (c *VendorController) GetVendorBalance(ctx *fiber.Ctx) error {
	record, err := c.findVendor(ctx)
	if record == nil {
		return err
	}

	lv := record.ToLedger()
	payments, err := Models.LedgerEntries(c.DB, &lv.Key)
	if err != nil {
		// The ledger is part of the balance; without it we report unavailable, not zero.
		Logger.L.Error("Failed to load ledger for balance", "vendor", lv.Key.String(), "error", err)
		partial := Ledger.ResolvePartial(lv)
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "Ledger unavailable",
			"balance": partial,
			"status":  partial.Status(),
		})
	}

	balance := c.Memo.Resolve(lv, Models.Entries(payments))
	return ctx.JSON(fiber.Map{
		"name":    lv.Name,
		"balance": balance,
		"status":  balance.Status(),
	})
}

type AdvanceInput struct {
	Amount Ledger.Money `json:"amount" validate:"gt=0,lte=1e15"`
	Notes  string       `json:"notes" validate:"max=2000"`
}

// RecordAdvance adds to a vendor's advance paid. Advances are never reduced here.
func (c *VendorController) RecordAdvance(ctx *fiber.Ctx) error {
	record, err := c.findVendor(ctx)
	if record == nil {
		return err
	}

	var input AdvanceInput
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, err.Error())
	}
	if fields := validateInput(input); fields != nil {
		return invalidInput(ctx, fields)
	}

	key := record.ToLedger().Key
	total, err := Models.AddAdvance(c.DB, key, input.Amount.Decimal)
	if err != nil {
		if errors.Is(err, Models.ErrVendorNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
		}
		Logger.L.Error("Failed to record advance", "vendor", key.String(), "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record advance"})
	}

	Logger.L.Info("Advance recorded", "vendor", key.String(), "amount", input.Amount.String(), "notes", input.Notes)
	return ctx.JSON(fiber.Map{
		"advancePaid": total,
		"added":       input.Amount,
	})
}
