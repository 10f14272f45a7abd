package Controllers

import (
	"sort"

	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceController serves balances across every vendor variant
type BalanceController struct {
	DB   *gorm.DB
	Memo *Ledger.Memo
}

// NewBalanceController creates a new BalanceController
func NewBalanceController(db *gorm.DB, memo *Ledger.Memo) *BalanceController {
	return &BalanceController{DB: db, Memo: memo}
}

// OutstandingItem is one row of GET /vendors/outstanding
type OutstandingItem struct {
	VendorID   uint              `json:"vendorId"`
	VendorType Ledger.VendorType `json:"vendorType"`
	VendorName string            `json:"vendorName"`
	Balance    decimal.Decimal   `json:"balance"`
	IsCredit   bool              `json:"isCredit"`
	Status     Ledger.Status     `json:"status"`
}

// resolveAll loads every vendor and the full ledger and resolves them together.
func (c *BalanceController) resolveAll() ([]Ledger.Vendor, map[Ledger.Key]string, map[Ledger.Key]Ledger.Balance, []Models.VendorPayment, error) {
	vendors, names, err := Models.AllLedgerVendors(c.DB)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	payments, err := Models.LedgerEntries(c.DB, nil)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	entries := Models.Entries(payments)
	index := Ledger.IndexEntries(entries)
	balances := make(map[Ledger.Key]Ledger.Balance, len(vendors))
	for _, v := range vendors {
		balances[v.Key] = c.Memo.Resolve(v, index[v.Key])
	}

	for _, orphan := range Ledger.Orphans(vendors, entries) {
		Logger.L.Warn("Ledger entry references unknown vendor",
			"payment", orphan.ID,
			"vendorId", orphan.VendorID,
			"vendorType", orphan.VendorType,
			"net", orphan.Contribution().String())
	}

	return vendors, names, balances, payments, nil
}

// Outstanding returns the resolved balance of every vendor
func (c *BalanceController) Outstanding(ctx *fiber.Ctx) error {
	vendors, names, balances, _, err := c.resolveAll()
	if err != nil {
		Logger.L.Error("Failed to compute outstanding balances", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute outstanding balances"})
	}

	response := make([]OutstandingItem, 0, len(vendors))
	for _, v := range vendors {
		b := balances[v.Key]
		response = append(response, OutstandingItem{
			VendorID:   v.ID,
			VendorType: v.Type,
			VendorName: names[v.Key],
			Balance:    b.Outstanding,
			IsCredit:   b.IsCredit,
			Status:     b.Status(),
		})
	}

	sort.Slice(response, func(i, j int) bool {
		if response[i].VendorType != response[j].VendorType {
			return response[i].VendorType < response[j].VendorType
		}
		return response[i].VendorID < response[j].VendorID
	})

	return ctx.JSON(response)
}
