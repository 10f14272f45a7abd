package Controllers

import (
	"time"

	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnalyticsController handles vendor analytics endpoints
type AnalyticsController struct {
	DB       *gorm.DB
	Balances *BalanceController
	Now      func() time.Time
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(db *gorm.DB, balances *BalanceController) *AnalyticsController {
	return &AnalyticsController{DB: db, Balances: balances, Now: time.Now}
}

type TypeSummary struct {
	VendorCount int             `json:"vendorCount"`
	TotalOwed   decimal.Decimal `json:"totalOwed"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// VendorSummary is the dashboard headline
type VendorSummary struct {
	VendorCount   int                                `json:"vendorCount"`
	TotalOwed     decimal.Decimal                    `json:"totalOwed"`
	TotalCredit   decimal.Decimal                    `json:"totalCredit"`
	NetBalance    decimal.Decimal                    `json:"netBalance"`
	TotalInvoiced decimal.Decimal                    `json:"totalInvoiced"`
	TotalPaid     decimal.Decimal                    `json:"totalPaid"`
	ByType        map[Ledger.VendorType]*TypeSummary `json:"byType"`
}

// Summary returns owed and credit totals across all vendors
func (c *AnalyticsController) Summary(ctx *fiber.Ctx) error {
	vendors, _, balances, payments, err := c.Balances.resolveAll()
	if err != nil {
		Logger.L.Error("Failed to build vendor summary", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build vendor summary"})
	}

	summary := VendorSummary{
		TotalOwed:     decimal.Zero,
		TotalCredit:   decimal.Zero,
		NetBalance:    decimal.Zero,
		TotalInvoiced: decimal.Zero,
		TotalPaid:     decimal.Zero,
		ByType:        make(map[Ledger.VendorType]*TypeSummary, len(Ledger.VendorTypes)),
	}
	for _, t := range Ledger.VendorTypes {
		summary.ByType[t] = &TypeSummary{TotalOwed: decimal.Zero, TotalCredit: decimal.Zero}
	}

	for _, v := range vendors {
		b := balances[v.Key]
		byType := summary.ByType[v.Type]
		byType.VendorCount++
		summary.VendorCount++
		summary.NetBalance = summary.NetBalance.Add(b.Outstanding)
		if b.IsCredit {
			summary.TotalCredit = summary.TotalCredit.Add(b.Outstanding.Abs())
			byType.TotalCredit = byType.TotalCredit.Add(b.Outstanding.Abs())
		} else {
			summary.TotalOwed = summary.TotalOwed.Add(b.Outstanding)
			byType.TotalOwed = byType.TotalOwed.Add(b.Outstanding)
		}
	}

	for _, p := range payments {
		summary.TotalInvoiced = summary.TotalInvoiced.Add(p.InvoiceAmount.Decimal)
		summary.TotalPaid = summary.TotalPaid.Add(p.PaidAmount.Decimal)
	}

	return ctx.JSON(summary)
}

type MonthlyData struct {
	Month    string          `json:"month"`
	Invoiced decimal.Decimal `json:"invoiced"`
	Paid     decimal.Decimal `json:"paid"`
	Net      decimal.Decimal `json:"net"`
}

// MonthlyLedger returns invoiced, paid and net per month for the last 12 months
func (c *AnalyticsController) MonthlyLedger(ctx *fiber.Ctx) error {
	now := c.Now()
	endDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	startDate := endDate.AddDate(-1, 0, 0)

	var payments []Models.VendorPayment
	if err := c.DB.Where("date >= ? AND date < ?", startDate, endDate).Find(&payments).Error; err != nil {
		Logger.L.Error("Failed to retrieve payments", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}

	// One bucket per month, oldest first, including empty months.
	response := make([]MonthlyData, 0, 12)
	buckets := make(map[string]int, 12)
	for i := 0; i < 12; i++ {
		month := startDate.AddDate(0, i, 0)
		buckets[month.Format("2006-01")] = i
		response = append(response, MonthlyData{
			Month:    month.Format("Jan 2006"),
			Invoiced: decimal.Zero,
			Paid:     decimal.Zero,
			Net:      decimal.Zero,
		})
	}

	for _, p := range payments {
		i, ok := buckets[time.Time(p.Date).Format("2006-01")]
		if !ok {
			continue
		}
		data := &response[i]
		data.Invoiced = data.Invoiced.Add(p.InvoiceAmount.Decimal)
		data.Paid = data.Paid.Add(p.PaidAmount.Decimal)
		data.Net = data.Invoiced.Sub(data.Paid)
	}

	return ctx.JSON(response)
}
