package Controllers

import (
	"bytes"
	"fmt"
	"time"

	"Quarry/Logger"
	"Quarry/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Ledger"

var ledgerHeaders = []string{
	"Date", "Vendor Type", "Vendor ID", "Vendor Name", "Invoice Amount",
	"Paid Amount", "Net", "Payment Mode", "Reference", "Notes",
}

// buildLedgerWorkbook writes payment rows and a totals row to an xlsx buffer.
func buildLedgerWorkbook(payments []Models.VendorPayment) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ledgerSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(ledgerSheet, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		f.SetRowStyle(ledgerSheet, 1, 1, headerStyle)
	}

	totalInvoiced, totalPaid := decimal.Zero, decimal.Zero
	for i, p := range payments {
		row := i + 2
		net := p.InvoiceAmount.Sub(p.PaidAmount.Decimal)
		values := []interface{}{
			time.Time(p.Date).Format("2006-01-02"),
			string(p.VendorType),
			p.VendorID,
			p.VendorName,
			p.InvoiceAmount.InexactFloat64(),
			p.PaidAmount.InexactFloat64(),
			net.InexactFloat64(),
			p.PaymentMode,
			p.ReferenceNumber,
			p.Notes,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(ledgerSheet, cell, value)
		}
		totalInvoiced = totalInvoiced.Add(p.InvoiceAmount.Decimal)
		totalPaid = totalPaid.Add(p.PaidAmount.Decimal)
	}

	totalRow := len(payments) + 2
	f.SetCellValue(ledgerSheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(ledgerSheet, fmt.Sprintf("E%d", totalRow), totalInvoiced.InexactFloat64())
	f.SetCellValue(ledgerSheet, fmt.Sprintf("F%d", totalRow), totalPaid.InexactFloat64())
	f.SetCellValue(ledgerSheet, fmt.Sprintf("G%d", totalRow), totalInvoiced.Sub(totalPaid).InexactFloat64())
	if headerStyle != 0 {
		f.SetRowStyle(ledgerSheet, totalRow, totalRow, headerStyle)
	}

	f.SetColWidth(ledgerSheet, "A", "J", 16)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %v", err)
	}
	return buf, nil
}

// ExportPayments downloads the ledger (optionally one vendor's) as xlsx
func (c *PaymentController) ExportPayments(ctx *fiber.Ctx) error {
	key, err := ledgerFilter(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	payments, err := Models.LedgerEntries(c.DB, key)
	if err != nil {
		Logger.L.Error("Failed to retrieve payments for export", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch data for export"})
	}

	buf, err := buildLedgerWorkbook(payments)
	if err != nil {
		Logger.L.Error("Failed to build ledger workbook", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to write Excel file"})
	}

	fileName := fmt.Sprintf("vendor_ledger_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, "attachment; filename="+fileName)
	return ctx.Send(buf.Bytes())
}
