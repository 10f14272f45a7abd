package Controllers

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// importRow is one spreadsheet row. The amount cells are kept raw for strict checking.
type importRow struct {
	Row         int
	Input       CreatePaymentInput
	InvoiceCell string
	PaidCell    string
}

// RowError points at a spreadsheet row that could not be imported.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

var requiredImportHeaders = []string{"Date", "Vendor Type", "Vendor ID", "Invoice Amount", "Paid Amount"}

// parseLedgerWorkbook reads rows laid out like the export. Columns are matched by header,
// blank rows and the trailing Total row are skipped.
func parseLedgerWorkbook(r io.Reader) ([]importRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %v", err)
	}
	defer f.Close()

	sheet := ledgerSheet
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.TrimSpace(header)] = i
	}
	for _, header := range requiredImportHeaders {
		if _, ok := columns[header]; !ok {
			return nil, fmt.Errorf("missing column %q", header)
		}
	}

	cell := func(row []string, header string) string {
		i, ok := columns[header]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var parsed []importRow
	for i, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "Total") {
			continue
		}
		id, _ := strconv.ParseUint(cell(row, "Vendor ID"), 10, 64)
		invoice, paid := cell(row, "Invoice Amount"), cell(row, "Paid Amount")
		parsed = append(parsed, importRow{
			Row: i + 2,
			Input: CreatePaymentInput{
				VendorID:        uint(id),
				VendorType:      cell(row, "Vendor Type"),
				VendorName:      cell(row, "Vendor Name"),
				Date:            cell(row, "Date"),
				InvoiceAmount:   Ledger.NewMoney(invoice),
				PaidAmount:      Ledger.NewMoney(paid),
				PaymentMode:     cell(row, "Payment Mode"),
				ReferenceNumber: cell(row, "Reference"),
				Notes:           cell(row, "Notes"),
			},
			InvoiceCell: invoice,
			PaidCell:    paid,
		})
	}
	return parsed, nil
}

// checkAmounts rejects amount cells that are filled in but not numbers.
// Money alone would read a typo as zero.
func (r importRow) checkAmounts() error {
	for _, c := range []struct{ name, value string }{
		{"Invoice Amount", r.InvoiceCell},
		{"Paid Amount", r.PaidCell},
	} {
		if c.value == "" {
			continue
		}
		if _, err := decimal.NewFromString(c.value); err != nil {
			return fmt.Errorf("%s %q is not a number", c.name, c.value)
		}
	}
	return nil
}

// ImportPayments books every row of an uploaded xlsx ledger, or none of them
func (c *PaymentController) ImportPayments(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return badRequest(ctx, "No file provided. Please upload an .xlsx file.")
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".xlsx" {
		return badRequest(ctx, "Invalid file type. Please upload an .xlsx file.")
	}

	src, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open uploaded file"})
	}
	defer src.Close()

	rows, err := parseLedgerWorkbook(src)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	if len(rows) == 0 {
		return badRequest(ctx, "No ledger rows found in the file")
	}

	payments := make([]Models.VendorPayment, 0, len(rows))
	var rowErrors []RowError
	for _, row := range rows {
		if err := row.checkAmounts(); err != nil {
			rowErrors = append(rowErrors, RowError{Row: row.Row, Error: err.Error()})
			continue
		}
		payment, inErr := paymentFromInput(c.DB, row.Input)
		if inErr != nil {
			if inErr.Status == fiber.StatusInternalServerError {
				return inErr.respond(ctx)
			}
			rowErrors = append(rowErrors, RowError{Row: row.Row, Error: inErr.describe()})
			continue
		}
		payments = append(payments, payment)
	}
	if len(rowErrors) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid rows", "rows": rowErrors})
	}

	err = c.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&payments).Error
	})
	if err != nil {
		Logger.L.Error("Failed to import payments", "rows", len(payments), "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to import payments"})
	}

	Logger.L.Info("Imported ledger entries", "rows", len(payments), "file", file.Filename)
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Payments imported successfully",
		"imported": len(payments),
	})
}
