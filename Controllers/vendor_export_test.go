package Controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Quarry/Ledger"
	"Quarry/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

func TestBuildLedgerWorkbook(t *testing.T) {
	payments := []Models.VendorPayment{
		{
			VendorID: 1, VendorType: Ledger.Explosive, VendorName: "Blast Co",
			Date:          datatypes.Date(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
			InvoiceAmount: Ledger.NewMoney(500),
			PaymentMode:   "NEFT",
		},
		{
			VendorID: 1, VendorType: Ledger.Explosive, VendorName: "Blast Co",
			Date:          datatypes.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
			InvoiceAmount: Ledger.NewMoney(1000),
			PaidAmount:    Ledger.NewMoney("1000"),
		},
	}

	buf, err := buildLedgerWorkbook(payments)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ledgerSheet}, f.GetSheetList())

	header, err := f.GetCellValue(ledgerSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	date, _ := f.GetCellValue(ledgerSheet, "A2")
	assert.Equal(t, "2024-03-05", date)
	vendorType, _ := f.GetCellValue(ledgerSheet, "B2")
	assert.Equal(t, "explosive", vendorType)

	total, _ := f.GetCellValue(ledgerSheet, "A4")
	assert.Equal(t, "Total", total)
	invoiced, _ := f.GetCellValue(ledgerSheet, "E4")
	assert.Equal(t, "1500", invoiced)
	net, _ := f.GetCellValue(ledgerSheet, "G4")
	assert.Equal(t, "500", net)
}

func TestExportPaymentsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id := env.createVendor(t, "labour", fiber.Map{"name": "Kannan Crew"})
	env.createPayment(t, fiber.Map{"vendorId": id, "vendorType": "labour", "date": "2024-01-10", "invoiceAmount": 250})

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/vendors/payments/export", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "vendor_ledger_")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	name, _ := f.GetCellValue(ledgerSheet, "D2")
	assert.Equal(t, "Kannan Crew", name)
}
