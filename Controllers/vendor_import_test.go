package Controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
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

func (e *testEnv) upload(t *testing.T, filename string, content []byte) (int, []byte) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/vendors/payments/import", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

// sheetBytes writes rows to a one-sheet workbook, first row as header.
func sheetBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportExportedWorkbook(t *testing.T) {
	env := newTestEnv(t)
	id := env.createVendor(t, "explosive", fiber.Map{"name": "Blast Co"})

	buf, err := buildLedgerWorkbook([]Models.VendorPayment{
		{
			VendorID: id, VendorType: Ledger.Explosive, VendorName: "Blast Co",
			Date:            datatypes.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
			InvoiceAmount:   Ledger.NewMoney(1500),
			ReferenceNumber: "INV-77",
		},
		{
			VendorID: id, VendorType: Ledger.Explosive,
			Date:        datatypes.Date(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)),
			PaidAmount:  Ledger.NewMoney("400.50"),
			PaymentMode: "NEFT",
		},
	})
	require.NoError(t, err)

	status, data := env.upload(t, "march.xlsx", buf.Bytes())
	require.Equal(t, http.StatusCreated, status, string(data))
	var resp struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, 2, resp.Imported)

	bal := env.balance(t, "explosive", id)
	assert.True(t, bal.Balance.LedgerNet.Equal(dec("1099.5")), bal.Balance.LedgerNet.String())

	var payments []Models.VendorPayment
	require.NoError(t, env.db.Order("date").Find(&payments).Error)
	require.Len(t, payments, 2)
	assert.Equal(t, "INV-77", payments[0].ReferenceNumber)
	assert.Equal(t, "Blast Co", payments[1].VendorName)
}

func TestImportRejectsWholeFileOnBadRows(t *testing.T) {
	env := newTestEnv(t)
	id := env.createVendor(t, "labour", fiber.Map{"name": "Kannan Crew"})

	content := sheetBytes(t, [][]interface{}{
		{"Vendor ID", "Vendor Type", "Date", "Invoice Amount", "Paid Amount"},
		{id, "labour", "2024-01-10", 250, ""},
		{id, "labour", "2024-01-11", "12O0", ""},
		{id + 100, "labour", "2024-01-12", 300, ""},
		{id, "labour", "10/01/2024", 300, ""},
	})

	status, data := env.upload(t, "crew.xlsx", content)
	require.Equal(t, http.StatusBadRequest, status, string(data))
	var resp struct {
		Rows []RowError `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, 3, resp.Rows[0].Row)
	assert.Contains(t, resp.Rows[0].Error, "12O0")
	assert.Equal(t, 4, resp.Rows[1].Row)
	assert.Equal(t, "Vendor not found", resp.Rows[1].Error)
	assert.Equal(t, 5, resp.Rows[2].Row)

	var count int64
	require.NoError(t, env.db.Model(&Models.VendorPayment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImportRejectsBadUploads(t *testing.T) {
	env := newTestEnv(t)

	status, data := env.upload(t, "ledger.csv", []byte("Date,Vendor ID\n"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(data), "xlsx")

	content := sheetBytes(t, [][]interface{}{{"Date", "Vendor ID", "Invoice Amount"}})
	status, data = env.upload(t, "ledger.xlsx", content)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(data), "Vendor Type")

	status, _ = env.do(t, http.MethodPost, "/api/vendors/payments/import", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
