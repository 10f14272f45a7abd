package Client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Quarry/Ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/api/vendors/transport", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		io.WriteString(w, `[{"vendor":{"ID":4,"UpdatedAt":"2024-03-01T10:00:00Z","name":"Sri Murugan Lorry Service",
			"openingBalance":0,"advancePaid":"1000","vehicles":[{"vehicleNo":"TN-45","ratePerTrip":3000,"padiKasu":200},
			{"ratePerTrip":"2500","padiKasu":null}]},"balance":{},"status":"owed"}]`)
	})
	mux.HandleFunc("/api/vendors/outstanding", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"vendorId":4,"vendorType":"transport","balance":"4700","isCredit":false},
			{"vendorId":4,"vendorType":"labour","balance":"-250.5","isCredit":true}]`)
	})
	mux.HandleFunc("/api/vendors/payments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "4", r.URL.Query().Get("vendorId"))
			assert.Equal(t, "explosive", r.URL.Query().Get("vendorType"))
			io.WriteString(w, `[{"ID":9,"vendorId":4,"vendorType":"explosive","invoiceAmount":500,"paidAmount":"abc"}]`)
		case http.MethodPost:
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2024-03-05", body["date"])
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"ID":10,"vendorId":4,"vendorType":"explosive","invoiceAmount":1500,"paidAmount":0}`)
		}
	})
	mux.HandleFunc("/api/vendors/payments/77", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"Payment not found"}`)
	})
	mux.HandleFunc("/api/vendors/labour/3", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		io.WriteString(w, `{"ID":3,"name":"Kannan Crew","advancePaid":500,"contracts":[{"agreedRate":650,"labourCount":4}]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAPIClientListVendors(t *testing.T) {
	server := newTestServer(t)
	client := NewAPIClient(server.URL+"/", "token-1", 5*time.Second)

	vendors, err := client.ListVendors(context.Background(), Ledger.Transport)
	require.NoError(t, err)
	require.Len(t, vendors, 1)

	v := vendors[0]
	assert.Equal(t, Ledger.Key{ID: 4, Type: Ledger.Transport}, v.Key)
	assert.Equal(t, "Sri Murugan Lorry Service", v.Name)
	require.Len(t, v.Vehicles, 2)
	assert.True(t, v.Vehicles[1].PadiKasu.IsZero())
	assert.True(t, Ledger.Valuate(v).Equal(decimal.NewFromInt(5700)))
	assert.False(t, v.UpdatedAt.IsZero())
}

func TestAPIClientListOutstandingKeysByType(t *testing.T) {
	client := NewAPIClient(newTestServer(t).URL, "", time.Second)

	balances, err := client.ListOutstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.True(t, balances[Ledger.Key{ID: 4, Type: Ledger.Transport}].Equal(decimal.NewFromInt(4700)))
	assert.True(t, balances[Ledger.Key{ID: 4, Type: Ledger.Labour}].Equal(decimal.RequireFromString("-250.5")))
}

func TestAPIClientPayments(t *testing.T) {
	client := NewAPIClient(newTestServer(t).URL, "", time.Second)
	ctx := context.Background()

	entries, err := client.ListPayments(ctx, &Ledger.Key{ID: 4, Type: Ledger.Explosive})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(9), entries[0].ID)
	assert.True(t, entries[0].PaidAmount.IsZero())
	assert.True(t, entries[0].Contribution().Equal(decimal.NewFromInt(500)))

	created, err := client.CreatePayment(ctx, PaymentRequest{
		VendorID:      4,
		VendorType:    Ledger.Explosive,
		Date:          "2024-03-05",
		InvoiceAmount: Ledger.NewMoney(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(10), created.ID)
	assert.Equal(t, Ledger.Key{ID: 4, Type: Ledger.Explosive}, created.Key())
}

func TestAPIClientErrorResponse(t *testing.T) {
	client := NewAPIClient(newTestServer(t).URL, "", time.Second)

	err := client.DeletePayment(context.Background(), 77)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Payment not found", apiErr.Message)
}

func TestAPIClientSaveVendorUpdates(t *testing.T) {
	client := NewAPIClient(newTestServer(t).URL, "", time.Second)

	saved, err := client.SaveVendor(context.Background(), Ledger.Labour, 3, VendorRequest{
		Name:        "Kannan Crew",
		AdvancePaid: Ledger.NewMoney(500),
		Contracts:   []Ledger.WorkContract{{AgreedRate: Ledger.NewMoney(650), LabourCount: Ledger.NewMoney(4)}},
	})
	require.NoError(t, err)
	assert.Equal(t, Ledger.Key{ID: 3, Type: Ledger.Labour}, saved.Key)
	assert.True(t, Ledger.Valuate(saved).Equal(decimal.NewFromInt(2600)))
}

func TestLoadBoardOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/vendors/explosive", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"vendor":{"ID":1,"name":"Deccan Blasting","openingBalance":5000,"advancePaid":2000}}]`)
	})
	mux.HandleFunc("/api/vendors/transport", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, `[]`) })
	mux.HandleFunc("/api/vendors/labour", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, `[]`) })
	mux.HandleFunc("/api/vendors/payments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Failed to retrieve payments"}`)
	})
	mux.HandleFunc("/api/vendors/outstanding", func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, `[]`) })
	server := httptest.NewServer(mux)
	defer server.Close()

	board, err := LoadBoard(context.Background(), NewAPIClient(server.URL, "", time.Second))
	require.NoError(t, err)
	require.Len(t, board.Rows, 1)

	var apiErr *APIError
	require.True(t, errors.As(board.LedgerErr, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Unavailable (ledger): 3000.00", board.Rows[0].Display())
}
