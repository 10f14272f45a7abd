package Client

import (
	"context"
	"errors"
	"testing"

	"Quarry/Ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	vendors     map[Ledger.VendorType][]Ledger.Vendor
	vendorErr   error
	entries     []Ledger.Entry
	ledgerErr   error
	outstanding map[Ledger.Key]decimal.Decimal
	backendErr  error
	block       chan struct{}
}

func (s *stubFetcher) ListVendors(ctx context.Context, t Ledger.VendorType) ([]Ledger.Vendor, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.vendorErr != nil && t == Ledger.Labour {
		return nil, s.vendorErr
	}
	return s.vendors[t], nil
}

func (s *stubFetcher) ListPayments(ctx context.Context, key *Ledger.Key) ([]Ledger.Entry, error) {
	return s.entries, s.ledgerErr
}

func (s *stubFetcher) ListOutstanding(ctx context.Context) (map[Ledger.Key]decimal.Decimal, error) {
	return s.outstanding, s.backendErr
}

func sampleFetcher() *stubFetcher {
	transport := Ledger.Vendor{
		Key:         Ledger.Key{ID: 1, Type: Ledger.Transport},
		Name:        "Sri Murugan Lorry Service",
		AdvancePaid: Ledger.NewMoney(1000),
		Vehicles: []Ledger.VehicleRate{
			{RatePerTrip: Ledger.NewMoney(3000), PadiKasu: Ledger.NewMoney(200)},
			{RatePerTrip: Ledger.NewMoney(2500)},
		},
	}
	explosive := Ledger.Vendor{
		Key:            Ledger.Key{ID: 1, Type: Ledger.Explosive},
		Name:           "Deccan Blasting",
		OpeningBalance: Ledger.NewMoney(5000),
		AdvancePaid:    Ledger.NewMoney(2000),
	}
	labour := Ledger.Vendor{
		Key:         Ledger.Key{ID: 2, Type: Ledger.Labour},
		Name:        "Kannan Crew",
		AdvancePaid: Ledger.NewMoney(10000),
	}
	return &stubFetcher{
		vendors: map[Ledger.VendorType][]Ledger.Vendor{
			Ledger.Transport: {transport},
			Ledger.Labour:    {labour},
			Ledger.Explosive: {explosive},
		},
		entries: []Ledger.Entry{
			{ID: 1, VendorID: 1, VendorType: Ledger.Explosive, InvoiceAmount: Ledger.NewMoney(1000), PaidAmount: Ledger.NewMoney(1000)},
			{ID: 2, VendorID: 1, VendorType: Ledger.Explosive, InvoiceAmount: Ledger.NewMoney(500)},
			{ID: 3, VendorID: 99, VendorType: Ledger.Transport, InvoiceAmount: Ledger.NewMoney(700)},
		},
		outstanding: map[Ledger.Key]decimal.Decimal{
			{ID: 1, Type: Ledger.Transport}: decimal.NewFromInt(4700),
			{ID: 1, Type: Ledger.Explosive}: decimal.NewFromInt(3000),
		},
	}
}

func rowFor(t *testing.T, board *Board, key Ledger.Key) Row {
	t.Helper()
	for _, row := range board.Rows {
		if row.Vendor.Key == key {
			return row
		}
	}
	t.Fatalf("no row for %s", key)
	return Row{}
}

func TestLoadBoardResolvesEveryVendor(t *testing.T) {
	board, err := LoadBoard(context.Background(), sampleFetcher())
	require.NoError(t, err)
	require.Len(t, board.Rows, 3)

	// Rows follow vendor type order.
	assert.Equal(t, Ledger.Transport, board.Rows[0].Vendor.Type)
	assert.Equal(t, Ledger.Labour, board.Rows[1].Vendor.Type)
	assert.Equal(t, Ledger.Explosive, board.Rows[2].Vendor.Type)

	transport := rowFor(t, board, Ledger.Key{ID: 1, Type: Ledger.Transport})
	assert.Equal(t, "Owed: 4700.00", transport.Display())
	require.NotNil(t, transport.BackendBalance)
	assert.False(t, transport.Drift)

	explosive := rowFor(t, board, Ledger.Key{ID: 1, Type: Ledger.Explosive})
	assert.True(t, explosive.Balance.Outstanding.Equal(decimal.NewFromInt(3500)))
	assert.True(t, explosive.Drift, "backend reported 3000")

	labour := rowFor(t, board, Ledger.Key{ID: 2, Type: Ledger.Labour})
	assert.Equal(t, "Credit: 10000.00", labour.Display())
	assert.Nil(t, labour.BackendBalance)

	require.Len(t, board.Orphans, 1)
	assert.Equal(t, uint(3), board.Orphans[0].ID)

	balances := board.Balances()
	assert.Len(t, balances, 3)
	assert.True(t, balances[Ledger.Key{ID: 1, Type: Ledger.Explosive}].Outstanding.Equal(decimal.NewFromInt(3500)))
}

func TestLoadBoardLedgerFailureMarksRowsUnavailable(t *testing.T) {
	f := sampleFetcher()
	f.ledgerErr = errors.New("ledger down")

	board, err := LoadBoard(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, f.ledgerErr, board.LedgerErr)
	assert.Empty(t, board.Orphans)

	for _, row := range board.Rows {
		assert.True(t, row.Balance.LedgerUnavailable, row.Vendor.Key.String())
		assert.Equal(t, Ledger.StatusUnavailable, row.Balance.Status())
		assert.False(t, row.Drift)
	}

	explosive := rowFor(t, board, Ledger.Key{ID: 1, Type: Ledger.Explosive})
	assert.Equal(t, "Unavailable (ledger): 3000.00", explosive.Display())
}

func TestLoadBoardOutstandingFailureKeepsRows(t *testing.T) {
	f := sampleFetcher()
	f.backendErr = errors.New("outstanding down")

	board, err := LoadBoard(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, f.backendErr, board.OutstandingErr)
	require.Len(t, board.Rows, 3)
	for _, row := range board.Rows {
		assert.Nil(t, row.BackendBalance)
		assert.False(t, row.Balance.LedgerUnavailable)
	}
}

func TestLoadBoardVendorFailureFailsBoard(t *testing.T) {
	f := sampleFetcher()
	f.vendorErr = errors.New("vendors down")

	board, err := LoadBoard(context.Background(), f)
	assert.ErrorIs(t, err, f.vendorErr)
	assert.Nil(t, board)
}

func TestLoadBoardCancelledContext(t *testing.T) {
	f := sampleFetcher()
	f.block = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	board, err := LoadBoard(ctx, f)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, board)
}

func TestRowDisplaySettled(t *testing.T) {
	row := Row{Balance: Ledger.Resolve(Ledger.Vendor{Key: Ledger.Key{ID: 5, Type: Ledger.Explosive}}, nil)}
	assert.Equal(t, "Settled", row.Display())
}
