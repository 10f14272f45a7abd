package Client

import (
	"context"

	"Quarry/Ledger"
	"Quarry/Logger"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the read side of the API. *APIClient implements it.
type Fetcher interface {
	ListVendors(ctx context.Context, t Ledger.VendorType) ([]Ledger.Vendor, error)
	ListPayments(ctx context.Context, key *Ledger.Key) ([]Ledger.Entry, error)
	ListOutstanding(ctx context.Context) (map[Ledger.Key]decimal.Decimal, error)
}

// Row is one vendor on the board.
type Row struct {
	Vendor  Ledger.Vendor
	Balance Ledger.Balance
	// BackendBalance is nil when the outstanding endpoint could not be read
	// or did not list this vendor.
	BackendBalance *decimal.Decimal
	// Drift is set when BackendBalance disagrees with Balance.Outstanding.
	Drift bool
}

// Display renders the balance for a dashboard cell.
func (r Row) Display() string {
	b := r.Balance
	switch b.Status() {
	case Ledger.StatusUnavailable:
		return "Unavailable (ledger): " + b.Outstanding.StringFixed(2)
	case Ledger.StatusCredit:
		return "Credit: " + b.Outstanding.Abs().StringFixed(2)
	case Ledger.StatusSettled:
		return "Settled"
	default:
		return "Owed: " + b.Outstanding.StringFixed(2)
	}
}

// Board is every vendor with its balance, ordered by vendor type then as listed.
type Board struct {
	Rows    []Row
	Orphans []Ledger.Entry
	// LedgerErr and OutstandingErr record fetches that failed without
	// failing the whole board.
	LedgerErr      error
	OutstandingErr error
}

// Balances returns the board keyed by vendor.
func (b *Board) Balances() map[Ledger.Key]Ledger.Balance {
	balances := make(map[Ledger.Key]Ledger.Balance, len(b.Rows))
	for _, row := range b.Rows {
		balances[row.Vendor.Key] = row.Balance
	}
	return balances
}

// LoadBoard fetches vendors, the ledger and the server balances concurrently,
// then resolves every vendor once all three have returned. A failed vendor
// fetch fails the board. A failed ledger fetch leaves rows unavailable. A
// cancelled ctx discards everything.
func LoadBoard(ctx context.Context, f Fetcher) (*Board, error) {
	g, gctx := errgroup.WithContext(ctx)

	perType := make([][]Ledger.Vendor, len(Ledger.VendorTypes))
	for i, t := range Ledger.VendorTypes {
		i, t := i, t
		g.Go(func() error {
			vendors, err := f.ListVendors(gctx, t)
			if err != nil {
				return err
			}
			perType[i] = vendors
			return nil
		})
	}

	var (
		entries     []Ledger.Entry
		ledgerErr   error
		outstanding map[Ledger.Key]decimal.Decimal
		backendErr  error
	)
	g.Go(func() error {
		entries, ledgerErr = f.ListPayments(gctx, nil)
		return nil
	})
	g.Go(func() error {
		outstanding, backendErr = f.ListOutstanding(gctx)
		return nil
	})

	waitErr := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, waitErr
	}

	var vendors []Ledger.Vendor
	for _, vs := range perType {
		vendors = append(vendors, vs...)
	}

	board := &Board{LedgerErr: ledgerErr, OutstandingErr: backendErr}
	if ledgerErr != nil {
		Logger.L.Warn("Ledger fetch failed, balances unavailable", "error", ledgerErr)
	}
	if backendErr != nil {
		Logger.L.Warn("Outstanding fetch failed", "error", backendErr)
	}

	var index map[Ledger.Key][]Ledger.Entry
	if ledgerErr == nil {
		index = Ledger.IndexEntries(entries)
		board.Orphans = Ledger.Orphans(vendors, entries)
		for _, orphan := range board.Orphans {
			Logger.L.Warn("Ledger entry references unknown vendor",
				"payment", orphan.ID,
				"vendor", orphan.Key().String())
		}
	}

	board.Rows = make([]Row, 0, len(vendors))
	for _, v := range vendors {
		row := Row{Vendor: v}
		if ledgerErr != nil {
			row.Balance = Ledger.ResolvePartial(v)
		} else {
			row.Balance = Ledger.Resolve(v, index[v.Key])
		}
		if backend, ok := outstanding[v.Key]; ok {
			backend := backend
			row.BackendBalance = &backend
			row.Drift = ledgerErr == nil && !backend.Equal(row.Balance.Outstanding)
		}
		board.Rows = append(board.Rows, row)
	}

	return board, nil
}
