// Package Client talks to the vendor ledger API and assembles balance boards
// from its responses.
package Client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Quarry/Ledger"

	"github.com/shopspring/decimal"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// APIClient is a client for the /api/vendors endpoints
type APIClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewAPIClient creates a client for baseURL. token may be empty.
func NewAPIClient(baseURL, token string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &apiErr)
		msg := apiErr.Error
		if msg == "" {
			msg = apiErr.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// wireVendor is a vendor record as the API renders it.
type wireVendor struct {
	ID             uint                  `json:"ID"`
	UpdatedAt      time.Time             `json:"UpdatedAt"`
	Name           string                `json:"name"`
	CompanyName    string                `json:"companyName"`
	OpeningBalance Ledger.Money          `json:"openingBalance"`
	AdvancePaid    Ledger.Money          `json:"advancePaid"`
	Vehicles       []Ledger.VehicleRate  `json:"vehicles"`
	Contracts      []Ledger.WorkContract `json:"contracts"`
}

func (w wireVendor) toLedger(t Ledger.VendorType) Ledger.Vendor {
	return Ledger.Vendor{
		Key:            Ledger.Key{ID: w.ID, Type: t},
		Name:           w.Name,
		CompanyName:    w.CompanyName,
		OpeningBalance: w.OpeningBalance,
		AdvancePaid:    w.AdvancePaid,
		Vehicles:       w.Vehicles,
		Contracts:      w.Contracts,
		UpdatedAt:      w.UpdatedAt,
	}
}

// ListVendors fetches every vendor of one variant
func (c *APIClient) ListVendors(ctx context.Context, t Ledger.VendorType) ([]Ledger.Vendor, error) {
	var rows []struct {
		Vendor wireVendor `json:"vendor"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/vendors/"+url.PathEscape(string(t)), nil, &rows); err != nil {
		return nil, err
	}
	vendors := make([]Ledger.Vendor, 0, len(rows))
	for _, row := range rows {
		vendors = append(vendors, row.Vendor.toLedger(t))
	}
	return vendors, nil
}

// ListPayments fetches ledger entries. A nil key fetches the whole ledger.
func (c *APIClient) ListPayments(ctx context.Context, key *Ledger.Key) ([]Ledger.Entry, error) {
	path := "/api/vendors/payments"
	if key != nil {
		q := url.Values{}
		q.Set("vendorId", strconv.FormatUint(uint64(key.ID), 10))
		q.Set("vendorType", string(key.Type))
		path += "?" + q.Encode()
	}
	var entries []Ledger.Entry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListOutstanding fetches the server-side balance of every vendor
func (c *APIClient) ListOutstanding(ctx context.Context) (map[Ledger.Key]decimal.Decimal, error) {
	var rows []struct {
		VendorID   uint              `json:"vendorId"`
		VendorType Ledger.VendorType `json:"vendorType"`
		Balance    Ledger.Money      `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/vendors/outstanding", nil, &rows); err != nil {
		return nil, err
	}
	balances := make(map[Ledger.Key]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[Ledger.Key{ID: row.VendorID, Type: row.VendorType}] = row.Balance.Decimal
	}
	return balances, nil
}

// PaymentRequest is the body of POST /api/vendors/payments
type PaymentRequest struct {
	VendorID        uint              `json:"vendorId"`
	VendorType      Ledger.VendorType `json:"vendorType"`
	VendorName      string            `json:"vendorName,omitempty"`
	Date            string            `json:"date"`
	InvoiceAmount   Ledger.Money      `json:"invoiceAmount"`
	PaidAmount      Ledger.Money      `json:"paidAmount"`
	PaymentMode     string            `json:"paymentMode,omitempty"`
	ReferenceNumber string            `json:"referenceNumber,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// CreatePayment records one ledger entry
func (c *APIClient) CreatePayment(ctx context.Context, req PaymentRequest) (Ledger.Entry, error) {
	var entry Ledger.Entry
	err := c.do(ctx, http.MethodPost, "/api/vendors/payments", req, &entry)
	return entry, err
}

// DeletePayment removes one ledger entry
func (c *APIClient) DeletePayment(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, "/api/vendors/payments/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

// VendorRequest is the create/update body for any vendor variant
type VendorRequest struct {
	Name           string                `json:"name"`
	CompanyName    string                `json:"companyName,omitempty"`
	Phone          string                `json:"phone,omitempty"`
	OpeningBalance Ledger.Money          `json:"openingBalance"`
	AdvancePaid    Ledger.Money          `json:"advancePaid"`
	LicenseNo      string                `json:"licenseNo,omitempty"`
	Vehicles       []Ledger.VehicleRate  `json:"vehicles,omitempty"`
	Contracts      []Ledger.WorkContract `json:"contracts,omitempty"`
}

// SaveVendor creates the vendor when id is 0 and updates it otherwise
func (c *APIClient) SaveVendor(ctx context.Context, t Ledger.VendorType, id uint, req VendorRequest) (Ledger.Vendor, error) {
	method, path := http.MethodPost, "/api/vendors/"+url.PathEscape(string(t))
	if id != 0 {
		method = http.MethodPut
		path += "/" + strconv.FormatUint(uint64(id), 10)
	}
	var saved wireVendor
	if err := c.do(ctx, method, path, req, &saved); err != nil {
		return Ledger.Vendor{}, err
	}
	return saved.toLedger(t), nil
}
