package Controllers

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentController handles ledger entries
type PaymentController struct {
	DB *gorm.DB
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// CreatePaymentInput is the body of POST /vendors/payments
type CreatePaymentInput struct {
	VendorID        uint         `json:"vendorId" validate:"required"`
	VendorType      string       `json:"vendorType" validate:"required,oneof=transport labour explosive"`
	VendorName      string       `json:"vendorName" validate:"max=255"`
	Date            string       `json:"date" validate:"required,datetime=2006-01-02"`
	InvoiceAmount   Ledger.Money `json:"invoiceAmount" validate:"gte=0,lte=1e15"`
	PaidAmount      Ledger.Money `json:"paidAmount" validate:"gte=0,lte=1e15"`
	PaymentMode     string       `json:"paymentMode" validate:"max=30"`
	ReferenceNumber string       `json:"referenceNumber" validate:"max=100"`
	Notes           string       `json:"notes" validate:"max=2000"`
}

// ledgerFilter reads the optional vendorId + vendorType query pair.
// Both must be given together: an id alone is ambiguous across vendor types.
func ledgerFilter(ctx *fiber.Ctx) (*Ledger.Key, error) {
	idStr := ctx.Query("vendorId")
	typeStr := ctx.Query("vendorType")
	if idStr == "" && typeStr == "" {
		return nil, nil
	}
	if idStr == "" || typeStr == "" {
		return nil, errors.New("vendorId and vendorType must be given together")
	}
	t, err := Ledger.ParseVendorType(typeStr)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return nil, errors.New("Invalid vendor ID")
	}
	return &Ledger.Key{ID: uint(id), Type: t}, nil
}

// GetPayments lists ledger entries, newest first
func (c *PaymentController) GetPayments(ctx *fiber.Ctx) error {
	key, err := ledgerFilter(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	payments, err := Models.LedgerEntries(c.DB, key)
	if err != nil {
		Logger.L.Error("Failed to retrieve payments", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}

	return ctx.JSON(payments)
}

// inputError is a rejected payment input: a status with a message or field map.
type inputError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *inputError) respond(ctx *fiber.Ctx) error {
	if e.Fields != nil {
		return invalidInput(ctx, e.Fields)
	}
	return ctx.Status(e.Status).JSON(fiber.Map{"error": e.Message})
}

// describe flattens the error into one line, fields sorted by name.
func (e *inputError) describe() string {
	if e.Fields == nil {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}
	return strings.Join(parts, "; ")
}

// paymentFromInput validates input and resolves the vendor it is booked against.
func paymentFromInput(db *gorm.DB, input CreatePaymentInput) (Models.VendorPayment, *inputError) {
	input.VendorType = strings.ToLower(strings.TrimSpace(input.VendorType))
	if fields := validateInput(input); fields != nil {
		return Models.VendorPayment{}, &inputError{Status: fiber.StatusBadRequest, Fields: fields}
	}
	if input.InvoiceAmount.IsZero() && input.PaidAmount.IsZero() {
		return Models.VendorPayment{}, &inputError{Status: fiber.StatusBadRequest, Message: "invoiceAmount or paidAmount must be non-zero"}
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return Models.VendorPayment{}, &inputError{Status: fiber.StatusBadRequest, Message: "Invalid date format. Use YYYY-MM-DD"}
	}

	key := Ledger.Key{ID: input.VendorID, Type: Ledger.VendorType(input.VendorType)}
	record, err := Models.FindVendor(db, key)
	if err != nil {
		if errors.Is(err, Models.ErrVendorNotFound) {
			return Models.VendorPayment{}, &inputError{Status: fiber.StatusNotFound, Message: "Vendor not found"}
		}
		Logger.L.Error("Failed to fetch vendor", "vendor", key.String(), "error", err)
		return Models.VendorPayment{}, &inputError{Status: fiber.StatusInternalServerError, Message: "Failed to fetch vendor"}
	}

	vendorName := input.VendorName
	if vendorName == "" {
		vendorName = record.Profile().Name
	}

	return Models.VendorPayment{
		VendorID:        key.ID,
		VendorType:      key.Type,
		VendorName:      vendorName,
		Date:            datatypes.Date(date),
		InvoiceAmount:   input.InvoiceAmount,
		PaidAmount:      input.PaidAmount,
		PaymentMode:     input.PaymentMode,
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
	}, nil
}

// CreatePayment records one invoice/payment event against a vendor
func (c *PaymentController) CreatePayment(ctx *fiber.Ctx) error {
	var input CreatePaymentInput
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, err.Error())
	}

	payment, inErr := paymentFromInput(c.DB, input)
	if inErr != nil {
		return inErr.respond(ctx)
	}

	if err := c.DB.Create(&payment).Error; err != nil {
		Logger.L.Error("Failed to create payment", "vendor", payment.VendorKey().String(), "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payment"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(payment)
}

// DeletePayment soft deletes one ledger entry
func (c *PaymentController) DeletePayment(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil || id <= 0 {
		return badRequest(ctx, "Invalid payment ID")
	}

	var payment Models.VendorPayment
	if err := c.DB.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch payment"})
	}

	if err := c.DB.Delete(&payment).Error; err != nil {
		Logger.L.Error("Failed to delete payment", "payment", id, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete payment"})
	}

	return ctx.JSON(fiber.Map{"message": "Payment deleted successfully"})
}
