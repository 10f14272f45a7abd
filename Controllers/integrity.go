package Controllers

import (
	"Quarry/CronJobs"

	"github.com/gofiber/fiber/v2"
)

// IntegrityRunner is satisfied by CronJobs.IntegrityChecker
type IntegrityRunner interface {
	RunManualCheck() CronJobs.IntegrityReport
	LastReport() (CronJobs.IntegrityReport, bool)
}

// IntegrityController exposes the ledger integrity check
type IntegrityController struct {
	Checker IntegrityRunner
}

func NewIntegrityController(checker IntegrityRunner) *IntegrityController {
	return &IntegrityController{Checker: checker}
}

// LastReport returns the most recent integrity report
func (c *IntegrityController) LastReport(ctx *fiber.Ctx) error {
	report, ok := c.Checker.LastReport()
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No integrity check has run yet"})
	}
	return ctx.JSON(report)
}

// RunCheck runs the integrity check now
func (c *IntegrityController) RunCheck(ctx *fiber.Ctx) error {
	report := c.Checker.RunManualCheck()
	if report.Error != "" {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Integrity check failed", "report": report})
	}
	return ctx.JSON(report)
}
