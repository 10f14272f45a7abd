package CronJobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/Models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DefaultSchedule runs at 02:00:00 every day.
const DefaultSchedule = "0 0 2 * * *"

// IntegrityReport is the outcome of one ledger integrity run
type IntegrityReport struct {
	RanAt       time.Time      `json:"ranAt"`
	Duration    time.Duration  `json:"duration"`
	Vendors     int            `json:"vendors"`
	Entries     int            `json:"entries"`
	Orphans     []Ledger.Entry `json:"orphans"`
	OwedCount   int            `json:"owedCount"`
	CreditCount int            `json:"creditCount"`
	Error       string         `json:"error,omitempty"`
}

// Summary renders the report for a chat message or mail body.
func (r IntegrityReport) Summary() string {
	var b strings.Builder
	if r.Error != "" {
		fmt.Fprintf(&b, "Integrity check failed at %s: %s\n", r.RanAt.Format(time.RFC3339), r.Error)
		return b.String()
	}
	fmt.Fprintf(&b, "Checked %d vendors and %d ledger entries at %s.\n", r.Vendors, r.Entries, r.RanAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Owed: %d, credit: %d, orphaned entries: %d\n", r.OwedCount, r.CreditCount, len(r.Orphans))
	for _, orphan := range r.Orphans {
		fmt.Fprintf(&b, "- entry %d references missing %s (net %s)\n", orphan.ID, orphan.Key(), orphan.Contribution().StringFixed(2))
	}
	return b.String()
}

// Notifier delivers integrity alerts. Slack.SlackClient and email.Notifier implement it.
type Notifier interface {
	Notify(ctx context.Context, subject, text string) error
}

// IntegrityChecker periodically resolves every balance and reports ledger
// entries whose vendor no longer exists.
type IntegrityChecker struct {
	db             *gorm.DB
	cronScheduler  *cron.Cron
	schedule       string
	runImmediately bool
	jobID          cron.EntryID
	notifiers      []Notifier

	mu   sync.Mutex
	last *IntegrityReport
}

// NewIntegrityChecker creates a checker. An empty schedule uses DefaultSchedule.
func NewIntegrityChecker(db *gorm.DB, schedule string, runImmediately bool) *IntegrityChecker {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &IntegrityChecker{
		db:             db,
		cronScheduler:  cron.New(cron.WithSeconds()),
		schedule:       schedule,
		runImmediately: runImmediately,
	}
}

// WithNotifiers adds alert targets for reports that find orphans or fail.
func (s *IntegrityChecker) WithNotifiers(notifiers ...Notifier) *IntegrityChecker {
	s.notifiers = append(s.notifiers, notifiers...)
	return s
}

// Start schedules the check and starts the scheduler
func (s *IntegrityChecker) Start() error {
	var err error
	s.jobID, err = s.cronScheduler.AddFunc(s.schedule, func() {
		Logger.L.Info("Running scheduled ledger integrity check")
		s.RunManualCheck()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	s.cronScheduler.Start()
	Logger.L.Info("Ledger integrity scheduler started", "schedule", s.schedule)

	if s.runImmediately {
		go s.RunManualCheck()
	}
	return nil
}

// Stop terminates the scheduler and waits for a running check
func (s *IntegrityChecker) Stop() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
		Logger.L.Info("Ledger integrity scheduler stopped")
	}
}

// UpdateSchedule replaces the schedule. The old schedule stays if the new one is invalid.
func (s *IntegrityChecker) UpdateSchedule(schedule string) error {
	id, err := s.cronScheduler.AddFunc(schedule, func() {
		Logger.L.Info("Running scheduled ledger integrity check")
		s.RunManualCheck()
	})
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	s.cronScheduler.Remove(s.jobID)
	s.jobID = id
	s.schedule = schedule
	Logger.L.Info("Ledger integrity schedule updated", "schedule", schedule)
	return nil
}

// RunManualCheck runs one check now and records it as the last report
func (s *IntegrityChecker) RunManualCheck() IntegrityReport {
	report := s.check()

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	if report.Error != "" || len(report.Orphans) > 0 {
		s.notify(report)
	}
	return report
}

func (s *IntegrityChecker) notify(report IntegrityReport) {
	if len(s.notifiers) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subject := "Vendor ledger integrity warning"
	if report.Error != "" {
		subject = "Vendor ledger integrity check failed"
	}
	text := report.Summary()
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, subject, text); err != nil {
			Logger.L.Error("Failed to send integrity alert", "notifier", fmt.Sprintf("%T", n), "error", err)
		}
	}
}

// LastReport returns the most recent report, if any check has run
func (s *IntegrityChecker) LastReport() (IntegrityReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return IntegrityReport{}, false
	}
	return *s.last, true
}

func (s *IntegrityChecker) check() IntegrityReport {
	start := time.Now()
	report := IntegrityReport{RanAt: start, Orphans: []Ledger.Entry{}}

	vendors, _, err := Models.AllLedgerVendors(s.db)
	if err != nil {
		Logger.L.Error("Integrity check could not load vendors", "error", err)
		report.Error = err.Error()
		return report
	}
	payments, err := Models.LedgerEntries(s.db, nil)
	if err != nil {
		Logger.L.Error("Integrity check could not load ledger", "error", err)
		report.Error = err.Error()
		return report
	}

	balances, orphans := Ledger.ResolveAll(vendors, Models.Entries(payments))
	for _, b := range balances {
		switch b.Status() {
		case Ledger.StatusOwed:
			report.OwedCount++
		case Ledger.StatusCredit:
			report.CreditCount++
		}
	}
	for _, orphan := range orphans {
		Logger.L.Warn("Orphaned ledger entry",
			"payment", orphan.ID,
			"vendor", orphan.Key().String(),
			"net", orphan.Contribution().String())
	}

	report.Vendors = len(vendors)
	report.Entries = len(payments)
	report.Orphans = append(report.Orphans, orphans...)
	report.Duration = time.Since(start)

	Logger.L.Info("Ledger integrity check completed",
		"vendors", report.Vendors,
		"entries", report.Entries,
		"orphans", len(report.Orphans),
		"owed", report.OwedCount,
		"credit", report.CreditCount,
		"duration", report.Duration.String())
	return report
}
