package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Quarry/Config"
	"Quarry/CronJobs"
	"Quarry/FiberConfig"
	"Quarry/Ledger"
	"Quarry/Logger"
	"Quarry/Models"
	"Quarry/Slack"
	"Quarry/Whatsapp"
	"Quarry/email"
	"Quarry/middleware"
)

func main() {
	cfg := Config.LoadConfig()
	Logger.Init(cfg.LogLevel)

	if len(os.Args) > 1 && os.Args[1] == "token" {
		token, err := issueToken(cfg, os.Args[2:])
		if err != nil {
			fmt.Fprintln(os.Stderr, "usage: quarry token <user> <read|write> [ttl]:", err)
			os.Exit(2)
		}
		fmt.Println(token)
		return
	}

	db, err := Models.Connect(cfg)
	if err != nil {
		Logger.L.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	integrityChecker := CronJobs.NewIntegrityChecker(db, cfg.IntegritySchedule, cfg.RunIntegrityCheck).
		WithNotifiers(alertNotifiers(cfg)...)
	if err := integrityChecker.Start(); err != nil {
		Logger.L.Error("Failed to start integrity checker", "error", err)
	}
	defer integrityChecker.Stop()

	deps := FiberConfig.Deps{
		DB:        db,
		Memo:      Ledger.NewMemo(cfg.BalanceCacheTTL),
		Integrity: integrityChecker,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- FiberConfig.FiberConfig(cfg, deps)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			Logger.L.Error("Server stopped", "error", err)
		}
	case sig := <-quit:
		Logger.L.Info("Shutting down", "signal", sig.String())
	}
}

// alertNotifiers returns the integrity alert targets that are configured.
func alertNotifiers(cfg *Config.AppConfig) []CronJobs.Notifier {
	var notifiers []CronJobs.Notifier
	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		notifiers = append(notifiers, Slack.NewSlackClient(cfg.SlackToken, cfg.SlackChannel))
	}
	if cfg.SMTPServer != "" && len(cfg.AlertTo) > 0 {
		notifiers = append(notifiers, email.NewNotifier(email.Config{
			SMTPServer: cfg.SMTPServer,
			SMTPPort:   cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			FromEmail:  cfg.AlertFrom,
			FromName:   "Quarry Vendor Ledger",
			TLSEnabled: cfg.SMTPTLS,
		}, cfg.AlertTo))
	}
	if cfg.WhatsappURL != "" && len(cfg.AlertPhones) > 0 {
		notifiers = append(notifiers, Whatsapp.NewClient(cfg.WhatsappURL, cfg.AlertPhones))
	}
	return notifiers
}

// issueToken signs an API token for user. args are <user> <read|write> [ttl], ttl defaulting to 30 days.
func issueToken(cfg *Config.AppConfig, args []string) (string, error) {
	if len(args) < 2 || len(args) > 3 {
		return "", errors.New("expected a user and a permission")
	}
	var permission int
	switch args[1] {
	case "read":
		permission = middleware.PermissionRead
	case "write":
		permission = middleware.PermissionWrite
	default:
		return "", fmt.Errorf("unknown permission %q", args[1])
	}
	ttl := 30 * 24 * time.Hour
	if len(args) == 3 {
		d, err := time.ParseDuration(args[2])
		if err != nil || d <= 0 {
			return "", fmt.Errorf("invalid ttl %q", args[2])
		}
		ttl = d
	}
	return middleware.IssueToken(cfg.JWTSecret, args[0], permission, ttl)
}
