package middleware

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"Quarry/Logger"

	"github.com/gofiber/fiber/v2"
)

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	// Log each request through the application logger
	Console bool
	// Append each request as a JSON line to LogFilePath
	File        bool
	LogFilePath string
	// Include request body for non-GET requests
	IncludeBody bool
	// Skip logging for specific paths
	SkipPaths []string
}

// LogData is one line of the request log
type LogData struct {
	Timestamp     time.Time     `json:"timestamp"`
	Method        string        `json:"method"`
	Path          string        `json:"path"`
	URL           string        `json:"url"`
	Status        int           `json:"status"`
	Latency       time.Duration `json:"latency"`
	IP            string        `json:"ip"`
	UserAgent     string        `json:"user_agent"`
	RequestID     string        `json:"request_id"`
	RequestBody   interface{}   `json:"request_body,omitempty"`
	Error         string        `json:"error,omitempty"`
	Username      string        `json:"username"`
	ContentLength int64         `json:"content_length"`
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Console:     true,
		File:        true,
		LogFilePath: "logs/requests.log",
		SkipPaths:   []string{"/health", "/metrics"},
	}
}

// RequestLogger returns the logging middleware writing to path.
func RequestLogger(path string) fiber.Handler {
	cfg := DefaultLogConfig()
	cfg.LogFilePath = path
	cfg.File = path != ""
	return LoggingMiddleware(cfg)
}

// LoggingMiddleware creates a new logging middleware with the given configuration
func LoggingMiddleware(config ...LogConfig) fiber.Handler {
	cfg := DefaultLogConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	var sink *fileSink
	if cfg.File {
		sink = &fileSink{path: cfg.LogFilePath}
		if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0755); err != nil {
			Logger.L.Error("Error creating logs directory", "error", err)
		}
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}

		start := time.Now()

		var requestBody interface{}
		if cfg.IncludeBody && c.Method() != fiber.MethodGet {
			if body := c.Body(); len(body) > 0 {
				var jsonData interface{}
				if err := json.Unmarshal(body, &jsonData); err == nil {
					requestBody = jsonData
				} else {
					requestBody = string(body)
				}
			}
		}

		err := c.Next()

		data := LogData{
			Timestamp:     start,
			Method:        c.Method(),
			Path:          c.Path(),
			URL:           c.OriginalURL(),
			Status:        c.Response().StatusCode(),
			Latency:       time.Since(start),
			IP:            c.IP(),
			UserAgent:     c.Get(fiber.HeaderUserAgent),
			RequestID:     requestID(c),
			RequestBody:   requestBody,
			ContentLength: int64(len(c.Response().Body())),
		}
		if claims, ok := c.Locals("user").(*Claims); ok {
			data.Username = claims.Subject
		}
		if err != nil {
			data.Error = err.Error()
		}

		if cfg.Console {
			Logger.L.Info("request",
				"method", data.Method,
				"path", data.Path,
				"status", data.Status,
				"latency", data.Latency.String(),
				"ip", data.IP,
				"request_id", data.RequestID)
		}
		if sink != nil {
			sink.write(data)
		}

		return err
	}
}

// requestID prefers the id set by the requestid middleware on the response.
func requestID(c *fiber.Ctx) string {
	if id := string(c.Response().Header.Peek(fiber.HeaderXRequestID)); id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

type fileSink struct {
	mu   sync.Mutex
	path string
}

func (s *fileSink) write(data LogData) {
	line, err := json.Marshal(data)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		Logger.L.Error("Error opening log file", "path", s.path, "error", err)
		return
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		Logger.L.Error("Error writing to log file", "path", s.path, "error", err)
	}
}
