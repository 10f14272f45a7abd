package Controllers

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"Quarry/Logger"
	"Quarry/middleware"

	"github.com/gofiber/fiber/v2"
)

// RequestLogController serves the request log written by middleware.LoggingMiddleware
type RequestLogController struct {
	Path string
	Now  func() time.Time
}

// NewRequestLogController creates a new RequestLogController
func NewRequestLogController(path string) *RequestLogController {
	return &RequestLogController{Path: path, Now: time.Now}
}

// LogGroup represents a group of logs by method and path
type LogGroup struct {
	Path        string              `json:"path"`
	Method      string              `json:"method"`
	Count       int                 `json:"count"`
	AvgLatency  float64             `json:"avg_latency_ms"`
	MinLatency  float64             `json:"min_latency_ms"`
	MaxLatency  float64             `json:"max_latency_ms"`
	SuccessRate float64             `json:"success_rate"`
	Logs        []middleware.LogData `json:"logs"`
}

// LogsResponse represents the response structure for logs API
type LogsResponse struct {
	Groups      []LogGroup `json:"groups"`
	TotalLogs   int        `json:"total_logs"`
	TotalGroups int        `json:"total_groups"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	DateFrom    time.Time  `json:"date_from"`
	DateTo      time.Time  `json:"date_to"`
}

// dateRange reads date_from/date_to, defaulting to today.
func (c *RequestLogController) dateRange(ctx *fiber.Ctx) (time.Time, time.Time, error) {
	now := c.Now()
	fromStr, toStr := ctx.Query("date_from"), ctx.Query("date_to")
	if fromStr == "" && toStr == "" {
		from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return from, from.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}

	from := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	to := now
	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return from, to, errors.New("Invalid date_from format. Use YYYY-MM-DD")
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return from, to, errors.New("Invalid date_to format. Use YYYY-MM-DD")
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return from, to, nil
}

// readLogs reads log lines within [from, to]. Lines that are not JSON are skipped.
// A missing file is an empty log.
func (c *RequestLogController) readLogs(from, to time.Time) ([]middleware.LogData, error) {
	file, err := os.Open(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var logs []middleware.LogData
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry middleware.LogData
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if !entry.Timestamp.Before(from) && !entry.Timestamp.After(to) {
			logs = append(logs, entry)
		}
	}
	return logs, scanner.Err()
}

func filterLogs(logs []middleware.LogData, pathFilter, methodFilter, statusFilter string) []middleware.LogData {
	status, statusErr := strconv.Atoi(statusFilter)
	var filtered []middleware.LogData
	for _, entry := range logs {
		if pathFilter != "" && !strings.Contains(strings.ToLower(entry.Path), strings.ToLower(pathFilter)) {
			continue
		}
		if methodFilter != "" && !strings.EqualFold(entry.Method, methodFilter) {
			continue
		}
		if statusFilter != "" && statusErr == nil && entry.Status != status {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func latencyMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// groupLogs groups by method and path, most frequent first.
func groupLogs(logs []middleware.LogData) []LogGroup {
	groupMap := make(map[string]*LogGroup)
	successes := make(map[string]int)

	for _, entry := range logs {
		key := entry.Method + " " + entry.Path
		ms := latencyMs(entry.Latency)
		group, exists := groupMap[key]
		if !exists {
			group = &LogGroup{Path: entry.Path, Method: entry.Method, MinLatency: ms, MaxLatency: ms}
			groupMap[key] = group
		}
		group.Count++
		group.Logs = append(group.Logs, entry)
		group.AvgLatency += (ms - group.AvgLatency) / float64(group.Count)
		if ms < group.MinLatency {
			group.MinLatency = ms
		}
		if ms > group.MaxLatency {
			group.MaxLatency = ms
		}
		if isSuccess(entry.Status) {
			successes[key]++
		}
		group.SuccessRate = float64(successes[key]) / float64(group.Count)
	}

	groups := make([]LogGroup, 0, len(groupMap))
	for _, group := range groupMap {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Method+groups[i].Path < groups[j].Method+groups[j].Path
	})
	return groups
}

// GetLogs retrieves request logs grouped by route with pagination
func (c *RequestLogController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 50
	}

	dateFrom, dateTo, err := c.dateRange(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	logs, err := c.readLogs(dateFrom, dateTo)
	if err != nil {
		Logger.L.Error("Error reading logs", "path", c.Path, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read logs"})
	}

	groups := groupLogs(filterLogs(logs, ctx.Query("path"), ctx.Query("method"), ctx.Query("status")))

	totalLogs := 0
	for _, group := range groups {
		totalLogs += group.Count
	}

	totalGroups := len(groups)
	start := (page - 1) * pageSize
	if start > totalGroups {
		start = totalGroups
	}
	end := start + pageSize
	if end > totalGroups {
		end = totalGroups
	}

	return ctx.JSON(LogsResponse{
		Groups:      groups[start:end],
		TotalLogs:   totalLogs,
		TotalGroups: totalGroups,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  (totalGroups + pageSize - 1) / pageSize,
		DateFrom:    dateFrom,
		DateTo:      dateTo,
	})
}

// GetLogStats returns request counts, latency and top paths
func (c *RequestLogController) GetLogStats(ctx *fiber.Ctx) error {
	dateFrom, dateTo, err := c.dateRange(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	logs, err := c.readLogs(dateFrom, dateTo)
	if err != nil {
		Logger.L.Error("Error reading logs", "path", c.Path, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read logs"})
	}

	var successful, failed int
	var total, minLatency, maxLatency time.Duration
	methodStats := make(map[string]int)
	statusStats := make(map[int]int)
	pathStats := make(map[string]int)

	for i, entry := range logs {
		if isSuccess(entry.Status) {
			successful++
		} else if entry.Status >= 400 {
			failed++
		}
		total += entry.Latency
		if i == 0 || entry.Latency < minLatency {
			minLatency = entry.Latency
		}
		if entry.Latency > maxLatency {
			maxLatency = entry.Latency
		}
		methodStats[entry.Method]++
		statusStats[entry.Status]++
		pathStats[entry.Path]++
	}

	var avgLatency time.Duration
	successRate := 0.0
	if len(logs) > 0 {
		avgLatency = total / time.Duration(len(logs))
		successRate = float64(successful) / float64(len(logs)) * 100
	}

	type pathCount struct {
		Path  string `json:"path"`
		Count int    `json:"count"`
	}
	topPaths := make([]pathCount, 0, len(pathStats))
	for path, count := range pathStats {
		topPaths = append(topPaths, pathCount{Path: path, Count: count})
	}
	sort.Slice(topPaths, func(i, j int) bool {
		if topPaths[i].Count != topPaths[j].Count {
			return topPaths[i].Count > topPaths[j].Count
		}
		return topPaths[i].Path < topPaths[j].Path
	})
	if len(topPaths) > 10 {
		topPaths = topPaths[:10]
	}

	return ctx.JSON(fiber.Map{
		"total_requests":      len(logs),
		"successful_requests": successful,
		"error_requests":      failed,
		"success_rate":        successRate,
		"avg_latency_ms":      latencyMs(avgLatency),
		"min_latency_ms":      latencyMs(minLatency),
		"max_latency_ms":      latencyMs(maxLatency),
		"method_stats":        methodStats,
		"status_stats":        statusStats,
		"top_paths":           topPaths,
		"date_from":           dateFrom,
		"date_to":             dateTo,
	})
}
