package FiberConfig

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"Quarry/Config"
	"Quarry/CronJobs"
	"Quarry/Ledger"
	"Quarry/Models"
	"Quarry/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testConfig(t *testing.T, secret string) *Config.AppConfig {
	return &Config.AppConfig{
		Port:            "0",
		DBDriver:        "sqlite",
		LogLevel:        "error",
		RequestLogFile:  filepath.Join(t.TempDir(), "requests.log"),
		JWTSecret:       secret,
		BalanceCacheTTL: time.Minute,
		CORSOrigins:     "*",
	}
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return Deps{
		DB:        db,
		Memo:      Ledger.NewMemo(time.Minute),
		Integrity: CronJobs.NewIntegrityChecker(db, "", false),
	}
}

func TestHealth(t *testing.T) {
	app := NewApp(testConfig(t, ""), testDeps(t))
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestLiteralRoutesWinOverVendorType(t *testing.T) {
	app := NewApp(testConfig(t, ""), testDeps(t))

	for _, path := range []string{"/api/vendors/outstanding", "/api/vendors/summary", "/api/vendors/monthly", "/api/vendors/payments"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/vendors/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/vendors/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/vendors/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWritesNeedWritePermission(t *testing.T) {
	const secret = "s3cret"
	app := NewApp(testConfig(t, secret), testDeps(t))
	body := `{"name":"Blast Co","openingBalance":5000}`

	req := httptest.NewRequest(http.MethodPost, "/api/vendors/explosive", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	reader, err := middleware.IssueToken(secret, "accounts", middleware.PermissionRead, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/vendors/explosive", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+reader)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/vendors/payments/import", nil)
	req.Header.Set("Authorization", "Bearer "+reader)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	writer, err := middleware.IssueToken(secret, "owner", middleware.PermissionWrite, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/vendors/explosive", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+writer)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/vendors/outstanding", nil)
	req.Header.Set("Authorization", "Bearer "+reader)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []struct {
		VendorName string        `json:"vendorName"`
		Status     Ledger.Status `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, "Blast Co", items[0].VendorName)
	assert.Equal(t, Ledger.StatusOwed, items[0].Status)
}
