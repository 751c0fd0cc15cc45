package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/repo"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/service"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/xe"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/pkg/nostd"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
	h  *DrawdownHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "drawdown.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		models.TradingAccount{}, models.BalanceHistory{},
		models.AccountDrawdown{}, models.ConsolidatedDrawdown{},
		models.DrawdownAlertHistory{}, models.UserDrawdownSettings{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zap.NewNop()
	conf := &config.Config{}
	conf.Normalize()

	accounts := repo.NewTradingAccountRepo(db)
	histories := repo.NewBalanceHistoryRepo(db)
	ledger := repo.NewDrawdownAlertHistoryRepo(db)
	settings := service.NewUserSettingsService(log, conf, repo.NewUserDrawdownSettingsRepo(db))
	gate := service.NewAlertGate(log, ledger, service.NewAlertPolicy(conf))
	alerts := service.NewDrawdownAlertService(log, gate, service.NewLogDispatcher(log), ledger)
	account := service.NewAccountDrawdownService(log, conf, accounts, histories, repo.NewAccountDrawdownRepo(db), settings, alerts)
	consolidated := service.NewConsolidatedDrawdownService(log, conf, accounts, histories, repo.NewConsolidatedDrawdownRepo(db), settings, alerts)
	sweeper := service.NewDrawdownSweeper(log, accounts, account, consolidated)

	h := NewDrawdownHandler(log, conf, account, consolidated, settings, sweeper)
	h.now = func() time.Time { return time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC) }

	e := echo.New()
	cv := nostd.CustomValidator{Validator: validator.New()}
	require.NoError(t, cv.TransInit())
	e.Validator = &cv
	h.RegisterRoutes(e.Group("/api"))

	seed := []interface{}{
		&models.TradingAccount{ID: "A1", UserID: "u1", AccountNumber: "A-100", AccountType: models.AccountTypeStandard, Currency: "USD", Balance: 800, IsActive: true},
		&models.TradingAccount{ID: "C1", UserID: "u1", AccountNumber: "CENT-1", AccountType: models.AccountTypeCent, Currency: "USD", Balance: 500000, IsActive: true},
		&models.BalanceHistory{ID: ulid.Make().String(), AccountID: "A1", Balance: 1000, Timestamp: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
		&models.BalanceHistory{ID: ulid.Make().String(), AccountID: "C1", Balance: 600000, Timestamp: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)},
	}
	for _, m := range seed {
		require.NoError(t, db.Create(m).Error)
	}

	return &testServer{e: e, db: db, h: h}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	var handlerErr error
	s.e.HTTPErrorHandler = func(err error, c echo.Context) {
		handlerErr = err
	}
	s.e.ServeHTTP(rec, req)
	return rec, handlerErr
}

func TestComputeAndGetAccountDrawdown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec, err := s.do(t, http.MethodPost, "/api/drawdown/accounts/C1/compute",
		`{"user_id":"u1","date":"2026-10-16","period":"daily"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var computed service.DrawdownView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &computed))
	assert.InDelta(t, 16.67, computed.DrawdownPercent, 1e-9)
	assert.True(t, computed.IsCentAccount)

	rec, err = s.do(t, http.MethodGet, "/api/drawdown/accounts/C1?date=2026-10-16&period=daily", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var got service.DrawdownView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, computed.PeakBalance, got.PeakBalance)
	assert.Equal(t, computed.CurrentBalance, got.CurrentBalance)
	assert.Equal(t, computed.DrawdownAmount, got.DrawdownAmount)
	assert.Equal(t, computed.DrawdownPercent, got.DrawdownPercent)

	rec, err = s.do(t, http.MethodGet, "/api/drawdown/accounts/C1/history?start=2026-10-01&end=2026-10-31&period=daily", "")
	require.NoError(t, err)
	var history []service.DrawdownView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "2026-10-16", history[0].PeriodBucket)
}

func TestGetAccountDrawdownDefaultsToToday(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec, err := s.do(t, http.MethodGet, "/api/drawdown/accounts/A1?period=daily", "")
	require.NoError(t, err)
	var got service.DrawdownView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2026-10-16", got.PeriodBucket)
	assert.InDelta(t, 20, got.DrawdownPercent, 1e-9)

	var count int64
	require.NoError(t, s.db.Model(&models.AccountDrawdown{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAccountErrors(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	_, err := s.do(t, http.MethodGet, "/api/drawdown/accounts/missing?period=daily", "")
	assert.ErrorIs(t, err, xe.ErrAccountNotFound)

	_, err = s.do(t, http.MethodPost, "/api/drawdown/accounts/A1/compute", `{"user_id":"u2","period":"daily"}`)
	assert.True(t, xe.IsNotFound(err))

	_, err = s.do(t, http.MethodGet, "/api/drawdown/accounts/A1?period=yearly", "")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)

	_, err = s.do(t, http.MethodGet, "/api/drawdown/accounts/A1?period=daily&date=16-10-2026", "")
	assert.ErrorIs(t, err, xe.ErrInvalidParams)
}

func TestConsolidatedEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	_, err := s.do(t, http.MethodGet, "/api/drawdown/users/u1/consolidated?date=2026-10-16&period=daily", "")
	assert.ErrorIs(t, err, xe.ErrRecordNotFound)

	rec, err := s.do(t, http.MethodPost, "/api/drawdown/users/u1/consolidated/compute", `{"date":"2026-10-16","period":"daily"}`)
	require.NoError(t, err)
	var computed service.ConsolidatedView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &computed))

	// A1: 1000 → 800；C1: 6000 → 5000
	assert.Equal(t, 2, computed.AccountCount)
	assert.InDelta(t, 7000, computed.TotalPeakBalance, 1e-9)
	assert.InDelta(t, 5800, computed.TotalCurrentBalance, 1e-9)
	assert.InDelta(t, 1200, computed.TotalDrawdownAmount, 1e-9)
	assert.InDelta(t, 17.14, computed.TotalDrawdownPercent, 1e-9)

	rec, err = s.do(t, http.MethodGet, "/api/drawdown/users/u1/consolidated?date=2026-10-16&period=daily", "")
	require.NoError(t, err)
	var got service.ConsolidatedView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, computed.TotalDrawdownPercent, got.TotalDrawdownPercent)

	rec, err = s.do(t, http.MethodGet, "/api/drawdown/users/u1/consolidated/history?start=2026-10-16&end=2026-10-16&period=daily", "")
	require.NoError(t, err)
	var history []service.ConsolidatedView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history, 1)
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec, err := s.do(t, http.MethodGet, "/api/drawdown/users/u1/settings", "")
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), `"threshold_percent":"1000"`)

	rec, err = s.do(t, http.MethodPut, "/api/drawdown/users/u1/settings", `{"threshold_percent":"15"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = s.do(t, http.MethodPut, "/api/drawdown/users/u1/settings", `{"threshold_percent":"-1"}`)
	assert.ErrorIs(t, err, xe.ErrInvalidParams)

	// 15% 阈值下合并回撤 17.14% 触发一次告警
	_, err = s.do(t, http.MethodPost, "/api/drawdown/users/u1/consolidated/compute", `{"date":"2026-10-16","period":"daily"}`)
	require.NoError(t, err)

	var alerts []models.DrawdownAlertHistory
	require.NoError(t, s.db.Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeConsolidated, alerts[0].AlertType)
	assert.Nil(t, alerts[0].AccountNumber)
	assert.Equal(t, int64(1714), alerts[0].DrawdownPercent)
}

func TestSweepEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec, err := s.do(t, http.MethodPost, "/api/drawdown/sweep?period=daily&date=2026-10-16", "")
	require.NoError(t, err)

	var result service.SweepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, service.SweepResult{Accounts: 2, Users: 1}, result)

	var count int64
	require.NoError(t, s.db.Model(&models.AccountDrawdown{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	require.NoError(t, s.db.Model(&models.ConsolidatedDrawdown{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestQueryParametersBind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		target string
	}{
		{name: "get account", method: http.MethodGet, target: "/api/drawdown/accounts/A1?date=2026-10-16&period=daily"},
		{name: "compute consolidated", method: http.MethodPost, target: "/api/drawdown/users/u1/consolidated/compute?date=2026-10-16&period=weekly"},
		{name: "get consolidated", method: http.MethodGet, target: "/api/drawdown/users/u1/consolidated?date=2026-10-16&period=weekly"},
		{name: "sweep", method: http.MethodPost, target: "/api/drawdown/sweep?period=monthly&date=2026-10-16"},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		rec, err := s.do(t, tt.method, tt.target, "")
		require.NoError(t, err, tt.name)
		assert.Equal(t, http.StatusOK, rec.Code, tt.name)
	}

	var weekly models.ConsolidatedDrawdown
	require.NoError(t, s.db.Where("period = ?", models.PeriodWeekly).First(&weekly).Error)
	assert.Equal(t, "2026-10-16", weekly.PeriodBucket)

	var monthly int64
	require.NoError(t, s.db.Model(&models.AccountDrawdown{}).Where("period = ?", models.PeriodMonthly).Count(&monthly).Error)
	assert.Equal(t, int64(2), monthly)
}
