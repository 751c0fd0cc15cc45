package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errStoreDown = errors.New("connection refused")

type fakeAccounts struct {
	accounts []models.TradingAccount
	err      error
}

func (f *fakeAccounts) FindAccount(ctx context.Context, id string) (models.TradingAccount, error) {
	if f.err != nil {
		return models.TradingAccount{}, f.err
	}
	for _, a := range f.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return models.TradingAccount{}, gorm.ErrRecordNotFound
}

func (f *fakeAccounts) FindActiveByUser(ctx context.Context, userID string) ([]models.TradingAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.TradingAccount
	for _, a := range f.accounts {
		if a.UserID == userID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) FindActiveUserIDs(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := map[string]bool{}
	var out []string
	for _, a := range f.accounts {
		if a.IsActive && !seen[a.UserID] {
			seen[a.UserID] = true
			out = append(out, a.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeHistories struct {
	points []models.BalanceHistory
	err    error
}

func (f *fakeHistories) FindInRange(ctx context.Context, accountID string, start, end time.Time) ([]models.BalanceHistory, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.BalanceHistory
	for _, p := range f.points {
		if p.AccountID == accountID && !p.Timestamp.Before(start) && p.Timestamp.Before(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeAccountDrawdowns struct {
	mu      sync.Mutex
	records map[string]models.AccountDrawdown
	err     error
	writes  int
}

func newFakeAccountDrawdowns() *fakeAccountDrawdowns {
	return &fakeAccountDrawdowns{records: map[string]models.AccountDrawdown{}}
}

func accountDrawdownKey(accountID, bucket string, period models.Period) string {
	return accountID + "|" + bucket + "|" + string(period)
}

func (f *fakeAccountDrawdowns) FindByKey(ctx context.Context, accountID, bucket string, period models.Period) (models.AccountDrawdown, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.AccountDrawdown{}, f.err
	}
	m, ok := f.records[accountDrawdownKey(accountID, bucket, period)]
	if !ok {
		return models.AccountDrawdown{}, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeAccountDrawdowns) UpsertIfGreater(ctx context.Context, m *models.AccountDrawdown) (models.AccountDrawdown, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.AccountDrawdown{}, f.err
	}
	f.writes++
	key := accountDrawdownKey(m.AccountID, m.PeriodBucket, m.Period)
	existing, ok := f.records[key]
	if !ok || existing.DrawdownPercent <= m.DrawdownPercent {
		f.records[key] = *m
	}
	return f.records[key], nil
}

func (f *fakeAccountDrawdowns) FindRange(ctx context.Context, accountID, startBucket, endBucket string, period models.Period) ([]models.AccountDrawdown, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AccountDrawdown
	for _, m := range f.records {
		if m.AccountID == accountID && m.Period == period && m.PeriodBucket >= startBucket && m.PeriodBucket <= endBucket {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodBucket < out[j].PeriodBucket })
	return out, nil
}

type fakeConsolidatedDrawdowns struct {
	mu      sync.Mutex
	records map[string]models.ConsolidatedDrawdown
	writes  int
}

func newFakeConsolidatedDrawdowns() *fakeConsolidatedDrawdowns {
	return &fakeConsolidatedDrawdowns{records: map[string]models.ConsolidatedDrawdown{}}
}

func (f *fakeConsolidatedDrawdowns) FindByKey(ctx context.Context, userID, bucket string, period models.Period) (models.ConsolidatedDrawdown, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.records[accountDrawdownKey(userID, bucket, period)]
	if !ok {
		return models.ConsolidatedDrawdown{}, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeConsolidatedDrawdowns) UpsertIfGreater(ctx context.Context, m *models.ConsolidatedDrawdown) (models.ConsolidatedDrawdown, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	key := accountDrawdownKey(m.UserID, m.PeriodBucket, m.Period)
	existing, ok := f.records[key]
	if !ok || existing.TotalDrawdownPercent <= m.TotalDrawdownPercent {
		f.records[key] = *m
	}
	return f.records[key], nil
}

func (f *fakeConsolidatedDrawdowns) FindRange(ctx context.Context, userID, startBucket, endBucket string, period models.Period) ([]models.ConsolidatedDrawdown, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ConsolidatedDrawdown
	for _, m := range f.records {
		if m.UserID == userID && m.Period == period && m.PeriodBucket >= startBucket && m.PeriodBucket <= endBucket {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodBucket < out[j].PeriodBucket })
	return out, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	rows    []models.DrawdownAlertHistory
	readErr error
}

func (f *fakeLedger) FindSentSince(ctx context.Context, userID string, accountNumber *string, alertType models.AlertType, since time.Time) ([]models.DrawdownAlertHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []models.DrawdownAlertHistory
	for _, row := range f.rows {
		if row.UserID != userID || row.AlertType != alertType || !row.SentAt.After(since) {
			continue
		}
		if (row.AccountNumber == nil) != (accountNumber == nil) {
			continue
		}
		if accountNumber != nil && *row.AccountNumber != *accountNumber {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

func (f *fakeLedger) Append(ctx context.Context, row *models.DrawdownAlertHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *row)
	return nil
}

func (f *fakeLedger) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeThresholds struct {
	threshold decimal.Decimal
}

func (f fakeThresholds) ThresholdPercent(ctx context.Context, userID string) (decimal.Decimal, error) {
	return f.threshold, nil
}

type sentAlert struct {
	UserID    string
	Payload   AlertPayload
	Currency  string
	AlertType models.AlertType
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []sentAlert
	err  error
}

func (f *fakeDispatcher) Send(ctx context.Context, userID string, payload AlertPayload, currency string, alertType models.AlertType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentAlert{UserID: userID, Payload: payload, Currency: currency, AlertType: alertType})
	return nil
}

// fixture 组装一套基于内存存储的回撤服务
type fixture struct {
	clock        time.Time
	accounts     *fakeAccounts
	histories    *fakeHistories
	drawdowns    *fakeAccountDrawdowns
	consolidated *fakeConsolidatedDrawdowns
	ledger       *fakeLedger
	dispatcher   *fakeDispatcher

	account      *AccountDrawdownService
	consolidator *ConsolidatedDrawdownService
	sweeper      *DrawdownSweeper
}

func newFixture(threshold string, accounts ...models.TradingAccount) *fixture {
	logger := zap.NewNop()
	conf := &config.Config{}
	conf.Normalize()

	f := &fixture{
		clock:        time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
		accounts:     &fakeAccounts{accounts: accounts},
		histories:    &fakeHistories{},
		drawdowns:    newFakeAccountDrawdowns(),
		consolidated: newFakeConsolidatedDrawdowns(),
		ledger:       &fakeLedger{},
		dispatcher:   &fakeDispatcher{},
	}

	thresholds := fakeThresholds{threshold: decimal.RequireFromString(threshold)}
	gate := NewAlertGate(logger, f.ledger, NewAlertPolicy(conf))
	gate.now = f.now
	alerts := NewDrawdownAlertService(logger, gate, f.dispatcher, f.ledger)
	alerts.now = f.now

	f.account = NewAccountDrawdownService(logger, conf, f.accounts, f.histories, f.drawdowns, thresholds, alerts)
	f.consolidator = NewConsolidatedDrawdownService(logger, conf, f.accounts, f.histories, f.consolidated, thresholds, alerts)
	f.sweeper = NewDrawdownSweeper(logger, f.accounts, f.account, f.consolidator)
	return f
}

func (f *fixture) now() time.Time {
	return f.clock
}

func (f *fixture) addHistory(accountID string, at time.Time, balance float64) {
	f.histories.points = append(f.histories.points, models.BalanceHistory{
		AccountID: accountID,
		Balance:   balance,
		Timestamp: at,
	})
}

func (f *fixture) setBalance(accountID string, balance float64) {
	for i := range f.accounts.accounts {
		if f.accounts.accounts[i].ID == accountID {
			f.accounts.accounts[i].Balance = balance
		}
	}
}

func standardAccount(id, userID, number string, balance float64) models.TradingAccount {
	return models.TradingAccount{
		ID:            id,
		UserID:        userID,
		AccountNumber: number,
		AccountType:   models.AccountTypeStandard,
		Currency:      "USD",
		Balance:       balance,
		IsActive:      true,
	}
}

func centAccount(id, userID, number string, balance float64) models.TradingAccount {
	a := standardAccount(id, userID, number, balance)
	a.AccountType = models.AccountTypeCent
	return a
}
