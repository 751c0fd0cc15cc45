//go:build wireinject
// +build wireinject

package internal

import (
	"net/http"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/handler"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/repo"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/service"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/telegram"
)

const (
	telegramHTTPTimeout = 10 * time.Second
)

var (
	handlerSet = wire.NewSet(
		handler.NewDrawdownHandler,
	)

	repoSet = wire.NewSet(
		repo.NewTradingAccountRepo,
		repo.NewBalanceHistoryRepo,
		repo.NewAccountDrawdownRepo,
		repo.NewConsolidatedDrawdownRepo,
		repo.NewDrawdownAlertHistoryRepo,
		repo.NewUserDrawdownSettingsRepo,
		wire.Bind(new(service.AccountDirectory), new(*repo.TradingAccountRepo)),
		wire.Bind(new(service.BalanceHistoryStore), new(*repo.BalanceHistoryRepo)),
		wire.Bind(new(service.AccountDrawdownStore), new(*repo.AccountDrawdownRepo)),
		wire.Bind(new(service.ConsolidatedDrawdownStore), new(*repo.ConsolidatedDrawdownRepo)),
		wire.Bind(new(service.AlertLedger), new(*repo.DrawdownAlertHistoryRepo)),
		wire.Bind(new(service.UserSettingsStore), new(*repo.UserDrawdownSettingsRepo)),
	)

	drawdownSet = wire.NewSet(
		service.NewUserSettingsService,
		wire.Bind(new(service.ThresholdProvider), new(*service.UserSettingsService)),
		service.NewAlertPolicy,
		service.NewAlertGate,
		provideAlertDispatcher,
		service.NewDrawdownAlertService,
		service.NewAccountDrawdownService,
		service.NewConsolidatedDrawdownService,
		service.NewDrawdownSweeper,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		repoSet,
		drawdownSet,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

// provideAlertDispatcher 启用 Telegram 时通过机器人投递，否则仅记录日志
func provideAlertDispatcher(logger *zap.Logger, conf *config.Config) service.AlertDispatcher {
	if !conf.Telegram.Enabled {
		logger.Info("telegram disabled, drawdown alerts will only be logged")
		return service.NewLogDispatcher(logger)
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram, falling back to log dispatcher", zap.Error(err))
		return service.NewLogDispatcher(logger)
	}

	return service.NewTelegramDispatcher(logger, tg, conf.Telegram.ChatID)
}
