package internal

import (
	"fmt"
	"net/http"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/handler"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/service"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/pkg/nostd"
	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewDrawdownApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewDrawdownApp() orz.Application {
	return &DrawdownApp{}
}

var _ orz.Application = (*DrawdownApp)(nil)

type AppComponents struct {
	DrawdownHandler *handler.DrawdownHandler

	AccountDrawdownService      *service.AccountDrawdownService
	ConsolidatedDrawdownService *service.ConsolidatedDrawdownService
	UserSettingsService         *service.UserSettingsService
	DrawdownSweeper             *service.DrawdownSweeper
}

type DrawdownApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *DrawdownApp) GetComponents() *AppComponents {
	return r.components
}

func (r *DrawdownApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}
	conf.Normalize()
	if _, err := conf.Drawdown.Location(); err != nil {
		return fmt.Errorf("invalid drawdown timezone %q: %v", conf.Drawdown.Timezone, err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.TradingAccount{}, models.BalanceHistory{},
		models.AccountDrawdown{}, models.ConsolidatedDrawdown{},
		models.DrawdownAlertHistory{}, models.UserDrawdownSettings{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	logger.Info("drawdown engine configured",
		zap.String("timezone", conf.Drawdown.Timezone),
		zap.Float64("default_threshold_percent", conf.Drawdown.DefaultThresholdPercent),
		zap.Int("alert_window_hours", conf.Drawdown.AlertWindowHours),
		zap.Int("alert_max_per_window", conf.Drawdown.AlertMaxPerWindow),
		zap.Int("alert_min_spacing_hours", conf.Drawdown.AlertMinSpacingHours),
		zap.Bool("telegram", conf.Telegram.Enabled),
	)

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	api := e.Group("/api")
	{
		r.components.DrawdownHandler.RegisterRoutes(api)
	}

	return nil
}
