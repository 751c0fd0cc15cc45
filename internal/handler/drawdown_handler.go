package handler

import (
	"net/http"
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/config"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/service"
	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/xe"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DrawdownHandler 回撤查询与计算接口
type DrawdownHandler struct {
	logger              *zap.Logger
	accountService      *service.AccountDrawdownService
	consolidatedService *service.ConsolidatedDrawdownService
	settingsService     *service.UserSettingsService
	sweeper             *service.DrawdownSweeper
	loc                 *time.Location
	now                 func() time.Time
}

// NewDrawdownHandler 创建回撤处理器
func NewDrawdownHandler(
	logger *zap.Logger,
	conf *config.Config,
	accountService *service.AccountDrawdownService,
	consolidatedService *service.ConsolidatedDrawdownService,
	settingsService *service.UserSettingsService,
	sweeper *service.DrawdownSweeper,
) *DrawdownHandler {
	loc, err := conf.Drawdown.Location()
	if err != nil {
		logger.Warn("invalid drawdown timezone, falling back to UTC",
			zap.String("timezone", conf.Drawdown.Timezone), zap.Error(err))
		loc = time.UTC
	}
	return &DrawdownHandler{
		logger:              logger,
		accountService:      accountService,
		consolidatedService: consolidatedService,
		settingsService:     settingsService,
		sweeper:             sweeper,
		loc:                 loc,
		now:                 time.Now,
	}
}

// PeriodQuery 日期与周期参数，嵌入到各请求结构中，需导出才能被 echo 绑定
type PeriodQuery struct {
	Date   string `query:"date" json:"date"`
	Period string `query:"period" json:"period" validate:"required,oneof=daily weekly monthly"`
}

type accountComputeRequest struct {
	AccountID string `param:"id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	PeriodQuery
}

type accountQuery struct {
	AccountID string `param:"id" validate:"required"`
	PeriodQuery
}

type userQuery struct {
	UserID string `param:"userId" validate:"required"`
	PeriodQuery
}

type historyQuery struct {
	ID     string `param:"id"`
	UserID string `param:"userId"`
	Start  string `query:"start" validate:"required"`
	End    string `query:"end" validate:"required"`
	Period string `query:"period" validate:"required,oneof=daily weekly monthly"`
}

type settingsRequest struct {
	ThresholdPercent decimal.Decimal `json:"threshold_percent"`
}

type sweepRequest struct {
	PeriodQuery
}

// bind 依次绑定路径参数、查询参数和请求体，然后校验
// POST 请求同样读取查询参数，便于 crontab 直接调用 /sweep?period=daily
func bind(c echo.Context, req interface{}) error {
	binder := &echo.DefaultBinder{}
	if err := binder.BindPathParams(c, req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := binder.BindQueryParams(c, req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := binder.BindBody(c, req); err != nil {
		return xe.ErrInvalidParams
	}
	return c.Validate(req)
}

// resolve 解析日期和周期，日期为空时使用配置时区的今天
func (h *DrawdownHandler) resolve(q PeriodQuery) (time.Time, models.Period, error) {
	period, err := service.ParsePeriod(q.Period)
	if err != nil {
		return time.Time{}, "", err
	}
	if q.Date == "" {
		return h.now().In(h.loc), period, nil
	}
	date, err := service.ParseBucketDate(q.Date, h.loc)
	if err != nil {
		return time.Time{}, "", err
	}
	return date, period, nil
}

func (h *DrawdownHandler) resolveRange(q historyQuery) (time.Time, time.Time, models.Period, error) {
	period, err := service.ParsePeriod(q.Period)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	start, err := service.ParseBucketDate(q.Start, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	end, err := service.ParseBucketDate(q.End, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	return start, end, period, nil
}

// ComputeAccount 计算单账户回撤
// POST /api/drawdown/accounts/:id/compute
func (h *DrawdownHandler) ComputeAccount(c echo.Context) error {
	var req accountComputeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, period, err := h.resolve(req.PeriodQuery)
	if err != nil {
		return err
	}

	view, err := h.accountService.ComputeAccountDrawdown(c.Request().Context(), req.AccountID, req.UserID, date, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// GetAccount 查询单账户回撤，没有记录时实时计算
// GET /api/drawdown/accounts/:id
func (h *DrawdownHandler) GetAccount(c echo.Context) error {
	var req accountQuery
	if err := bind(c, &req); err != nil {
		return err
	}
	date, period, err := h.resolve(req.PeriodQuery)
	if err != nil {
		return err
	}

	view, err := h.accountService.GetAccountDrawdown(c.Request().Context(), req.AccountID, date, period)
	if err != nil {
		return err
	}
	if view == nil {
		return xe.ErrAccountNotFound
	}
	return c.JSON(http.StatusOK, view)
}

// GetAccountHistory 单账户回撤历史
// GET /api/drawdown/accounts/:id/history
func (h *DrawdownHandler) GetAccountHistory(c echo.Context) error {
	var req historyQuery
	if err := bind(c, &req); err != nil {
		return err
	}
	start, end, period, err := h.resolveRange(req)
	if err != nil {
		return err
	}

	views, err := h.accountService.GetAccountDrawdownHistory(c.Request().Context(), req.ID, start, end, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// ComputeConsolidated 计算用户合并回撤
// POST /api/drawdown/users/:userId/consolidated/compute
func (h *DrawdownHandler) ComputeConsolidated(c echo.Context) error {
	var req userQuery
	if err := bind(c, &req); err != nil {
		return err
	}
	date, period, err := h.resolve(req.PeriodQuery)
	if err != nil {
		return err
	}

	view, err := h.consolidatedService.ComputeConsolidatedDrawdown(c.Request().Context(), req.UserID, date, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// GetConsolidated 查询已存的合并回撤
// GET /api/drawdown/users/:userId/consolidated
func (h *DrawdownHandler) GetConsolidated(c echo.Context) error {
	var req userQuery
	if err := bind(c, &req); err != nil {
		return err
	}
	date, period, err := h.resolve(req.PeriodQuery)
	if err != nil {
		return err
	}

	view, err := h.consolidatedService.GetConsolidatedDrawdown(c.Request().Context(), req.UserID, date, period)
	if err != nil {
		return err
	}
	if view == nil {
		return xe.ErrRecordNotFound
	}
	return c.JSON(http.StatusOK, view)
}

// GetConsolidatedHistory 合并回撤历史
// GET /api/drawdown/users/:userId/consolidated/history
func (h *DrawdownHandler) GetConsolidatedHistory(c echo.Context) error {
	var req historyQuery
	if err := bind(c, &req); err != nil {
		return err
	}
	start, end, period, err := h.resolveRange(req)
	if err != nil {
		return err
	}

	views, err := h.consolidatedService.GetConsolidatedDrawdownHistory(c.Request().Context(), req.UserID, start, end, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// GetSettings 获取用户告警阈值
// GET /api/drawdown/users/:userId/settings
func (h *DrawdownHandler) GetSettings(c echo.Context) error {
	userID := c.Param("userId")
	threshold, err := h.settingsService.ThresholdPercent(c.Request().Context(), userID)
	if err != nil {
		return xe.Unavailable("find drawdown settings", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":           userID,
		"threshold_percent": threshold,
	})
}

// SetSettings 设置用户告警阈值
// PUT /api/drawdown/users/:userId/settings
func (h *DrawdownHandler) SetSettings(c echo.Context) error {
	userID := c.Param("userId")
	var req settingsRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := h.settingsService.SetThresholdPercent(c.Request().Context(), userID, req.ThresholdPercent); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id":           userID,
		"threshold_percent": req.ThresholdPercent.Round(2),
	})
}

// Sweep 计算所有活跃账户和用户，供外部定时任务调用
// POST /api/drawdown/sweep
func (h *DrawdownHandler) Sweep(c echo.Context) error {
	var req sweepRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	date, period, err := h.resolve(req.PeriodQuery)
	if err != nil {
		return err
	}

	result, err := h.sweeper.Sweep(c.Request().Context(), date, period)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// RegisterRoutes 注册路由
func (h *DrawdownHandler) RegisterRoutes(g *echo.Group) {
	drawdown := g.Group("/drawdown")

	drawdown.POST("/accounts/:id/compute", h.ComputeAccount)
	drawdown.GET("/accounts/:id", h.GetAccount)
	drawdown.GET("/accounts/:id/history", h.GetAccountHistory)

	drawdown.POST("/users/:userId/consolidated/compute", h.ComputeConsolidated)
	drawdown.GET("/users/:userId/consolidated", h.GetConsolidated)
	drawdown.GET("/users/:userId/consolidated/history", h.GetConsolidatedHistory)

	drawdown.GET("/users/:userId/settings", h.GetSettings)
	drawdown.PUT("/users/:userId/settings", h.SetSettings)

	drawdown.POST("/sweep", h.Sweep)
}
