package config

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultThresholdPercent     = 1000 // 默认阈值足够大，相当于关闭告警
	DefaultAlertWindowHours     = 24
	DefaultAlertMaxPerWindow    = 2
	DefaultAlertMinSpacingHours = 12
	DefaultCurrency             = "USD"
)

type Config struct {
	Telegram TelegramConf `json:"telegram"`
	Drawdown DrawdownConf `json:"drawdown"`
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

type DrawdownConf struct {
	DefaultThresholdPercent float64 `json:"default_threshold_percent"` // 用户未配置时的回撤告警阈值(%)，默认1000
	Timezone                string  `json:"timezone"`                  // 周期划分使用的时区，默认UTC
	DefaultCurrency         string  `json:"default_currency"`          // 合并回撤告警使用的币种，默认USD
	AlertWindowHours        int     `json:"alert_window_hours"`        // 告警限流窗口（小时），默认24
	AlertMaxPerWindow       int     `json:"alert_max_per_window"`      // 窗口内最多告警次数，默认2
	AlertMinSpacingHours    int     `json:"alert_min_spacing_hours"`   // 两次告警最小间隔（小时），默认12
}

// Normalize 填充默认值
func (c *Config) Normalize() {
	d := &c.Drawdown
	if d.DefaultThresholdPercent <= 0 {
		d.DefaultThresholdPercent = DefaultThresholdPercent
	}
	if d.Timezone == "" {
		d.Timezone = "UTC"
	}
	if d.DefaultCurrency == "" {
		d.DefaultCurrency = DefaultCurrency
	}
	if d.AlertWindowHours <= 0 {
		d.AlertWindowHours = DefaultAlertWindowHours
	}
	if d.AlertMaxPerWindow <= 0 {
		d.AlertMaxPerWindow = DefaultAlertMaxPerWindow
	}
	if d.AlertMinSpacingHours <= 0 {
		d.AlertMinSpacingHours = DefaultAlertMinSpacingHours
	}
}

// Location 周期划分所用时区
func (d DrawdownConf) Location() (*time.Location, error) {
	if d.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(d.Timezone)
}

func (d DrawdownConf) DefaultThreshold() decimal.Decimal {
	return decimal.NewFromFloat(d.DefaultThresholdPercent)
}

func (d DrawdownConf) AlertWindow() time.Duration {
	return time.Duration(d.AlertWindowHours) * time.Hour
}

func (d DrawdownConf) AlertMinSpacing() time.Duration {
	return time.Duration(d.AlertMinSpacingHours) * time.Hour
}
