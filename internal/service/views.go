package service

import (
	"time"

	"github.com/Guibsrocha/sentra-partners-v3-sub001/internal/models"
)

// DrawdownView 单账户回撤，金额为账户原始计价单位，百分比为小数形式（16.67）
type DrawdownView struct {
	AccountID       string        `json:"account_id"`
	UserID          string        `json:"user_id"`
	PeriodBucket    string        `json:"period_bucket"`
	Period          models.Period `json:"period"`
	PeakBalance     float64       `json:"peak_balance"`
	CurrentBalance  float64       `json:"current_balance"`
	DrawdownAmount  float64       `json:"drawdown_amount"`
	DrawdownPercent float64       `json:"drawdown_percent"`
	IsCentAccount   bool          `json:"is_cent_account"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func NewDrawdownView(m models.AccountDrawdown) DrawdownView {
	return DrawdownView{
		AccountID:       m.AccountID,
		UserID:          m.UserID,
		PeriodBucket:    m.PeriodBucket,
		Period:          m.Period,
		PeakBalance:     m.PeakBalance,
		CurrentBalance:  m.CurrentBalance,
		DrawdownAmount:  m.DrawdownAmount,
		DrawdownPercent: decodePercent(m.DrawdownPercent),
		IsCentAccount:   m.IsCentAccount,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ConsolidatedView 用户合并回撤，金额已归一化
type ConsolidatedView struct {
	UserID               string        `json:"user_id"`
	PeriodBucket         string        `json:"period_bucket"`
	Period               models.Period `json:"period"`
	TotalPeakBalance     float64       `json:"total_peak_balance"`
	TotalCurrentBalance  float64       `json:"total_current_balance"`
	TotalDrawdownAmount  float64       `json:"total_drawdown_amount"`
	TotalDrawdownPercent float64       `json:"total_drawdown_percent"`
	AccountCount         int           `json:"account_count"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

func NewConsolidatedView(m models.ConsolidatedDrawdown) ConsolidatedView {
	return ConsolidatedView{
		UserID:               m.UserID,
		PeriodBucket:         m.PeriodBucket,
		Period:               m.Period,
		TotalPeakBalance:     m.TotalPeakBalance,
		TotalCurrentBalance:  m.TotalCurrentBalance,
		TotalDrawdownAmount:  m.TotalDrawdownAmount,
		TotalDrawdownPercent: decodePercent(m.TotalDrawdownPercent),
		AccountCount:         m.AccountCount,
		UpdatedAt:            m.UpdatedAt,
	}
}
