package models

import "time"

// Period 回撤统计周期
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// AccountDrawdown 单账户周期最大回撤
// (account_id, period_bucket, period) 唯一；drawdown_percent 在同一键上只增不减
type AccountDrawdown struct {
	ID              string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	AccountID       string    `gorm:"type:varchar(26);not null;uniqueIndex:uk_account_drawdowns_key,priority:1" json:"account_id"`
	UserID          string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	PeriodBucket    string    `gorm:"type:varchar(10);not null;uniqueIndex:uk_account_drawdowns_key,priority:2" json:"period_bucket"` // ISO 日期 2006-01-02
	Period          Period    `gorm:"type:varchar(10);not null;uniqueIndex:uk_account_drawdowns_key,priority:3" json:"period"`
	PeakBalance     float64   `gorm:"type:decimal(20,8);not null" json:"peak_balance"`
	CurrentBalance  float64   `gorm:"type:decimal(20,8);not null" json:"current_balance"`
	DrawdownAmount  float64   `gorm:"type:decimal(20,8);not null" json:"drawdown_amount"`
	DrawdownPercent int64     `gorm:"not null" json:"drawdown_percent"` // 百分比×100，15.50% 存为 1550
	IsCentAccount   bool      `gorm:"not null" json:"is_cent_account"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (AccountDrawdown) TableName() string {
	return "account_drawdowns"
}

func (d AccountDrawdown) Percent() int64 {
	return d.DrawdownPercent
}

// ConsolidatedDrawdown 用户全部活跃账户的合并回撤
type ConsolidatedDrawdown struct {
	ID                   string    `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID               string    `gorm:"type:varchar(36);not null;uniqueIndex:uk_consolidated_drawdowns_key,priority:1" json:"user_id"`
	PeriodBucket         string    `gorm:"type:varchar(10);not null;uniqueIndex:uk_consolidated_drawdowns_key,priority:2" json:"period_bucket"`
	Period               Period    `gorm:"type:varchar(10);not null;uniqueIndex:uk_consolidated_drawdowns_key,priority:3" json:"period"`
	TotalPeakBalance     float64   `gorm:"type:decimal(20,8);not null" json:"total_peak_balance"`
	TotalCurrentBalance  float64   `gorm:"type:decimal(20,8);not null" json:"total_current_balance"`
	TotalDrawdownAmount  float64   `gorm:"type:decimal(20,8);not null" json:"total_drawdown_amount"`
	TotalDrawdownPercent int64     `gorm:"not null" json:"total_drawdown_percent"`
	AccountCount         int       `gorm:"not null" json:"account_count"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (ConsolidatedDrawdown) TableName() string {
	return "consolidated_drawdowns"
}

func (d ConsolidatedDrawdown) Percent() int64 {
	return d.TotalDrawdownPercent
}
