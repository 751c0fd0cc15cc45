package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserDrawdownSettings 用户回撤告警配置
type UserDrawdownSettings struct {
	UserID           string          `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	ThresholdPercent decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"threshold_percent"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (UserDrawdownSettings) TableName() string {
	return "user_drawdown_settings"
}
