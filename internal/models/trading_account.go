package models

import "time"

// AccountType 账户计价类型
type AccountType string

const (
	AccountTypeStandard AccountType = "STANDARD"
	AccountTypeCent     AccountType = "CENT" // 美分账户，金额需 ÷100 后才能与标准账户合并
)

// TradingAccount 交易账户（由外部账户目录维护，本服务只读）
type TradingAccount struct {
	ID            string      `gorm:"primaryKey;type:varchar(26)" json:"id"`
	UserID        string      `gorm:"type:varchar(36);not null;index" json:"user_id"`
	AccountNumber string      `gorm:"type:varchar(64);not null;index" json:"account_number"`
	Broker        string      `gorm:"type:varchar(64)" json:"broker"`
	AccountType   AccountType `gorm:"type:varchar(16);not null" json:"account_type"`
	Currency      string      `gorm:"type:varchar(8)" json:"currency"`
	Balance       float64     `gorm:"type:decimal(20,8);not null" json:"balance"` // 账户原始计价单位
	Equity        float64     `gorm:"type:decimal(20,8)" json:"equity"`
	IsActive      bool        `gorm:"not null;index" json:"is_active"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (TradingAccount) TableName() string {
	return "trading_accounts"
}

func (a TradingAccount) IsCent() bool {
	return a.AccountType == AccountTypeCent
}
