package models

import "time"

const PlatformSettingsFeesID = "fees"

// PlatformSettings is the externally managed fee schedule row.
type PlatformSettings struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	FeePercentage       *float64  `gorm:"column:fee_percentage"`
	MinFeeRp            *float64  `gorm:"column:min_fee_rp"`
	MaxFeeRp            *float64  `gorm:"column:max_fee_rp"`
	TokenValueRp        *float64  `gorm:"column:token_value_rp"`
	TenantBonusTokens   *float64  `gorm:"column:tenant_bonus_tokens"`
	PujaseraBonusTokens *float64  `gorm:"column:pujasera_bonus_tokens"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
