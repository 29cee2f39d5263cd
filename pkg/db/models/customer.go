package models

import "time"

// Customer holds the loyalty balance of a member, scoped to a store or a pujasera group.
type Customer struct {
	ID            string    `gorm:"column:id;primaryKey"`
	ScopeID       string    `gorm:"column:scope_id;not null"`
	Name          string    `gorm:"column:name;not null"`
	Phone         *string   `gorm:"column:phone"`
	LoyaltyPoints int64     `gorm:"column:loyalty_points;not null;default:0"`
	MemberTier    string    `gorm:"column:member_tier;not null;default:'bronze'"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
