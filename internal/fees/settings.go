package fees

import (
	"context"
	"errors"

	"github.com/pujasera/pos-backend/pkg/db/models"
	"gorm.io/gorm"
)

const (
	DefaultTenantBonusTokens   = 50
	DefaultPujaseraBonusTokens = 100
)

// Settings is the full platform settings record: fee schedule plus registration bonuses.
type Settings struct {
	Schedule            Schedule
	TenantBonusTokens   float64
	PujaseraBonusTokens float64
}

// ScheduleSource loads the current settings. Callers read it once per invocation.
type ScheduleSource interface {
	Load(ctx context.Context) (Settings, error)
}

// Repository reads the platform_settings row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Load returns the stored settings, falling back to defaults per field when the
// row or any column is absent. A column explicitly set to 0 is honored.
func (r *Repository) Load(ctx context.Context) (Settings, error) {
	var row models.PlatformSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", models.PlatformSettingsFeesID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}

	def := DefaultSchedule()
	settings := Settings{
		Schedule: Schedule{
			FeePercentage: deref(row.FeePercentage, def.FeePercentage),
			MinFeeRp:      deref(row.MinFeeRp, def.MinFeeRp),
			MaxFeeRp:      deref(row.MaxFeeRp, def.MaxFeeRp),
			TokenValueRp:  deref(row.TokenValueRp, def.TokenValueRp),
		}.WithDefaults(),
		TenantBonusTokens:   DefaultTenantBonusTokens,
		PujaseraBonusTokens: DefaultPujaseraBonusTokens,
	}
	if row.TenantBonusTokens != nil {
		settings.TenantBonusTokens = *row.TenantBonusTokens
	}
	if row.PujaseraBonusTokens != nil {
		settings.PujaseraBonusTokens = *row.PujaseraBonusTokens
	}
	return settings, nil
}

// StaticSource serves fixed settings; used by tests and tools.
type StaticSource Settings

func (s StaticSource) Load(context.Context) (Settings, error) {
	out := Settings(s)
	out.Schedule = out.Schedule.WithDefaults()
	return out, nil
}

func defaultSettings() Settings {
	return Settings{
		Schedule:            DefaultSchedule(),
		TenantBonusTokens:   DefaultTenantBonusTokens,
		PujaseraBonusTokens: DefaultPujaseraBonusTokens,
	}
}

// deref keeps a stored zero; only a NULL column takes the fallback.
func deref(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
