package domain

import "time"

// Sharing policy is configured in three tiers: one global row that is always
// fully populated, plus optional per-project and per-file overrides whose nil
// fields inherit from the next broader tier. A pointer to a zero value is an
// explicit override ("no limit"), distinct from nil ("not configured").

// GlobalShareSettings is the resolution floor. A zero ExpiryDays means links
// never expire from policy; a zero DownloadLimitPerIP means no per-IP cap.
type GlobalShareSettings struct {
	ID                    uint      `gorm:"primaryKey" json:"-"`
	Enabled               bool      `gorm:"not null" json:"enabled"`
	PasswordRequired      bool      `gorm:"not null" json:"password_required"`
	ExpiryDays            int       `gorm:"not null" json:"expiry_days"`
	DownloadLimitPerIP    int       `gorm:"not null" json:"download_limit_per_ip"`
	DownloadWindowMinutes int       `gorm:"not null" json:"download_window_minutes"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// DefaultGlobalShareSettings are the hard defaults seeded when no global row
// exists yet: sharing on, no password, no expiry, no download cap.
func DefaultGlobalShareSettings() GlobalShareSettings {
	return GlobalShareSettings{
		ID:                    1,
		Enabled:               true,
		PasswordRequired:      false,
		ExpiryDays:            0,
		DownloadLimitPerIP:    0,
		DownloadWindowMinutes: 60,
	}
}

type ProjectShareSettings struct {
	ID                    uint      `gorm:"primaryKey" json:"-"`
	ProjectID             uint      `gorm:"uniqueIndex;not null" json:"project_id"`
	Enabled               *bool     `json:"enabled,omitempty"`
	PasswordRequired      *bool     `json:"password_required,omitempty"`
	ExpiryDays            *int      `json:"expiry_days,omitempty"`
	DownloadLimitPerIP    *int      `json:"download_limit_per_ip,omitempty"`
	DownloadWindowMinutes *int      `json:"download_window_minutes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type FileShareSettings struct {
	ID                    uint      `gorm:"primaryKey" json:"-"`
	FileID                uint      `gorm:"uniqueIndex;not null" json:"file_id"`
	Enabled               *bool     `json:"enabled,omitempty"`
	PasswordRequired      *bool     `json:"password_required,omitempty"`
	ExpiryDays            *int      `json:"expiry_days,omitempty"`
	DownloadLimitPerIP    *int      `json:"download_limit_per_ip,omitempty"`
	DownloadWindowMinutes *int      `json:"download_window_minutes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
