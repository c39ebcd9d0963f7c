package domain

import "time"

// LoginAttempt is an append-only audit row. Rows are never updated or deleted
// here; retention is an operational concern.
type LoginAttempt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IP        string    `gorm:"size:64;index:idx_login_attempts_ip_created" json:"ip"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	Succeeded bool      `gorm:"not null" json:"succeeded"`
	CreatedAt time.Time `gorm:"index:idx_login_attempts_ip_created" json:"created_at"`
}
