package domain

import "time"

type Project struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StoredFile is the dashboard's view of an uploaded object. PublicID is the
// unguessable share-link key. ExpiresAt is fixed at registration time and is
// never recomputed when share settings change afterwards.
type StoredFile struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ProjectID     uint       `gorm:"index;not null" json:"project_id"`
	Name          string     `gorm:"size:512;not null" json:"name"`
	PublicID      string     `gorm:"size:64;uniqueIndex;not null" json:"public_id"`
	BlobKey       string     `gorm:"size:1024;not null" json:"-"`
	ContentType   string     `gorm:"size:255" json:"content_type"`
	SizeBytes     int64      `json:"size_bytes"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at,omitempty"`
	DownloadCount int64      `gorm:"not null;default:0" json:"download_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SharePassword holds the derived password for one file, at most one row per
// file. Its presence is independent of whether the effective policy demands a
// password.
type SharePassword struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	FileID    uint      `gorm:"uniqueIndex;not null" json:"file_id"`
	Hash      string    `gorm:"size:128;not null" json:"-"`
	Salt      string    `gorm:"size:64;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DownloadLog is appended once per granted download and doubles as the
// population counted by the per-IP rate window.
type DownloadLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileID    uint      `gorm:"index:idx_download_logs_file_ip_created;not null" json:"file_id"`
	IP        string    `gorm:"size:64;index:idx_download_logs_file_ip_created" json:"ip"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time `gorm:"index:idx_download_logs_file_ip_created" json:"created_at"`
}
