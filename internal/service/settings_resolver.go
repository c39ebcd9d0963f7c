package service

import "github.com/shareport/shareport/internal/domain"

// EffectiveShareSettings is the fully resolved policy for one file. Zero on
// ExpiryDays means links never expire from policy; zero on DownloadLimitPerIP
// means no per-IP cap.
type EffectiveShareSettings struct {
	Enabled               bool `json:"enabled"`
	PasswordRequired      bool `json:"password_required"`
	ExpiryDays            int  `json:"expiry_days"`
	DownloadLimitPerIP    int  `json:"download_limit_per_ip"`
	DownloadWindowMinutes int  `json:"download_window_minutes"`
}

// settingsTier is one optional-field source in the resolution chain.
type settingsTier struct {
	enabled               *bool
	passwordRequired      *bool
	expiryDays            *int
	downloadLimitPerIP    *int
	downloadWindowMinutes *int
}

// ResolveShareSettings walks file -> project -> global independently per
// field; the first non-nil value wins and global is the always-populated
// floor, so resolution terminates in at most three steps.
func ResolveShareSettings(global domain.GlobalShareSettings, project *domain.ProjectShareSettings, file *domain.FileShareSettings) EffectiveShareSettings {
	var tiers []settingsTier
	if file != nil {
		tiers = append(tiers, settingsTier{
			enabled:               file.Enabled,
			passwordRequired:      file.PasswordRequired,
			expiryDays:            file.ExpiryDays,
			downloadLimitPerIP:    file.DownloadLimitPerIP,
			downloadWindowMinutes: file.DownloadWindowMinutes,
		})
	}
	if project != nil {
		tiers = append(tiers, settingsTier{
			enabled:               project.Enabled,
			passwordRequired:      project.PasswordRequired,
			expiryDays:            project.ExpiryDays,
			downloadLimitPerIP:    project.DownloadLimitPerIP,
			downloadWindowMinutes: project.DownloadWindowMinutes,
		})
	}

	return EffectiveShareSettings{
		Enabled:               firstBool(collectBools(tiers, func(t settingsTier) *bool { return t.enabled }), global.Enabled),
		PasswordRequired:      firstBool(collectBools(tiers, func(t settingsTier) *bool { return t.passwordRequired }), global.PasswordRequired),
		ExpiryDays:            firstInt(collectInts(tiers, func(t settingsTier) *int { return t.expiryDays }), global.ExpiryDays),
		DownloadLimitPerIP:    firstInt(collectInts(tiers, func(t settingsTier) *int { return t.downloadLimitPerIP }), global.DownloadLimitPerIP),
		DownloadWindowMinutes: firstInt(collectInts(tiers, func(t settingsTier) *int { return t.downloadWindowMinutes }), global.DownloadWindowMinutes),
	}
}

func collectBools(tiers []settingsTier, pick func(settingsTier) *bool) []*bool {
	out := make([]*bool, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, pick(t))
	}
	return out
}

func collectInts(tiers []settingsTier, pick func(settingsTier) *int) []*int {
	out := make([]*int, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, pick(t))
	}
	return out
}

func firstBool(values []*bool, fallback bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return fallback
}

func firstInt(values []*int, fallback int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return fallback
}
