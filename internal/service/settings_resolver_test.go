package service

import (
	"testing"

	"github.com/shareport/shareport/internal/domain"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func testGlobalSettings() domain.GlobalShareSettings {
	return domain.GlobalShareSettings{
		ID:                    1,
		Enabled:               true,
		PasswordRequired:      false,
		ExpiryDays:            0,
		DownloadLimitPerIP:    0,
		DownloadWindowMinutes: 60,
	}
}

func TestResolveShareSettingsGlobalFloor(t *testing.T) {
	got := ResolveShareSettings(testGlobalSettings(), nil, nil)
	want := EffectiveShareSettings{
		Enabled:               true,
		PasswordRequired:      false,
		ExpiryDays:            0,
		DownloadLimitPerIP:    0,
		DownloadWindowMinutes: 60,
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestResolveShareSettingsProjectOverridesSingleField(t *testing.T) {
	project := &domain.ProjectShareSettings{
		ProjectID:        1,
		PasswordRequired: boolPtr(true),
	}
	file := &domain.FileShareSettings{FileID: 1}

	got := ResolveShareSettings(testGlobalSettings(), project, file)
	if !got.Enabled {
		t.Fatal("enabled must inherit from global")
	}
	if !got.PasswordRequired {
		t.Fatal("password_required must come from the project tier")
	}
	if got.ExpiryDays != 0 || got.DownloadLimitPerIP != 0 {
		t.Fatalf("limits must inherit the global floor: %+v", got)
	}
}

func TestResolveShareSettingsFieldsResolveIndependently(t *testing.T) {
	project := &domain.ProjectShareSettings{
		ProjectID:          1,
		PasswordRequired:   boolPtr(true),
		DownloadLimitPerIP: intPtr(10),
	}
	file := &domain.FileShareSettings{
		FileID:     1,
		ExpiryDays: intPtr(7),
	}

	got := ResolveShareSettings(testGlobalSettings(), project, file)
	if got.ExpiryDays != 7 {
		t.Fatalf("expiry_days from file tier: got %d", got.ExpiryDays)
	}
	if got.DownloadLimitPerIP != 10 {
		t.Fatalf("download_limit from project tier: got %d", got.DownloadLimitPerIP)
	}
	if !got.PasswordRequired {
		t.Fatal("password_required from project tier")
	}
	if got.DownloadWindowMinutes != 60 {
		t.Fatalf("window from global: got %d", got.DownloadWindowMinutes)
	}
}

func TestResolveShareSettingsExplicitFalseBeatsBroaderTrue(t *testing.T) {
	project := &domain.ProjectShareSettings{
		ProjectID:        1,
		PasswordRequired: boolPtr(true),
	}
	file := &domain.FileShareSettings{
		FileID:           1,
		PasswordRequired: boolPtr(false),
	}

	got := ResolveShareSettings(testGlobalSettings(), project, file)
	if got.PasswordRequired {
		t.Fatal("an explicit false at the file tier must win over the project tier")
	}
}

func TestResolveShareSettingsExplicitZeroIsNotInherit(t *testing.T) {
	global := testGlobalSettings()
	global.DownloadLimitPerIP = 5
	project := &domain.ProjectShareSettings{
		ProjectID:          1,
		DownloadLimitPerIP: intPtr(0),
	}

	got := ResolveShareSettings(global, project, nil)
	if got.DownloadLimitPerIP != 0 {
		t.Fatalf("explicit zero must disable the cap, got %d", got.DownloadLimitPerIP)
	}
}

func TestResolveShareSettingsFileTierDisablesSharing(t *testing.T) {
	file := &domain.FileShareSettings{
		FileID:  1,
		Enabled: boolPtr(false),
	}
	got := ResolveShareSettings(testGlobalSettings(), nil, file)
	if got.Enabled {
		t.Fatal("file tier must be able to disable sharing outright")
	}
}
