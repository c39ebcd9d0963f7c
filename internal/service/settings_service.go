package service

import (
	"errors"
	"fmt"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/repository"
)

// ShareSettingsService exposes the three configuration tiers independently.
// Resolution happens only at access (or upload) time, never at write time, so
// a project-level change is visible to every inheriting file on its next
// download.
type ShareSettingsService struct {
	settings repository.ShareSettingsRepository
}

func NewShareSettingsService(settings repository.ShareSettingsRepository) *ShareSettingsService {
	return &ShareSettingsService{settings: settings}
}

func (s *ShareSettingsService) Global() (*domain.GlobalShareSettings, error) {
	return s.settings.GetGlobal()
}

func (s *ShareSettingsService) SetGlobal(in *domain.GlobalShareSettings) error {
	if in.DownloadWindowMinutes <= 0 {
		return fmt.Errorf("%w: download window must be positive", ErrInvalidSettings)
	}
	if in.ExpiryDays < 0 || in.DownloadLimitPerIP < 0 {
		return fmt.Errorf("%w: expiry days and download limit must not be negative", ErrInvalidSettings)
	}
	return s.settings.UpdateGlobal(in)
}

// ProjectSettings returns nil (no error) when the project has no overrides.
func (s *ShareSettingsService) ProjectSettings(projectID uint) (*domain.ProjectShareSettings, error) {
	out, err := s.settings.GetProject(projectID)
	if errors.Is(err, repository.ErrShareSettingsNotFound) {
		return nil, nil
	}
	return out, err
}

// validateTierOverrides applies the same bounds SetGlobal enforces to explicit
// tier overrides. A zero-length window would void any inherited download cap,
// so an explicit window must be positive.
func validateTierOverrides(window, expiry, limit *int) error {
	if window != nil && *window <= 0 {
		return fmt.Errorf("%w: download window must be positive", ErrInvalidSettings)
	}
	if expiry != nil && *expiry < 0 {
		return fmt.Errorf("%w: expiry days must not be negative", ErrInvalidSettings)
	}
	if limit != nil && *limit < 0 {
		return fmt.Errorf("%w: download limit must not be negative", ErrInvalidSettings)
	}
	return nil
}

func (s *ShareSettingsService) SetProjectSettings(in *domain.ProjectShareSettings) error {
	if err := validateTierOverrides(in.DownloadWindowMinutes, in.ExpiryDays, in.DownloadLimitPerIP); err != nil {
		return err
	}
	return s.settings.UpsertProject(in)
}

func (s *ShareSettingsService) ClearProjectSettings(projectID uint) error {
	return s.settings.DeleteProject(projectID)
}

func (s *ShareSettingsService) FileSettings(fileID uint) (*domain.FileShareSettings, error) {
	out, err := s.settings.GetFile(fileID)
	if errors.Is(err, repository.ErrShareSettingsNotFound) {
		return nil, nil
	}
	return out, err
}

func (s *ShareSettingsService) SetFileSettings(in *domain.FileShareSettings) error {
	if err := validateTierOverrides(in.DownloadWindowMinutes, in.ExpiryDays, in.DownloadLimitPerIP); err != nil {
		return err
	}
	return s.settings.UpsertFile(in)
}

func (s *ShareSettingsService) ClearFileSettings(fileID uint) error {
	return s.settings.DeleteFile(fileID)
}

// EffectiveForFile resolves the chain for one stored file at call time.
func (s *ShareSettingsService) EffectiveForFile(file *domain.StoredFile) (EffectiveShareSettings, error) {
	global, err := s.settings.GetGlobal()
	if err != nil {
		return EffectiveShareSettings{}, fmt.Errorf("load global settings: %w", err)
	}
	project, err := s.ProjectSettings(file.ProjectID)
	if err != nil {
		return EffectiveShareSettings{}, fmt.Errorf("load project settings: %w", err)
	}
	fileTier, err := s.FileSettings(file.ID)
	if err != nil {
		return EffectiveShareSettings{}, fmt.Errorf("load file settings: %w", err)
	}
	return ResolveShareSettings(*global, project, fileTier), nil
}

// EffectiveForProject resolves without a file tier, used at upload time
// before the file row exists.
func (s *ShareSettingsService) EffectiveForProject(projectID uint) (EffectiveShareSettings, error) {
	global, err := s.settings.GetGlobal()
	if err != nil {
		return EffectiveShareSettings{}, fmt.Errorf("load global settings: %w", err)
	}
	project, err := s.ProjectSettings(projectID)
	if err != nil {
		return EffectiveShareSettings{}, fmt.Errorf("load project settings: %w", err)
	}
	return ResolveShareSettings(*global, project, nil), nil
}
