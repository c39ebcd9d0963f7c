package repository

import (
	"context"
	"errors"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrShareSettingsNotFound = errors.New("share settings not found")

type ShareSettingsRepository interface {
	GetGlobal() (*domain.GlobalShareSettings, error)
	UpdateGlobal(s *domain.GlobalShareSettings) error
	GetProject(projectID uint) (*domain.ProjectShareSettings, error)
	UpsertProject(s *domain.ProjectShareSettings) error
	DeleteProject(projectID uint) error
	GetFile(fileID uint) (*domain.FileShareSettings, error)
	UpsertFile(s *domain.FileShareSettings) error
	DeleteFile(fileID uint) error
}

type GormShareSettingsRepository struct{ db *gorm.DB }

func NewShareSettingsRepository(db *gorm.DB) ShareSettingsRepository {
	return &GormShareSettingsRepository{db: db}
}

// GetGlobal seeds the hard defaults on first read so resolution always has a
// fully populated floor.
func (r *GormShareSettingsRepository) GetGlobal() (*domain.GlobalShareSettings, error) {
	var s domain.GlobalShareSettings
	err := r.db.First(&s, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = domain.DefaultGlobalShareSettings()
		if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&s).Error; err != nil {
			observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_global", "error")
			return nil, err
		}
		err = r.db.First(&s, 1).Error
	}
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_global", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_global", "success")
	return &s, nil
}

func (r *GormShareSettingsRepository) UpdateGlobal(s *domain.GlobalShareSettings) error {
	s.ID = 1
	err := r.db.Save(s).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "update_global", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "update_global", "success")
	return nil
}

func (r *GormShareSettingsRepository) GetProject(projectID uint) (*domain.ProjectShareSettings, error) {
	var s domain.ProjectShareSettings
	err := r.db.Where("project_id = ?", projectID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_project", "not_found")
			return nil, ErrShareSettingsNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_project", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_project", "success")
	return &s, nil
}

func (r *GormShareSettingsRepository) UpsertProject(s *domain.ProjectShareSettings) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}},
		UpdateAll: true,
	}).Create(s).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "upsert_project", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "upsert_project", "success")
	return nil
}

func (r *GormShareSettingsRepository) DeleteProject(projectID uint) error {
	err := r.db.Where("project_id = ?", projectID).Delete(&domain.ProjectShareSettings{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "delete_project", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "delete_project", "success")
	return nil
}

func (r *GormShareSettingsRepository) GetFile(fileID uint) (*domain.FileShareSettings, error) {
	var s domain.FileShareSettings
	err := r.db.Where("file_id = ?", fileID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_file", "not_found")
			return nil, ErrShareSettingsNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_file", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "get_file", "success")
	return &s, nil
}

func (r *GormShareSettingsRepository) UpsertFile(s *domain.FileShareSettings) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_id"}},
		UpdateAll: true,
	}).Create(s).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "upsert_file", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "upsert_file", "success")
	return nil
}

func (r *GormShareSettingsRepository) DeleteFile(fileID uint) error {
	err := r.db.Where("file_id = ?", fileID).Delete(&domain.FileShareSettings{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_settings", "delete_file", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_settings", "delete_file", "success")
	return nil
}
