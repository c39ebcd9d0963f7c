package repository

import (
	"context"
	"errors"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSharePasswordNotFound = errors.New("share password not found")

type SharePasswordRepository interface {
	GetByFileID(fileID uint) (*domain.SharePassword, error)
	Upsert(p *domain.SharePassword) error
	DeleteByFileID(fileID uint) error
}

type GormSharePasswordRepository struct{ db *gorm.DB }

func NewSharePasswordRepository(db *gorm.DB) SharePasswordRepository {
	return &GormSharePasswordRepository{db: db}
}

func (r *GormSharePasswordRepository) GetByFileID(fileID uint) (*domain.SharePassword, error) {
	var p domain.SharePassword
	err := r.db.Where("file_id = ?", fileID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "share_password", "get_by_file_id", "not_found")
			return nil, ErrSharePasswordNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "share_password", "get_by_file_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_password", "get_by_file_id", "success")
	return &p, nil
}

func (r *GormSharePasswordRepository) Upsert(p *domain.SharePassword) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_id"}},
		UpdateAll: true,
	}).Create(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_password", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_password", "upsert", "success")
	return nil
}

func (r *GormSharePasswordRepository) DeleteByFileID(fileID uint) error {
	err := r.db.Where("file_id = ?", fileID).Delete(&domain.SharePassword{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "share_password", "delete_by_file_id", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "share_password", "delete_by_file_id", "success")
	return nil
}
