package repository

import (
	"context"
	"time"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"

	"gorm.io/gorm"
)

type DownloadLogRepository interface {
	CountForFileIPSince(fileID uint, ip string, since time.Time) (int64, error)
	// RecordGrant appends the log row and bumps the file's download counter as
	// one transaction; the increment is a SQL expression, never a
	// read-modify-write in application code.
	RecordGrant(log *domain.DownloadLog) error
	ListByFile(fileID uint, limit int) ([]domain.DownloadLog, error)
}

type GormDownloadLogRepository struct{ db *gorm.DB }

func NewDownloadLogRepository(db *gorm.DB) DownloadLogRepository {
	return &GormDownloadLogRepository{db: db}
}

func (r *GormDownloadLogRepository) CountForFileIPSince(fileID uint, ip string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.DownloadLog{}).
		Where("file_id = ? AND ip = ? AND created_at >= ?", fileID, ip, since).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "download_log", "count_for_file_ip_since", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "download_log", "count_for_file_ip_since", "success")
	return count, nil
}

func (r *GormDownloadLogRepository) RecordGrant(log *domain.DownloadLog) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			return err
		}
		return tx.Model(&domain.StoredFile{}).
			Where("id = ?", log.FileID).
			UpdateColumn("download_count", gorm.Expr("download_count + ?", 1)).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "download_log", "record_grant", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "download_log", "record_grant", "success")
	return nil
}

func (r *GormDownloadLogRepository) ListByFile(fileID uint, limit int) ([]domain.DownloadLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []domain.DownloadLog
	err := r.db.Where("file_id = ?", fileID).Order("created_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "download_log", "list_by_file", "error")
		return logs, err
	}
	observability.RecordRepositoryOperation(context.Background(), "download_log", "list_by_file", "success")
	return logs, nil
}
