package repository

import (
	"context"
	"time"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"

	"gorm.io/gorm"
)

type LoginAttemptRepository interface {
	Append(a *domain.LoginAttempt) error
	CountFailedSince(ip string, since time.Time) (int64, error)
	ListRecent(limit int) ([]domain.LoginAttempt, error)
}

type GormLoginAttemptRepository struct{ db *gorm.DB }

func NewLoginAttemptRepository(db *gorm.DB) LoginAttemptRepository {
	return &GormLoginAttemptRepository{db: db}
}

func (r *GormLoginAttemptRepository) Append(a *domain.LoginAttempt) error {
	err := r.db.Create(a).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "login_attempt", "append", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "login_attempt", "append", "success")
	return nil
}

func (r *GormLoginAttemptRepository) CountFailedSince(ip string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.LoginAttempt{}).
		Where("ip = ? AND succeeded = ? AND created_at >= ?", ip, false, since).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "login_attempt", "count_failed_since", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "login_attempt", "count_failed_since", "success")
	return count, nil
}

func (r *GormLoginAttemptRepository) ListRecent(limit int) ([]domain.LoginAttempt, error) {
	if limit <= 0 {
		limit = 100
	}
	var attempts []domain.LoginAttempt
	err := r.db.Order("created_at DESC").Limit(limit).Find(&attempts).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "login_attempt", "list_recent", "error")
		return attempts, err
	}
	observability.RecordRepositoryOperation(context.Background(), "login_attempt", "list_recent", "success")
	return attempts, nil
}
