package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"

	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(s *domain.AdminSession) error
	FindActiveByTokenHash(hash string, now time.Time) (*domain.AdminSession, error)
	DeleteByTokenHash(hash string) error
	CleanupExpired(now time.Time) (int64, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) Create(s *domain.AdminSession) error {
	err := r.db.Create(s).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "create", "success")
	return nil
}

// FindActiveByTokenHash treats expired rows the same as absent ones; expiry is
// checked at validation time, expired rows are not swept here.
func (r *GormSessionRepository) FindActiveByTokenHash(hash string, now time.Time) (*domain.AdminSession, error) {
	var s domain.AdminSession
	err := r.db.Where("token_hash = ? AND expires_at > ?", hash, now).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "session", "find_active_by_token_hash", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "find_active_by_token_hash", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "find_active_by_token_hash", "success")
	return &s, nil
}

// DeleteByTokenHash is idempotent: deleting an absent row is not an error.
func (r *GormSessionRepository) DeleteByTokenHash(hash string) error {
	err := r.db.Where("token_hash = ?", hash).Delete(&domain.AdminSession{}).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "delete_by_token_hash", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "delete_by_token_hash", "success")
	return nil
}

func (r *GormSessionRepository) CleanupExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&domain.AdminSession{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "cleanup_expired", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "cleanup_expired", "success")
	return res.RowsAffected, nil
}
