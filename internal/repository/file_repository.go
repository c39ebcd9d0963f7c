package repository

import (
	"context"
	"errors"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"

	"gorm.io/gorm"
)

var ErrFileNotFound = errors.New("file not found")

type FileListQuery struct {
	PageRequest
	ProjectID uint
	Name      string
}

type FileRepository interface {
	Create(f *domain.StoredFile) error
	FindByID(id uint) (*domain.StoredFile, error)
	FindByPublicID(publicID string) (*domain.StoredFile, error)
	ListByProjectPaged(query FileListQuery) (PageResult[domain.StoredFile], error)
	Delete(id uint) error
}

type GormFileRepository struct{ db *gorm.DB }

func NewFileRepository(db *gorm.DB) FileRepository { return &GormFileRepository{db: db} }

func (r *GormFileRepository) Create(f *domain.StoredFile) error {
	err := r.db.Create(f).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "file", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "file", "create", "success")
	return nil
}

func (r *GormFileRepository) FindByID(id uint) (*domain.StoredFile, error) {
	var f domain.StoredFile
	err := r.db.First(&f, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "file", "find_by_id", "not_found")
			return nil, ErrFileNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "file", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "file", "find_by_id", "success")
	return &f, nil
}

func (r *GormFileRepository) FindByPublicID(publicID string) (*domain.StoredFile, error) {
	var f domain.StoredFile
	err := r.db.Where("public_id = ?", publicID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "file", "find_by_public_id", "not_found")
			return nil, ErrFileNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "file", "find_by_public_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "file", "find_by_public_id", "success")
	return &f, nil
}

func (r *GormFileRepository) ListByProjectPaged(query FileListQuery) (PageResult[domain.StoredFile], error) {
	req := normalizePageRequest(query.PageRequest)
	result := PageResult[domain.StoredFile]{
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	base := r.db.Model(&domain.StoredFile{}).Where("project_id = ?", query.ProjectID)
	if query.Name != "" {
		base = base.Where("name LIKE ?", query.Name+"%")
	}

	if err := base.Session(&gorm.Session{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "file", "list_by_project_paged", "error")
		return PageResult[domain.StoredFile]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	if err := base.Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(req.PageSize).Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "file", "list_by_project_paged", "error")
		return PageResult[domain.StoredFile]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "file", "list_by_project_paged", "success")
	return result, nil
}

func (r *GormFileRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.StoredFile{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "file", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "file", "delete", "not_found")
		return ErrFileNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "file", "delete", "success")
	return nil
}
