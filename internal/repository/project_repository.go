package repository

import (
	"context"
	"errors"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"

	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectRepository interface {
	Create(p *domain.Project) error
	FindByID(id uint) (*domain.Project, error)
	List() ([]domain.Project, error)
	Update(p *domain.Project) error
	Delete(id uint) error
}

type GormProjectRepository struct{ db *gorm.DB }

func NewProjectRepository(db *gorm.DB) ProjectRepository { return &GormProjectRepository{db: db} }

func (r *GormProjectRepository) Create(p *domain.Project) error {
	err := r.db.Create(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "project", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "project", "create", "success")
	return nil
}

func (r *GormProjectRepository) FindByID(id uint) (*domain.Project, error) {
	var p domain.Project
	err := r.db.First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "project", "find_by_id", "not_found")
			return nil, ErrProjectNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "project", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "project", "find_by_id", "success")
	return &p, nil
}

func (r *GormProjectRepository) List() ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.Order("created_at ASC").Find(&projects).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "project", "list", "error")
		return projects, err
	}
	observability.RecordRepositoryOperation(context.Background(), "project", "list", "success")
	return projects, nil
}

func (r *GormProjectRepository) Update(p *domain.Project) error {
	err := r.db.Save(p).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "project", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "project", "update", "success")
	return nil
}

func (r *GormProjectRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Project{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "project", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "project", "delete", "not_found")
		return ErrProjectNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "project", "delete", "success")
	return nil
}
