package service

import (
	"fmt"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/repository"
)

type ProjectService struct {
	projects repository.ProjectRepository
	settings *ShareSettingsService
}

func NewProjectService(projects repository.ProjectRepository, settings *ShareSettingsService) *ProjectService {
	return &ProjectService{projects: projects, settings: settings}
}

func (s *ProjectService) Create(name, description string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	project := &domain.Project{Name: name, Description: description}
	if err := s.projects.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Get(id uint) (*domain.Project, error) {
	return s.projects.FindByID(id)
}

func (s *ProjectService) List() ([]domain.Project, error) {
	return s.projects.List()
}

func (s *ProjectService) Update(p *domain.Project) error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	return s.projects.Update(p)
}

// Delete drops the project row and its settings tier. Files under the project
// are expected to be deleted first by the caller.
func (s *ProjectService) Delete(id uint) error {
	if err := s.settings.ClearProjectSettings(id); err != nil {
		return fmt.Errorf("delete project settings: %w", err)
	}
	return s.projects.Delete(id)
}
