package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/repository"
	"github.com/shareport/shareport/internal/security"
)

type RegisterFileInput struct {
	ProjectID   uint
	Name        string
	BlobKey     string
	ContentType string
	SizeBytes   int64
}

// FileService manages stored file records and their share credentials. The
// bytes themselves live in the blob store under BlobKey; this service only
// tracks metadata.
type FileService struct {
	files       repository.FileRepository
	projects    repository.ProjectRepository
	passwords   repository.SharePasswordRepository
	settings    *ShareSettingsService
	lookupCache ShareLookupCache
	now         func() time.Time
}

func NewFileService(
	files repository.FileRepository,
	projects repository.ProjectRepository,
	passwords repository.SharePasswordRepository,
	settings *ShareSettingsService,
	lookupCache ShareLookupCache,
) *FileService {
	if lookupCache == nil {
		lookupCache = NewNoopShareLookupCache()
	}
	return &FileService{
		files:       files,
		projects:    projects,
		passwords:   passwords,
		settings:    settings,
		lookupCache: lookupCache,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RegisterFile creates the metadata row for an uploaded object. The share
// expiry is stamped from the policy in force at upload time; later policy
// changes do not move it.
func (s *FileService) RegisterFile(ctx context.Context, in RegisterFileInput) (*domain.StoredFile, error) {
	if in.Name == "" || in.BlobKey == "" {
		return nil, fmt.Errorf("file name and blob key are required")
	}
	if _, err := s.projects.FindByID(in.ProjectID); err != nil {
		return nil, fmt.Errorf("load project %d: %w", in.ProjectID, err)
	}
	eff, err := s.settings.EffectiveForProject(in.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve upload policy: %w", err)
	}

	file := &domain.StoredFile{
		ProjectID:   in.ProjectID,
		Name:        in.Name,
		PublicID:    uuid.NewString(),
		BlobKey:     in.BlobKey,
		ContentType: in.ContentType,
		SizeBytes:   in.SizeBytes,
	}
	if eff.ExpiryDays > 0 {
		expiresAt := s.now().AddDate(0, 0, eff.ExpiryDays)
		file.ExpiresAt = &expiresAt
	}
	if err := s.files.Create(file); err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	// A stale negative entry would shadow the brand new link.
	if err := s.lookupCache.Reset(ctx); err != nil {
		slog.WarnContext(ctx, "share lookup cache reset failed", "error", err)
	}
	return file, nil
}

func (s *FileService) File(id uint) (*domain.StoredFile, error) {
	return s.files.FindByID(id)
}

func (s *FileService) ListFiles(query repository.FileListQuery) (repository.PageResult[domain.StoredFile], error) {
	return s.files.ListByProjectPaged(query)
}

// DeleteFile removes the metadata row along with its per-file settings and
// password. Blob cleanup is a separate concern handled out of band.
func (s *FileService) DeleteFile(id uint) error {
	if err := s.passwords.DeleteByFileID(id); err != nil {
		return fmt.Errorf("delete share password: %w", err)
	}
	if err := s.settings.ClearFileSettings(id); err != nil {
		return fmt.Errorf("delete file settings: %w", err)
	}
	return s.files.Delete(id)
}

// SetSharePassword hashes and stores the password for one file, replacing any
// previous one. The plaintext is never persisted.
func (s *FileService) SetSharePassword(fileID uint, password string) error {
	if len(password) < 4 {
		return fmt.Errorf("share password must be at least 4 characters")
	}
	if _, err := s.files.FindByID(fileID); err != nil {
		return fmt.Errorf("load file %d: %w", fileID, err)
	}
	hash, salt, err := security.HashSharePassword(password)
	if err != nil {
		return fmt.Errorf("hash share password: %w", err)
	}
	return s.passwords.Upsert(&domain.SharePassword{
		FileID: fileID,
		Hash:   hash,
		Salt:   salt,
	})
}

func (s *FileService) ClearSharePassword(fileID uint) error {
	return s.passwords.DeleteByFileID(fileID)
}
