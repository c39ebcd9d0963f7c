package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shareport/shareport/internal/blob"
	"github.com/shareport/shareport/internal/domain"
	"github.com/shareport/shareport/internal/observability"
	"github.com/shareport/shareport/internal/repository"
	"github.com/shareport/shareport/internal/security"
)

type AccessOutcome string

const (
	AccessAllowed          AccessOutcome = "allowed"
	AccessNotFound         AccessOutcome = "not_found"
	AccessForbidden        AccessOutcome = "forbidden"
	AccessPasswordRequired AccessOutcome = "password_required"
	AccessRateLimited      AccessOutcome = "rate_limited"
)

type AccessRequest struct {
	PublicID  string
	Password  string
	IP        string
	UserAgent string
}

type AccessDecision struct {
	Outcome     AccessOutcome
	RedirectURL string
}

// ShareAccessService decides whether one anonymous download request may
// proceed and, when it may, mints the byte-serving URL and records the grant.
// Denials are deliberately vague toward the caller: a disabled or expired link
// answers exactly like one that never existed.
type ShareAccessService struct {
	files       repository.FileRepository
	passwords   repository.SharePasswordRepository
	downloads   repository.DownloadLogRepository
	settings    *ShareSettingsService
	blobs       blob.Store
	lookupCache ShareLookupCache
	urlTTL      time.Duration
	now         func() time.Time
}

func NewShareAccessService(
	files repository.FileRepository,
	passwords repository.SharePasswordRepository,
	downloads repository.DownloadLogRepository,
	settings *ShareSettingsService,
	blobs blob.Store,
	lookupCache ShareLookupCache,
	urlTTL time.Duration,
) *ShareAccessService {
	if lookupCache == nil {
		lookupCache = NewNoopShareLookupCache()
	}
	if urlTTL <= 0 {
		urlTTL = 5 * time.Minute
	}
	return &ShareAccessService{
		files:       files,
		passwords:   passwords,
		downloads:   downloads,
		settings:    settings,
		blobs:       blobs,
		lookupCache: lookupCache,
		urlTTL:      urlTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Authorize runs the full decision chain for one request. A non-nil error
// means the decision could not be made; callers must fail closed on it.
func (s *ShareAccessService) Authorize(ctx context.Context, req AccessRequest) (AccessDecision, error) {
	now := s.now()

	cached, err := s.lookupCache.WasMissing(ctx, req.PublicID)
	if err != nil {
		// The cache is an optimization; a broken cache must not take
		// the share surface down with it.
		slog.WarnContext(ctx, "share lookup cache read failed", "error", err)
	}
	if cached {
		return s.deny(AccessNotFound), nil
	}

	file, err := s.files.FindByPublicID(req.PublicID)
	if errors.Is(err, repository.ErrFileNotFound) {
		if cacheErr := s.lookupCache.MarkMissing(ctx, req.PublicID); cacheErr != nil {
			slog.WarnContext(ctx, "share lookup cache write failed", "error", cacheErr)
		}
		return s.deny(AccessNotFound), nil
	}
	if err != nil {
		return AccessDecision{}, fmt.Errorf("look up share link: %w", err)
	}

	// An expired link is indistinguishable from a missing one, but it is
	// never cached: extending the expiry must take effect immediately.
	// The deadline itself is already expired.
	if file.ExpiresAt != nil && !now.Before(*file.ExpiresAt) {
		return s.deny(AccessNotFound), nil
	}

	eff, err := s.settings.EffectiveForFile(file)
	if err != nil {
		return AccessDecision{}, fmt.Errorf("resolve share settings: %w", err)
	}
	if !eff.Enabled {
		return s.deny(AccessNotFound), nil
	}

	if eff.PasswordRequired {
		record, err := s.passwords.GetByFileID(file.ID)
		if errors.Is(err, repository.ErrSharePasswordNotFound) {
			// Policy demands a password but none was ever set. Refuse
			// outright instead of waving everyone through.
			slog.ErrorContext(ctx, "share password required but not configured",
				"file_id", file.ID, "public_id", file.PublicID)
			return s.deny(AccessForbidden), nil
		}
		if err != nil {
			return AccessDecision{}, fmt.Errorf("load share password: %w", err)
		}
		if req.Password == "" || !security.VerifySharePassword(req.Password, record.Hash, record.Salt) {
			return s.deny(AccessPasswordRequired), nil
		}
	}

	if eff.DownloadLimitPerIP > 0 {
		since := now.Add(-time.Duration(eff.DownloadWindowMinutes) * time.Minute)
		count, err := s.downloads.CountForFileIPSince(file.ID, req.IP, since)
		if err != nil {
			return AccessDecision{}, fmt.Errorf("count downloads: %w", err)
		}
		if count >= int64(eff.DownloadLimitPerIP) {
			return s.deny(AccessRateLimited), nil
		}
	}

	url, err := s.blobs.PresignGet(ctx, file.BlobKey, s.urlTTL)
	if err != nil {
		return AccessDecision{}, fmt.Errorf("presign download url: %w", err)
	}
	if err := s.downloads.RecordGrant(&domain.DownloadLog{
		FileID:    file.ID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		CreatedAt: now,
	}); err != nil {
		return AccessDecision{}, fmt.Errorf("record download grant: %w", err)
	}

	observability.RecordShareAccessDecision(string(AccessAllowed))
	observability.RecordDownloadGranted()
	return AccessDecision{Outcome: AccessAllowed, RedirectURL: url}, nil
}

func (s *ShareAccessService) deny(outcome AccessOutcome) AccessDecision {
	observability.RecordShareAccessDecision(string(outcome))
	return AccessDecision{Outcome: outcome}
}
