package repository

import (
	"errors"
	"testing"

	"github.com/shareport/shareport/internal/domain"
)

func TestSharePasswordUpsertReplacesExistingRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewSharePasswordRepository(db)
	file := mustCreateFile(t, db, "pw-upsert")

	if err := repo.Upsert(&domain.SharePassword{FileID: file.ID, Hash: "h1", Salt: "s1"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.Upsert(&domain.SharePassword{FileID: file.ID, Hash: "h2", Salt: "s2"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.GetByFileID(file.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Hash != "h2" || got.Salt != "s2" {
		t.Fatalf("expected the replacement row, got hash=%q salt=%q", got.Hash, got.Salt)
	}

	var count int64
	if err := db.Model(&domain.SharePassword{}).Where("file_id = ?", file.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("a file holds at most one password row, got %d", count)
	}
}

func TestSharePasswordDeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSharePasswordRepository(db)
	file := mustCreateFile(t, db, "pw-delete")

	if err := repo.Upsert(&domain.SharePassword{FileID: file.ID, Hash: "h", Salt: "s"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.DeleteByFileID(file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteByFileID(file.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	if _, err := repo.GetByFileID(file.ID); !errors.Is(err, ErrSharePasswordNotFound) {
		t.Fatalf("expected ErrSharePasswordNotFound, got %v", err)
	}
}
