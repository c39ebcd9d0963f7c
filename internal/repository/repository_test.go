package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shareport/shareport/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func mustCreateFile(t *testing.T, db *gorm.DB, publicID string) *domain.StoredFile {
	t.Helper()
	f := &domain.StoredFile{
		ProjectID: 1,
		Name:      publicID + ".bin",
		PublicID:  publicID,
		BlobKey:   "blobs/" + publicID,
	}
	if err := NewFileRepository(db).Create(f); err != nil {
		t.Fatalf("create file: %v", err)
	}
	return f
}
