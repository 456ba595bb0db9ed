package service_test

import (
	"testing"

	"gorm.io/gorm"

	"github.com/devdish/devdish/backend/config"
	"github.com/devdish/devdish/backend/internal/repository"
	"github.com/devdish/devdish/backend/internal/service"
	"github.com/devdish/devdish/backend/internal/testhelpers"
)

type testEnv struct {
	db      *gorm.DB
	store   *testhelpers.MockBlobStore
	recipes *repository.GormRecipeRepository
	users   *repository.GormUserRepository
	images  *service.ImageService
}

func setupTestEnv(t *testing.T) *testEnv {
	db := testhelpers.SetupSQLiteDB(t)
	store := new(testhelpers.MockBlobStore)
	return &testEnv{
		db:      db,
		store:   store,
		recipes: repository.NewGormRecipeRepository(db),
		users:   repository.NewGormUserRepository(db),
		images: service.NewImageService(store, config.StorageConfig{
			MaxImageBytes: 5 << 20,
			MaxImageWidth: 1600,
		}),
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
