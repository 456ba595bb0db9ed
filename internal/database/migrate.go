package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/repository"
)

// RunMigrations creates or updates the relational schema. Recipe tables are
// only needed when recipes are stored in the same database.
func RunMigrations(db *gorm.DB, withRecipes bool) error {
	models := []interface{}{&model.User{}}
	if withRecipes {
		models = append(models, repository.GormModels()...)
	}

	log.Info().Str("dialect", db.Dialector.Name()).Int("tables", len(models)).Msg("Running GORM auto-migration")
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
