package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// GroupField is a recipe attribute that stats can be grouped by.
type GroupField string

const (
	GroupByCategory   GroupField = "category"
	GroupByDifficulty GroupField = "difficulty"
)

// RecipeRepository is the recipe store. Mutations of content are scoped to
// the owner by predicate; likes and views are not.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	// FindByPublicID only resolves recipes that are currently public.
	FindByPublicID(ctx context.Context, publicID string) (*model.Recipe, error)
	// Update replaces the content fields of the recipe matching both
	// recipe.ID and recipe.UserID.
	Update(ctx context.Context, recipe *model.Recipe) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) (*model.Recipe, error)

	Find(ctx context.Context, q query.Query, page query.Page) ([]model.Recipe, error)
	Count(ctx context.Context, c query.Criteria) (int64, error)
	DistinctTags(ctx context.Context, ownerID uuid.UUID) ([]string, error)
	CountBy(ctx context.Context, ownerID uuid.UUID, field GroupField) ([]model.GroupCount, error)

	// ToggleLike flips userID's membership in the like set of a recipe that
	// is public or owned by userID, in one atomic storage operation.
	ToggleLike(ctx context.Context, id, userID uuid.UUID) (liked bool, likeCount int, err error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UsernameTaken(ctx context.Context, username string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, user *model.User) error
}
