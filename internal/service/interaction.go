package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/repository"
	"github.com/devdish/devdish/backend/internal/types"
)

const viewTimeout = 2 * time.Second

// InteractionService serves public recipes and records likes and views.
type InteractionService struct {
	recipes repository.RecipeRepository
	users   repository.UserRepository
}

var _ IInteractionService = (*InteractionService)(nil)

func NewInteractionService(recipes repository.RecipeRepository, users repository.UserRepository) *InteractionService {
	return &InteractionService{
		recipes: recipes,
		users:   users,
	}
}

// ListPublic is the explore listing. Items omit instructions and
// ingredient notes.
func (s *InteractionService) ListPublic(ctx context.Context, f query.Filter) (*query.Result, error) {
	result, err := listRecipes(ctx, s.recipes, query.Compile(f, query.Public()), query.NewPage(f.Page, f.Limit))
	if err != nil {
		return nil, err
	}
	for i := range result.Recipes {
		result.Recipes[i] = result.Recipes[i].PublicSummary()
	}
	attachOwners(ctx, s.users, result.Recipes)
	return result, nil
}

// GetPublic resolves a shared recipe by its public identifier and counts
// the view.
func (s *InteractionService) GetPublic(ctx context.Context, publicID string) (*model.Recipe, error) {
	if _, err := uuid.Parse(publicID); err != nil {
		return nil, ErrInvalidID
	}

	recipe, err := s.recipes.FindByPublicID(ctx, publicID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.RecordView(ctx, recipe.ID) {
		recipe.Views++
	}
	recipe.Owner = loadOwners(ctx, s.users, []model.Recipe{*recipe})[recipe.UserID]
	return recipe, nil
}

// RecordView increments the view counter. It never fails the caller: the
// increment is bounded by a short timeout and errors are only logged.
func (s *InteractionService) RecordView(ctx context.Context, id uuid.UUID) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), viewTimeout)
	defer cancel()

	if err := s.recipes.IncrementViews(ctx, id); err != nil {
		log.Warn().Err(err).Str("recipe_id", id.String()).Msg("Failed to record recipe view")
		return false
	}
	return true
}

// ToggleLike flips the caller's like on a recipe that is public or their own.
func (s *InteractionService) ToggleLike(ctx context.Context, id, userID uuid.UUID) (*types.LikeResponse, error) {
	liked, count, err := s.recipes.ToggleLike(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &types.LikeResponse{Liked: liked, LikeCount: count}, nil
}

// Liked lists the public recipes the user has liked.
func (s *InteractionService) Liked(ctx context.Context, userID uuid.UUID, f query.Filter) (*query.Result, error) {
	result, err := listRecipes(ctx, s.recipes, query.Compile(f, query.LikedBy(userID)), query.NewPage(f.Page, f.Limit))
	if err != nil {
		return nil, err
	}
	attachOwners(ctx, s.users, result.Recipes)
	return result, nil
}

// attachOwners sets the owner summary on each recipe in place. A failed
// lookup leaves owners unset rather than failing the listing.
func attachOwners(ctx context.Context, users repository.UserRepository, recipes []model.Recipe) {
	owners := loadOwners(ctx, users, recipes)
	for i := range recipes {
		recipes[i].Owner = owners[recipes[i].UserID]
	}
}

func loadOwners(ctx context.Context, users repository.UserRepository, recipes []model.Recipe) map[uuid.UUID]*model.Owner {
	if len(recipes) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(recipes))
	ids := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		ids = append(ids, r.UserID)
	}

	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		log.Warn().Err(err).Int("users", len(ids)).Msg("Failed to load recipe owners")
		return nil
	}

	owners := make(map[uuid.UUID]*model.Owner, len(found))
	for i := range found {
		owners[found[i].ID] = found[i].Owner()
	}
	return owners
}
