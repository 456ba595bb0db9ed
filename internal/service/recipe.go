package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devdish/devdish/backend/internal/blob"
	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/repository"
	"github.com/devdish/devdish/backend/internal/types"
)

const defaultServings = 4

// RecipeService handles recipe operations scoped to their owner
type RecipeService struct {
	recipes repository.RecipeRepository
	images  IImageService
}

var _ IRecipeService = (*RecipeService)(nil)

func NewRecipeService(recipes repository.RecipeRepository, images IImageService) *RecipeService {
	return &RecipeService{
		recipes: recipes,
		images:  images,
	}
}

func (s *RecipeService) Create(ctx context.Context, ownerID uuid.UUID, req *types.CreateRecipeRequest) (*model.Recipe, error) {
	recipe := &model.Recipe{
		ID:           uuid.New(),
		PublicID:     uuid.NewString(),
		UserID:       ownerID,
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  toIngredients(req.Ingredients),
		Instructions: req.Instructions,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     defaultServings,
		Difficulty:   model.DifficultyMedium,
		Category:     model.CategoryOther,
		Tags:         req.Tags,
		IsPublic:     req.IsPublic,
		Likes:        []uuid.UUID{},
		Image:        req.Image,
	}
	if req.Servings != nil {
		recipe.Servings = *req.Servings
	}
	if req.Difficulty != "" {
		recipe.Difficulty = model.Difficulty(req.Difficulty)
	}
	if req.Category != "" {
		recipe.Category = model.Category(req.Category)
	}

	if err := s.prepare(ownerID, recipe); err != nil {
		return nil, err
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}

	log.Info().Str("recipe_id", recipe.ID.String()).Str("user_id", ownerID.String()).Msg("Recipe created")
	return recipe, nil
}

// Get returns the recipe only when ownerID owns it.
func (s *RecipeService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if recipe.UserID != ownerID {
		return nil, ErrNotFound
	}
	return recipe, nil
}

func (s *RecipeService) Update(ctx context.Context, ownerID, id uuid.UUID, req *types.UpdateRecipeRequest) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	previous := recipe.Image

	if req.Title != nil {
		recipe.Title = *req.Title
	}
	if req.Description != nil {
		recipe.Description = *req.Description
	}
	if req.Ingredients != nil {
		recipe.Ingredients = toIngredients(req.Ingredients)
	}
	if req.Instructions != nil {
		recipe.Instructions = req.Instructions
	}
	if req.PrepTime != nil {
		recipe.PrepTime = *req.PrepTime
	}
	if req.CookTime != nil {
		recipe.CookTime = *req.CookTime
	}
	if req.Servings != nil {
		recipe.Servings = *req.Servings
	}
	if req.Difficulty != nil {
		recipe.Difficulty = model.Difficulty(*req.Difficulty)
	}
	if req.Category != nil {
		recipe.Category = model.Category(*req.Category)
	}
	if req.Tags != nil {
		recipe.Tags = req.Tags
	}
	if req.IsPublic != nil {
		recipe.IsPublic = *req.IsPublic
	}
	if req.Image != nil {
		recipe.Image = req.Image
	}

	if err := s.prepare(ownerID, recipe); err != nil {
		return nil, err
	}
	if err := s.recipes.Update(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !previous.IsZero() && (recipe.Image.IsZero() || recipe.Image.Key != previous.Key) {
		s.images.Remove(ctx, previous)
	}
	return recipe, nil
}

// Delete removes the record, then its image object. A failed object
// delete does not fail the request.
func (s *RecipeService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	recipe, err := s.recipes.Delete(ctx, id, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	s.images.Remove(ctx, recipe.Image)
	log.Info().Str("recipe_id", id.String()).Str("user_id", ownerID.String()).Msg("Recipe deleted")
	return nil
}

// List returns one page of the owner's recipes and the owner's tag index.
func (s *RecipeService) List(ctx context.Context, ownerID uuid.UUID, f query.Filter) (*query.Result, error) {
	result, err := listRecipes(ctx, s.recipes, query.Compile(f, query.OwnedBy(ownerID)), query.NewPage(f.Page, f.Limit))
	if err != nil {
		return nil, err
	}

	tags, err := s.Tags(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	result.AvailableTags = tags
	return result, nil
}

// Tags is the owner's distinct tag set in alphabetical order.
func (s *RecipeService) Tags(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	tags, err := s.recipes.DistinctTags(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	sort.Slice(tags, func(i, j int) bool {
		a, b := strings.ToLower(tags[i]), strings.ToLower(tags[j])
		if a == b {
			return tags[i] < tags[j]
		}
		return a < b
	})
	return tags, nil
}

func (s *RecipeService) Stats(ctx context.Context, ownerID uuid.UUID) (*model.RecipeStats, error) {
	total, err := s.recipes.Count(ctx, query.Criteria{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	byCategory, err := s.recipes.CountBy(ctx, ownerID, repository.GroupByCategory)
	if err != nil {
		return nil, err
	}
	byDifficulty, err := s.recipes.CountBy(ctx, ownerID, repository.GroupByDifficulty)
	if err != nil {
		return nil, err
	}

	return &model.RecipeStats{
		TotalRecipes:    total,
		CategoryStats:   nonNilGroups(byCategory),
		DifficultyStats: nonNilGroups(byDifficulty),
	}, nil
}

// SetImage stores up and makes it the recipe's image, deleting the
// object it replaces.
func (s *RecipeService) SetImage(ctx context.Context, ownerID, id uuid.UUID, up *Upload) (*model.Recipe, error) {
	recipe, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	img, err := s.images.Upload(ctx, ownerID, up)
	if err != nil {
		return nil, err
	}

	previous := recipe.Image
	recipe.Image = img
	if err := s.recipes.Update(ctx, recipe); err != nil {
		s.images.Remove(ctx, img)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.images.Remove(ctx, previous)
	return recipe, nil
}

// Image opens the stored image of any recipe.
func (s *RecipeService) Image(ctx context.Context, id uuid.UUID) (*blob.Object, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.images.Open(ctx, recipe.Image)
}

// prepare normalizes recipe content and checks the rules request binding
// cannot express, such as those on merged partial updates.
func (s *RecipeService) prepare(ownerID uuid.UUID, r *model.Recipe) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Tags = normalizeTags(r.Tags)

	steps := make([]string, 0, len(r.Instructions))
	for _, step := range r.Instructions {
		steps = append(steps, strings.TrimSpace(step))
	}
	r.Instructions = steps

	verr := &ValidationError{}
	if r.Title == "" {
		verr.add("title", "Recipe title is required")
	} else if len([]rune(r.Title)) > 100 {
		verr.add("title", "Title cannot exceed 100 characters")
	}
	if len([]rune(r.Description)) > 500 {
		verr.add("description", "Description cannot exceed 500 characters")
	}
	if len(r.Ingredients) == 0 {
		verr.add("ingredients", "At least one ingredient is required")
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			verr.add(fmt.Sprintf("ingredients[%d].name", i), "Ingredient name is required")
		}
		if ing.Quantity < 0 {
			verr.add(fmt.Sprintf("ingredients[%d].quantity", i), "Quantity cannot be negative")
		}
	}
	if len(r.Instructions) == 0 {
		verr.add("instructions", "At least one instruction is required")
	}
	for i, step := range r.Instructions {
		if step == "" {
			verr.add(fmt.Sprintf("instructions[%d]", i), "Instruction step cannot be empty")
		}
	}
	if r.PrepTime < 0 {
		verr.add("prepTime", "Prep time cannot be negative")
	}
	if r.CookTime < 0 {
		verr.add("cookTime", "Cook time cannot be negative")
	}
	if r.Servings < 1 {
		verr.add("servings", "Servings must be at least 1")
	}
	if err := s.images.CheckOwnership(ownerID, r.Image); err != nil {
		var imgErr *ValidationError
		if errors.As(err, &imgErr) {
			verr.Fields = append(verr.Fields, imgErr.Fields...)
		} else {
			return err
		}
	}
	return verr.orNil()
}

func toIngredients(reqs []types.IngredientRequest) []model.Ingredient {
	ingredients := make([]model.Ingredient, 0, len(reqs))
	for _, r := range reqs {
		ingredients = append(ingredients, model.Ingredient{
			Name:     strings.TrimSpace(r.Name),
			Quantity: r.Quantity,
			Unit:     model.Unit(r.Unit),
			Notes:    strings.TrimSpace(r.Notes),
		})
	}
	return ingredients
}

// normalizeTags trims tags and drops blanks and exact duplicates, keeping
// first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func nonNilGroups(groups []model.GroupCount) []model.GroupCount {
	if groups == nil {
		return []model.GroupCount{}
	}
	return groups
}

// listRecipes runs the count and the windowed fetch as two separate calls.
// The total may drift from the page contents under concurrent writes.
func listRecipes(ctx context.Context, recipes repository.RecipeRepository, q query.Query, page query.Page) (*query.Result, error) {
	total, err := recipes.Count(ctx, q.Criteria)
	if err != nil {
		return nil, err
	}
	items, err := recipes.Find(ctx, q, page)
	if err != nil {
		return nil, err
	}
	return page.Result(items, total), nil
}
