package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
)

// GormRecipeRepository stores recipes in a relational database. Ingredients,
// tags and likes live in child tables keyed by recipe id.
type GormRecipeRepository struct {
	db *gorm.DB
}

var _ RecipeRepository = (*GormRecipeRepository)(nil)

func NewGormRecipeRepository(db *gorm.DB) *GormRecipeRepository {
	return &GormRecipeRepository{db: db}
}

var sqlSortColumns = map[query.SortField]string{
	query.SortCreatedAt:  "recipes.created_at",
	query.SortUpdatedAt:  "recipes.updated_at",
	query.SortTitle:      "recipes.title",
	query.SortDifficulty: "CASE recipes.difficulty WHEN 'Easy' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Hard' THEN 3 ELSE 4 END",
	query.SortTotalTime:  "(recipes.prep_time + recipes.cook_time)",
	query.SortPrepTime:   "recipes.prep_time",
	query.SortCookTime:   "recipes.cook_time",
	query.SortServings:   "recipes.servings",
	query.SortViews:      "recipes.views",
	query.SortLikes:      "(SELECT COUNT(*) FROM recipe_likes WHERE recipe_likes.recipe_id = recipes.id)",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyCriteria translates c into WHERE clauses over the recipes table.
func applyCriteria(db *gorm.DB, c query.Criteria) *gorm.DB {
	if c.OwnerID != uuid.Nil {
		db = db.Where("recipes.user_id = ?", c.OwnerID)
	}
	if c.PublicOnly {
		db = db.Where("recipes.is_public = ?", true)
	}
	if c.LikedBy != uuid.Nil {
		db = db.Where("EXISTS (SELECT 1 FROM recipe_likes WHERE recipe_likes.recipe_id = recipes.id AND recipe_likes.user_id = ?)", c.LikedBy)
	}
	if c.Category != "" {
		db = db.Where("recipes.category = ?", string(c.Category))
	}
	if c.Difficulty != "" {
		db = db.Where("recipes.difficulty = ?", string(c.Difficulty))
	}
	if c.MaxTotalTime != nil {
		db = db.Where("recipes.prep_time + recipes.cook_time <= ?", *c.MaxTotalTime)
	}
	if len(c.Tags) > 0 {
		db = db.Where("EXISTS (SELECT 1 FROM recipe_tags WHERE recipe_tags.recipe_id = recipes.id AND recipe_tags.tag IN ?)", c.Tags)
	}
	if c.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(c.Search)) + "%"
		db = db.Where(`(LOWER(recipes.title) LIKE ? ESCAPE '\'`+
			` OR LOWER(recipes.description) LIKE ? ESCAPE '\'`+
			` OR EXISTS (SELECT 1 FROM recipe_ingredients WHERE recipe_ingredients.recipe_id = recipes.id AND LOWER(recipe_ingredients.name) LIKE ? ESCAPE '\'))`,
			like, like, like)
	}
	return db
}

func applySort(db *gorm.DB, s query.Sort) *gorm.DB {
	column, ok := sqlSortColumns[s.Field]
	if !ok {
		column, s = sqlSortColumns[query.SortCreatedAt], query.DefaultSort
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return db.Order(column + " " + dir).Order("recipes.id ASC")
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position") }
	return db.
		Preload("Ingredients", byPosition).
		Preload("Tags", byPosition).
		Preload("Likes")
}

func (r *GormRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	row := newRecipeRow(recipe)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	recipe.CreatedAt = row.CreatedAt
	recipe.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *GormRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	return r.first(ctx, "recipes.id = ?", id)
}

func (r *GormRecipeRepository) FindByPublicID(ctx context.Context, publicID string) (*model.Recipe, error) {
	return r.first(ctx, "recipes.public_id = ? AND recipes.is_public = ?", publicID, true)
}

func (r *GormRecipeRepository) first(ctx context.Context, cond string, args ...interface{}) (*model.Recipe, error) {
	var row recipeRow
	err := preloadChildren(r.db.WithContext(ctx)).Where(cond, args...).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	recipe := row.toModel()
	return &recipe, nil
}

func (r *GormRecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	row := newRecipeRow(recipe)
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&recipeRow{}).
			Where("id = ? AND user_id = ?", row.ID, row.UserID).
			Updates(map[string]interface{}{
				"title":              row.Title,
				"description":        row.Description,
				"instructions":       row.Instructions,
				"prep_time":          row.PrepTime,
				"cook_time":          row.CookTime,
				"servings":           row.Servings,
				"difficulty":         row.Difficulty,
				"category":           row.Category,
				"is_public":          row.IsPublic,
				"image_key":          row.Image.Key,
				"image_content_type": row.Image.ContentType,
				"image_filename":     row.Image.Filename,
				"updated_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Where("recipe_id = ?", row.ID).Delete(&ingredientRow{}).Error; err != nil {
			return err
		}
		if len(row.Ingredients) > 0 {
			if err := tx.Create(&row.Ingredients).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("recipe_id = ?", row.ID).Delete(&tagRow{}).Error; err != nil {
			return err
		}
		if len(row.Tags) > 0 {
			if err := tx.Create(&row.Tags).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	recipe.UpdatedAt = now
	return nil
}

func (r *GormRecipeRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (*model.Recipe, error) {
	var row recipeRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).First(&row).Error; err != nil {
			return err
		}
		for _, child := range []interface{}{&likeRow{}, &tagRow{}, &ingredientRow{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete recipe: %w", err)
	}
	recipe := row.toModel()
	return &recipe, nil
}

func (r *GormRecipeRepository) Find(ctx context.Context, q query.Query, page query.Page) ([]model.Recipe, error) {
	db := applyCriteria(r.db.WithContext(ctx).Model(&recipeRow{}), q.Criteria)
	db = applySort(db, q.Sort)

	var rows []recipeRow
	if err := preloadChildren(db).Offset(page.Skip()).Limit(page.Limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]model.Recipe, 0, len(rows))
	for i := range rows {
		recipes = append(recipes, rows[i].toModel())
	}
	return recipes, nil
}

func (r *GormRecipeRepository) Count(ctx context.Context, c query.Criteria) (int64, error) {
	var total int64
	if err := applyCriteria(r.db.WithContext(ctx).Model(&recipeRow{}), c).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return total, nil
}

func (r *GormRecipeRepository) DistinctTags(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).Model(&tagRow{}).
		Joins("JOIN recipes ON recipes.id = recipe_tags.recipe_id").
		Where("recipes.user_id = ?", ownerID).
		Distinct().
		Pluck("recipe_tags.tag", &tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	return tags, nil
}

func (r *GormRecipeRepository) CountBy(ctx context.Context, ownerID uuid.UUID, field GroupField) ([]model.GroupCount, error) {
	var column string
	switch field {
	case GroupByCategory:
		column = "category"
	case GroupByDifficulty:
		column = "difficulty"
	default:
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	var counts []model.GroupCount
	err := r.db.WithContext(ctx).Model(&recipeRow{}).
		Select(column+" AS value, COUNT(*) AS total").
		Where("user_id = ?", ownerID).
		Group(column).
		Order("total DESC, value ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes by %s: %w", field, err)
	}
	return counts, nil
}

// ToggleLike removes the (recipe, user) like row if present and inserts it
// otherwise. The recipe row is locked for the duration of the transaction
// so toggles on the same recipe run one after another.
func (r *GormRecipeRepository) ToggleLike(ctx context.Context, id, userID uuid.UUID) (bool, int, error) {
	var (
		liked bool
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row recipeRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ? AND (is_public = ? OR user_id = ?)", id, true, userID).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		res := tx.Where("recipe_id = ? AND user_id = ?", id, userID).Delete(&likeRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := likeRow{RecipeID: id, UserID: userID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}

		return tx.Model(&likeRow{}).Where("recipe_id = ?", id).Count(&count).Error
	})
	if errors.Is(err, ErrNotFound) {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, int(count), nil
}

func (r *GormRecipeRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&recipeRow{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
