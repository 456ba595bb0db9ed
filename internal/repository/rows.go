package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devdish/devdish/backend/internal/model"
)

// stringList stores an ordered list of strings as a JSON array.
type stringList []string

// Value implements the driver.Valuer interface
func (a stringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *stringList) Scan(value interface{}) error {
	if value == nil {
		*a = stringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for string list", value)
	}

	return json.Unmarshal(bytes, a)
}

type recipeRow struct {
	ID           uuid.UUID   `gorm:"type:varchar(36);primarykey"`
	PublicID     string      `gorm:"type:varchar(36);not null;uniqueIndex"`
	UserID       uuid.UUID   `gorm:"type:varchar(36);not null;index:idx_recipes_user_created,priority:1"`
	Title        string      `gorm:"size:100;not null"`
	Description  string      `gorm:"size:500"`
	Instructions stringList  `gorm:"type:text;not null"`
	PrepTime     int         `gorm:"not null"`
	CookTime     int         `gorm:"not null"`
	Servings     int         `gorm:"not null"`
	Difficulty   string      `gorm:"size:10;not null;index"`
	Category     string      `gorm:"size:20;not null;index"`
	IsPublic     bool        `gorm:"not null;index"`
	Views        int64       `gorm:"not null"`
	Image        model.Image `gorm:"embedded;embeddedPrefix:image_"`
	CreatedAt    time.Time   `gorm:"index:idx_recipes_user_created,priority:2"`
	UpdatedAt    time.Time
	Ingredients  []ingredientRow `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags         []tagRow        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Likes        []likeRow       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (recipeRow) TableName() string {
	return "recipes"
}

type ingredientRow struct {
	ID       uint      `gorm:"primarykey"`
	RecipeID uuid.UUID `gorm:"type:varchar(36);not null;index"`
	Position int       `gorm:"not null"`
	Name     string    `gorm:"size:200;not null"`
	Quantity float64   `gorm:"not null"`
	Unit     string    `gorm:"size:20;not null"`
	Notes    string    `gorm:"size:200"`
}

func (ingredientRow) TableName() string {
	return "recipe_ingredients"
}

type tagRow struct {
	RecipeID uuid.UUID `gorm:"type:varchar(36);primarykey"`
	Tag      string    `gorm:"size:50;primarykey;index"`
	Position int       `gorm:"not null"`
}

func (tagRow) TableName() string {
	return "recipe_tags"
}

// likeRow is one member of a recipe's like set. The composite primary key
// keeps a user in the set at most once.
type likeRow struct {
	RecipeID  uuid.UUID `gorm:"type:varchar(36);primarykey"`
	UserID    uuid.UUID `gorm:"type:varchar(36);primarykey;index"`
	CreatedAt time.Time
}

func (likeRow) TableName() string {
	return "recipe_likes"
}

// GormModels lists the tables backing the relational recipe store.
func GormModels() []interface{} {
	return []interface{}{&recipeRow{}, &ingredientRow{}, &tagRow{}, &likeRow{}}
}

func newRecipeRow(r *model.Recipe) recipeRow {
	row := recipeRow{
		ID:           r.ID,
		PublicID:     r.PublicID,
		UserID:       r.UserID,
		Title:        r.Title,
		Description:  r.Description,
		Instructions: stringList(r.Instructions),
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Difficulty:   string(r.Difficulty),
		Category:     string(r.Category),
		IsPublic:     r.IsPublic,
		Views:        r.Views,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Ingredients:  ingredientRows(r),
		Tags:         tagRows(r),
	}
	if r.Image != nil {
		row.Image = *r.Image
	}
	return row
}

func ingredientRows(r *model.Recipe) []ingredientRow {
	rows := make([]ingredientRow, 0, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		rows = append(rows, ingredientRow{
			RecipeID: r.ID,
			Position: i,
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     string(ing.Unit),
			Notes:    ing.Notes,
		})
	}
	return rows
}

func tagRows(r *model.Recipe) []tagRow {
	rows := make([]tagRow, 0, len(r.Tags))
	for i, tag := range r.Tags {
		rows = append(rows, tagRow{RecipeID: r.ID, Tag: tag, Position: i})
	}
	return rows
}

func (row *recipeRow) toModel() model.Recipe {
	r := model.Recipe{
		ID:           row.ID,
		PublicID:     row.PublicID,
		UserID:       row.UserID,
		Title:        row.Title,
		Description:  row.Description,
		Instructions: []string(row.Instructions),
		PrepTime:     row.PrepTime,
		CookTime:     row.CookTime,
		Servings:     row.Servings,
		Difficulty:   model.Difficulty(row.Difficulty),
		Category:     model.Category(row.Category),
		IsPublic:     row.IsPublic,
		Views:        row.Views,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Ingredients:  make([]model.Ingredient, 0, len(row.Ingredients)),
		Tags:         make([]string, 0, len(row.Tags)),
		Likes:        make([]uuid.UUID, 0, len(row.Likes)),
	}
	for _, ing := range row.Ingredients {
		r.Ingredients = append(r.Ingredients, model.Ingredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     model.Unit(ing.Unit),
			Notes:    ing.Notes,
		})
	}
	for _, t := range row.Tags {
		r.Tags = append(r.Tags, t.Tag)
	}
	for _, l := range row.Likes {
		r.Likes = append(r.Likes, l.UserID)
	}
	if row.Image.Key != "" {
		img := row.Image
		r.Image = &img
	}
	return r
}
