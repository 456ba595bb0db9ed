package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
)

const recipesCollection = "recipes"

type ingredientDocument struct {
	Name     string  `bson:"name"`
	Quantity float64 `bson:"quantity"`
	Unit     string  `bson:"unit"`
	Notes    string  `bson:"notes,omitempty"`
}

type imageDocument struct {
	Key         string `bson:"key"`
	ContentType string `bson:"contentType"`
	Filename    string `bson:"filename"`
}

// recipeDocument stores ids as strings so documents stay readable in the
// shell and filters compare plain values.
type recipeDocument struct {
	ID           string               `bson:"_id"`
	PublicID     string               `bson:"publicId"`
	UserID       string               `bson:"userId"`
	Title        string               `bson:"title"`
	Description  string               `bson:"description"`
	Ingredients  []ingredientDocument `bson:"ingredients"`
	Instructions []string             `bson:"instructions"`
	PrepTime     int                  `bson:"prepTime"`
	CookTime     int                  `bson:"cookTime"`
	Servings     int                  `bson:"servings"`
	Difficulty   string               `bson:"difficulty"`
	Category     string               `bson:"category"`
	Tags         []string             `bson:"tags"`
	IsPublic     bool                 `bson:"isPublic"`
	Views        int64                `bson:"views"`
	Likes        []string             `bson:"likes"`
	Image        *imageDocument       `bson:"image"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func newRecipeDocument(r *model.Recipe) recipeDocument {
	doc := recipeDocument{
		ID:           r.ID.String(),
		PublicID:     r.PublicID,
		UserID:       r.UserID.String(),
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  make([]ingredientDocument, 0, len(r.Ingredients)),
		Instructions: append([]string{}, r.Instructions...),
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		Servings:     r.Servings,
		Difficulty:   string(r.Difficulty),
		Category:     string(r.Category),
		Tags:         append([]string{}, r.Tags...),
		IsPublic:     r.IsPublic,
		Views:        r.Views,
		Likes:        make([]string, 0, len(r.Likes)),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	for _, ing := range r.Ingredients {
		doc.Ingredients = append(doc.Ingredients, ingredientDocument{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     string(ing.Unit),
			Notes:    ing.Notes,
		})
	}
	for _, id := range r.Likes {
		doc.Likes = append(doc.Likes, id.String())
	}
	if !r.Image.IsZero() {
		doc.Image = &imageDocument{Key: r.Image.Key, ContentType: r.Image.ContentType, Filename: r.Image.Filename}
	}
	return doc
}

func (d *recipeDocument) toModel() model.Recipe {
	id, _ := uuid.Parse(d.ID)
	userID, _ := uuid.Parse(d.UserID)
	r := model.Recipe{
		ID:           id,
		PublicID:     d.PublicID,
		UserID:       userID,
		Title:        d.Title,
		Description:  d.Description,
		Ingredients:  make([]model.Ingredient, 0, len(d.Ingredients)),
		Instructions: d.Instructions,
		PrepTime:     d.PrepTime,
		CookTime:     d.CookTime,
		Servings:     d.Servings,
		Difficulty:   model.Difficulty(d.Difficulty),
		Category:     model.Category(d.Category),
		Tags:         d.Tags,
		IsPublic:     d.IsPublic,
		Views:        d.Views,
		Likes:        make([]uuid.UUID, 0, len(d.Likes)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for _, ing := range d.Ingredients {
		r.Ingredients = append(r.Ingredients, model.Ingredient{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     model.Unit(ing.Unit),
			Notes:    ing.Notes,
		})
	}
	for _, id := range d.Likes {
		if u, err := uuid.Parse(id); err == nil {
			r.Likes = append(r.Likes, u)
		}
	}
	if d.Image != nil && d.Image.Key != "" {
		r.Image = &model.Image{Key: d.Image.Key, ContentType: d.Image.ContentType, Filename: d.Image.Filename}
	}
	return r
}

// MongoRecipeRepository stores each recipe as one document with embedded
// ingredients, tags and like set.
type MongoRecipeRepository struct {
	coll *mongo.Collection
}

var _ RecipeRepository = (*MongoRecipeRepository)(nil)

func NewMongoRecipeRepository(db *mongo.Database) *MongoRecipeRepository {
	return &MongoRecipeRepository{coll: db.Collection(recipesCollection)}
}

// EnsureIndexes creates the indexes listing and public lookup rely on.
func (r *MongoRecipeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "publicId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "likes", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create recipe indexes: %w", err)
	}
	return nil
}

// buildFilter translates c into a match document.
func buildFilter(c query.Criteria) bson.D {
	filter := bson.D{}
	if c.OwnerID != uuid.Nil {
		filter = append(filter, bson.E{Key: "userId", Value: c.OwnerID.String()})
	}
	if c.PublicOnly {
		filter = append(filter, bson.E{Key: "isPublic", Value: true})
	}
	if c.LikedBy != uuid.Nil {
		filter = append(filter, bson.E{Key: "likes", Value: c.LikedBy.String()})
	}
	if c.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: string(c.Category)})
	}
	if c.Difficulty != "" {
		filter = append(filter, bson.E{Key: "difficulty", Value: string(c.Difficulty)})
	}
	if c.MaxTotalTime != nil {
		filter = append(filter, bson.E{Key: "$expr", Value: bson.D{
			{Key: "$lte", Value: bson.A{totalTimeExpr, *c.MaxTotalTime}},
		}})
	}
	if len(c.Tags) > 0 {
		filter = append(filter, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: c.Tags}}})
	}
	if c.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(c.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "description", Value: re}},
			bson.D{{Key: "ingredients.name", Value: re}},
		}})
	}
	return filter
}

var (
	totalTimeExpr = bson.D{{Key: "$add", Value: bson.A{"$prepTime", "$cookTime"}}}

	difficultyRankExpr = bson.D{{Key: "$switch", Value: bson.D{
		{Key: "branches", Value: bson.A{
			bson.D{{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$difficulty", string(model.DifficultyEasy)}}}}, {Key: "then", Value: 1}},
			bson.D{{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$difficulty", string(model.DifficultyMedium)}}}}, {Key: "then", Value: 2}},
			bson.D{{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$difficulty", string(model.DifficultyHard)}}}}, {Key: "then", Value: 3}},
		}},
		{Key: "default", Value: 4},
	}}}

	likeCountExpr = bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}}}
)

// mongoSortKeys maps sort fields to document paths. Derived keys are added
// by an $addFields stage before sorting.
var mongoSortKeys = map[query.SortField]string{
	query.SortCreatedAt:  "createdAt",
	query.SortUpdatedAt:  "updatedAt",
	query.SortTitle:      "title",
	query.SortDifficulty: "_difficultyRank",
	query.SortTotalTime:  "_totalTime",
	query.SortPrepTime:   "prepTime",
	query.SortCookTime:   "cookTime",
	query.SortServings:   "servings",
	query.SortViews:      "views",
	query.SortLikes:      "_likeCount",
}

// listPipeline builds match, derive, sort, window and cleanup stages.
func listPipeline(q query.Query, page query.Page) mongo.Pipeline {
	key, ok := mongoSortKeys[q.Sort.Field]
	if !ok {
		key = mongoSortKeys[query.SortCreatedAt]
		q.Sort = query.DefaultSort
	}
	dir := 1
	if q.Sort.Desc {
		dir = -1
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: buildFilter(q.Criteria)}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "_totalTime", Value: totalTimeExpr},
			{Key: "_difficultyRank", Value: difficultyRankExpr},
			{Key: "_likeCount", Value: likeCountExpr},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: key, Value: dir}, {Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: int64(page.Skip())}},
		{{Key: "$limit", Value: int64(page.Limit)}},
		{{Key: "$project", Value: bson.D{
			{Key: "_totalTime", Value: 0},
			{Key: "_difficultyRank", Value: 0},
			{Key: "_likeCount", Value: 0},
		}}},
	}
}

// toggleLikeUpdate is a pipeline update that removes userID from likes when
// present and appends it otherwise, evaluated atomically on the server.
func toggleLikeUpdate(userID string) mongo.Pipeline {
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{userID, likes}}},
				bson.D{{Key: "$setDifference", Value: bson.A{likes, bson.A{userID}}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{userID}}}},
			}}}},
		}}},
	}
}

func (r *MongoRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	now := time.Now().UTC()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, newRecipeDocument(recipe)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

func (r *MongoRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (r *MongoRecipeRepository) FindByPublicID(ctx context.Context, publicID string) (*model.Recipe, error) {
	return r.findOne(ctx, bson.D{{Key: "publicId", Value: publicID}, {Key: "isPublic", Value: true}})
}

func (r *MongoRecipeRepository) findOne(ctx context.Context, filter bson.D) (*model.Recipe, error) {
	var doc recipeDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}
	recipe := doc.toModel()
	return &recipe, nil
}

func (r *MongoRecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	doc := newRecipeDocument(recipe)
	now := time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: doc.ID}, {Key: "userId", Value: doc.UserID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "title", Value: doc.Title},
			{Key: "description", Value: doc.Description},
			{Key: "ingredients", Value: doc.Ingredients},
			{Key: "instructions", Value: doc.Instructions},
			{Key: "prepTime", Value: doc.PrepTime},
			{Key: "cookTime", Value: doc.CookTime},
			{Key: "servings", Value: doc.Servings},
			{Key: "difficulty", Value: doc.Difficulty},
			{Key: "category", Value: doc.Category},
			{Key: "tags", Value: doc.Tags},
			{Key: "isPublic", Value: doc.IsPublic},
			{Key: "image", Value: doc.Image},
			{Key: "updatedAt", Value: now},
		}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	recipe.UpdatedAt = now
	return nil
}

func (r *MongoRecipeRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (*model.Recipe, error) {
	var doc recipeDocument
	err := r.coll.FindOneAndDelete(ctx,
		bson.D{{Key: "_id", Value: id.String()}, {Key: "userId", Value: ownerID.String()}},
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete recipe: %w", err)
	}
	recipe := doc.toModel()
	return &recipe, nil
}

func (r *MongoRecipeRepository) Find(ctx context.Context, q query.Query, page query.Page) ([]model.Recipe, error) {
	cursor, err := r.coll.Aggregate(ctx, listPipeline(q, page))
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	var docs []recipeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}

	recipes := make([]model.Recipe, 0, len(docs))
	for i := range docs {
		recipes = append(recipes, docs[i].toModel())
	}
	return recipes, nil
}

func (r *MongoRecipeRepository) Count(ctx context.Context, c query.Criteria) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, buildFilter(c))
	if err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return total, nil
}

func (r *MongoRecipeRepository) DistinctTags(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "tags", bson.D{{Key: "userId", Value: ownerID.String()}})
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags, nil
}

func (r *MongoRecipeRepository) CountBy(ctx context.Context, ownerID uuid.UUID, field GroupField) ([]model.GroupCount, error) {
	if field != GroupByCategory && field != GroupByDifficulty {
		return nil, fmt.Errorf("unsupported group field %q", field)
	}

	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "userId", Value: ownerID.String()}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + string(field)},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes by %s: %w", field, err)
	}

	var groups []struct {
		Value string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode recipe counts: %w", err)
	}

	counts := make([]model.GroupCount, 0, len(groups))
	for _, g := range groups {
		counts = append(counts, model.GroupCount{Value: g.Value, Count: g.Count})
	}
	return counts, nil
}

func (r *MongoRecipeRepository) ToggleLike(ctx context.Context, id, userID uuid.UUID) (bool, int, error) {
	uid := userID.String()
	filter := bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "isPublic", Value: true}},
			bson.D{{Key: "userId", Value: uid}},
		}},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: "likes", Value: 1}})

	var doc struct {
		Likes []string `bson:"likes"`
	}
	err := r.coll.FindOneAndUpdate(ctx, filter, toggleLikeUpdate(uid), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle like: %w", err)
	}

	liked := false
	for _, l := range doc.Likes {
		if l == uid {
			liked = true
			break
		}
	}
	return liked, len(doc.Likes), nil
}

func (r *MongoRecipeRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id.String()}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "views", Value: 1}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
