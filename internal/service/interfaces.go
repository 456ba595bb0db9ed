package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/devdish/devdish/backend/internal/blob"
	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(user *model.User) (string, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// IRecipeService defines the owner-scoped recipe operations
type IRecipeService interface {
	Create(ctx context.Context, ownerID uuid.UUID, req *types.CreateRecipeRequest) (*model.Recipe, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Recipe, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, req *types.UpdateRecipeRequest) (*model.Recipe, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, f query.Filter) (*query.Result, error)
	Tags(ctx context.Context, ownerID uuid.UUID) ([]string, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (*model.RecipeStats, error)
	SetImage(ctx context.Context, ownerID, id uuid.UUID, up *Upload) (*model.Recipe, error)
	Image(ctx context.Context, id uuid.UUID) (*blob.Object, error)
}

// IInteractionService defines public listing, likes and views
type IInteractionService interface {
	ListPublic(ctx context.Context, f query.Filter) (*query.Result, error)
	GetPublic(ctx context.Context, publicID string) (*model.Recipe, error)
	RecordView(ctx context.Context, id uuid.UUID) bool
	ToggleLike(ctx context.Context, id, userID uuid.UUID) (*types.LikeResponse, error)
	Liked(ctx context.Context, userID uuid.UUID, f query.Filter) (*query.Result, error)
}

// IUserService defines user profile operations
type IUserService interface {
	Profile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*model.User, error)
	PublicRecipes(ctx context.Context, id uuid.UUID, f query.Filter) (*query.Result, error)
	SetAvatar(ctx context.Context, id uuid.UUID, up *Upload) (*model.User, error)
	Avatar(ctx context.Context, id uuid.UUID) (*blob.Object, error)
}

// IImageService defines image upload and retrieval
type IImageService interface {
	Upload(ctx context.Context, ownerID uuid.UUID, up *Upload) (*model.Image, error)
	Open(ctx context.Context, img *model.Image) (*blob.Object, error)
	Remove(ctx context.Context, img *model.Image)
	CheckOwnership(ownerID uuid.UUID, img *model.Image) error
}
