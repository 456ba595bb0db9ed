package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/devdish/devdish/backend/internal/blob"
	"github.com/devdish/devdish/backend/internal/model"
	"github.com/devdish/devdish/backend/internal/query"
	"github.com/devdish/devdish/backend/internal/repository"
	"github.com/devdish/devdish/backend/internal/types"
)

// UserService handles public profiles and profile updates
type UserService struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
	images  IImageService
}

var _ IUserService = (*UserService)(nil)

func NewUserService(users repository.UserRepository, recipes repository.RecipeRepository, images IImageService) *UserService {
	return &UserService{
		users:   users,
		recipes: recipes,
		images:  images,
	}
}

func (s *UserService) get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

// Profile returns the user with public and total recipe counts.
func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	public, err := s.recipes.Count(ctx, query.Criteria{OwnerID: id, PublicOnly: true})
	if err != nil {
		return nil, err
	}
	total, err := s.recipes.Count(ctx, query.Criteria{OwnerID: id})
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		User:  user,
		Stats: model.UserStats{PublicRecipes: public, TotalRecipes: total},
	}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*model.User, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username != user.Username {
			taken, err := s.users.UsernameTaken(ctx, username, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrUsernameTaken
			}
			user.Username = username
		}
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}
	if req.Website != nil {
		user.Website = strings.TrimSpace(*req.Website)
	}
	if req.SocialMedia != nil {
		user.SocialMedia = model.SocialMedia{
			Twitter:   strings.TrimSpace(req.SocialMedia.Twitter),
			Instagram: strings.TrimSpace(req.SocialMedia.Instagram),
		}
	}

	if len(user.Username) < 3 {
		return nil, NewValidationError("username", "Username must be at least 3 characters")
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// PublicRecipes lists a user's public recipes, newest first unless the
// filter sorts otherwise.
func (s *UserService) PublicRecipes(ctx context.Context, id uuid.UUID, f query.Filter) (*query.Result, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := listRecipes(ctx, s.recipes, query.Compile(f, query.PublicBy(id)), query.NewPage(f.Page, f.Limit))
	if err != nil {
		return nil, err
	}
	owner := user.Owner()
	for i := range result.Recipes {
		result.Recipes[i].Owner = owner
	}
	return result, nil
}

// SetAvatar stores up as the user's avatar and removes the previous one.
func (s *UserService) SetAvatar(ctx context.Context, id uuid.UUID, up *Upload) (*model.User, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	img, err := s.images.Upload(ctx, id, up)
	if err != nil {
		return nil, err
	}

	previous := user.Avatar
	user.Avatar = *img
	if err := s.users.Update(ctx, user); err != nil {
		s.images.Remove(ctx, img)
		return nil, err
	}

	s.images.Remove(ctx, &previous)
	return user, nil
}

func (s *UserService) Avatar(ctx context.Context, id uuid.UUID) (*blob.Object, error) {
	user, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.images.Open(ctx, &user.Avatar)
}
