package services

import (
	"context"

	"github.com/jobportal/apiserver/types"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetProfilePicture(ctx context.Context, id int, picture string) error
	SetResumeKey(ctx context.Context, id int, key string) error
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	if user.ProfilePicture == "" {
		user.ProfilePicture = types.DefaultProfilePicture
	}
	return s.repo.Create(ctx, user)
}

func (s *UserService) SetProfilePicture(ctx context.Context, id int, picture string) error {
	return s.repo.SetProfilePicture(ctx, id, picture)
}

func (s *UserService) SetResumeKey(ctx context.Context, id int, key string) error {
	return s.repo.SetResumeKey(ctx, id, key)
}
