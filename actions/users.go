package actions

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/phillip/evently-go/models"
	"github.com/phillip/evently-go/store"
)

// UserService mirrors identity-provider accounts into the users collection.
type UserService struct {
	users    UserStore
	validate *validator.Validate
	settings
}

func NewUserService(users UserStore, opts ...Option) *UserService {
	return &UserService{users: users, validate: newValidator(), settings: newSettings(opts)}
}

func (s *UserService) CreateUser(ctx context.Context, user models.User) (created models.User, err error) {
	defer observe("create_user", time.Now(), &err)

	if err := validateStruct(s.validate, user); err != nil {
		return models.User{}, err
	}
	created, err = s.users.InsertUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, ValidationError{Field: "clerkId", Message: "already registered"}
		}
		return models.User{}, persistence("create user", err)
	}
	s.logger.Info().Str("user_id", created.ID.Hex()).Str("clerk_id", created.ClerkID).Msg("user created")
	return created, nil
}

// UpdateUser replaces the profile of the user with the given identity
// provider id.
func (s *UserService) UpdateUser(ctx context.Context, clerkID string, profile models.UserProfile) (updated models.User, err error) {
	defer observe("update_user", time.Now(), &err)

	if clerkID == "" {
		return models.User{}, ValidationError{Field: "clerkId", Message: "is required"}
	}
	if err := validateStruct(s.validate, profile); err != nil {
		return models.User{}, err
	}
	updated, err = s.users.UpdateUserProfile(ctx, clerkID, profile)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return models.User{}, NotFoundError{Resource: "user", ID: clerkID}
		case errors.Is(err, store.ErrDuplicate):
			return models.User{}, ValidationError{Field: "username", Message: "already taken"}
		}
		return models.User{}, persistence("update user", err)
	}
	return updated, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (user models.User, err error) {
	defer observe("get_user", time.Now(), &err)

	id, err := parseID("userId", userID)
	if err != nil {
		return models.User{}, err
	}
	user, err = s.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, NotFoundError{Resource: "user", ID: userID}
		}
		return models.User{}, persistence("get user", err)
	}
	return user, nil
}
