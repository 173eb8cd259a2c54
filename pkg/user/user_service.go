package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventcal/eventcal/pkg/layout"
	"github.com/google/uuid"
)

var ErrUserDataInvalid = errors.New("invalid user data")

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	UpdateSettings(ctx context.Context, settings Settings) (User, error)
	DeleteUser(ctx context.Context, id int) error
	GetAllUsers(ctx context.Context) ([]User, error)
}

type Provider interface {
	GetCurrentUser(ctx context.Context) (User, error)
}

type UserServiceImpl struct {
	repo     Repo
	defaults Settings
}

// NewUserService creates the service. defaults fill the settings of newly created users.
func NewUserService(repo Repo, defaults Settings) *UserServiceImpl {
	return &UserServiceImpl{repo: repo, defaults: defaults}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.GetUser(ctx, userId)
}

func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if user.Name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrUserDataInvalid)
	}
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	user.Settings = u.withDefaults(user.Settings)
	if err := validateSettings(user.Settings); err != nil {
		return User{}, err
	}
	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

// UpdateUser changes the name and picture of the current user. Settings are kept.
func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	current, err := u.GetCurrentUser(ctx)
	if err != nil {
		return User{}, err
	}
	if user.Name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrUserDataInvalid)
	}
	current.Name = user.Name
	current.PicturePath = user.PicturePath
	return u.repo.UpdateUser(ctx, current.Id, current)
}

func (u *UserServiceImpl) UpdateSettings(ctx context.Context, settings Settings) (User, error) {
	current, err := u.GetCurrentUser(ctx)
	if err != nil {
		return User{}, err
	}
	settings = u.withDefaults(settings)
	if err := validateSettings(settings); err != nil {
		return User{}, err
	}
	current.Settings = settings
	return u.repo.UpdateUser(ctx, current.Id, current)
}

func (u *UserServiceImpl) DeleteUser(ctx context.Context, id int) error {
	return u.repo.DeleteUser(ctx, id)
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	return u.repo.GetAllUsers(ctx)
}

func (u *UserServiceImpl) withDefaults(s Settings) Settings {
	if s.Timezone == "" {
		s.Timezone = u.defaults.Timezone
	}
	if s.BadgeVariant == "" {
		s.BadgeVariant = u.defaults.BadgeVariant
	}
	if s.WorkingHours == nil {
		s.WorkingHours = u.defaults.WorkingHours
	}
	if s.VisibleHours == (layout.HourRange{}) {
		s.VisibleHours = u.defaults.VisibleHours
	}
	return s
}

func validateSettings(s Settings) error {
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrUserDataInvalid, s.Timezone)
	}
	if !s.BadgeVariant.Valid() {
		return fmt.Errorf("%w: unknown badge variant %q", ErrUserDataInvalid, s.BadgeVariant)
	}
	if err := s.VisibleHours.Validate(); err != nil {
		return fmt.Errorf("%w: visible hours: %v", ErrUserDataInvalid, err)
	}
	for day, r := range s.WorkingHours {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%w: working hours on %s: %v", ErrUserDataInvalid, day, err)
		}
	}
	return nil
}
