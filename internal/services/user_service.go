package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/eventhub/internal/helpers"
	"github.com/joshua-takyi/eventhub/internal/models"
)

type UserService struct {
	userRepo    models.UserRepo
	auth        models.AuthProvider
	images      helpers.ImageUploader
	adminEmails map[string]bool
	logger      *slog.Logger
	now         func() time.Time
}

func NewUserService(userRepo models.UserRepo, auth models.AuthProvider, images helpers.ImageUploader, adminEmails []string, logger *slog.Logger) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &UserService{
		userRepo:    userRepo,
		auth:        auth,
		images:      images,
		adminEmails: admins,
		logger:      logger,
		now:         time.Now,
	}
}

func (us *UserService) initialRole(email string) models.Role {
	if us.adminEmails[strings.ToLower(email)] {
		return models.RoleAdmin
	}
	return models.RoleStudent
}

func (us *UserService) Register(ctx context.Context, in *models.RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, fmt.Errorf("%w: password must contain upper and lower case letters, a number and a special character", models.ErrValidation)
	}

	id, err := us.auth.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	now := us.now()
	user, err := us.userRepo.CreateUser(ctx, &models.User{
		ID:        id,
		Name:      in.Name,
		Email:     in.Email,
		Role:      us.initialRole(in.Email),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		us.logger.Error("identity created but profile insert failed", "user_id", id, "error", err)
		return nil, err
	}

	us.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login signs in with the identity provider and returns the caller's profile,
// creating one for accounts provisioned outside this API.
func (us *UserService) Login(ctx context.Context, in *models.LoginInput) (*models.AuthSession, *models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	session, err := us.auth.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, nil, err
	}

	user, err := us.userRepo.GetUserByID(ctx, session.UserID)
	if errors.Is(err, models.ErrNotFound) {
		now := us.now()
		user, err = us.userRepo.CreateUser(ctx, &models.User{
			ID:        session.UserID,
			Name:      strings.SplitN(in.Email, "@", 2)[0],
			Email:     in.Email,
			Role:      us.initialRole(in.Email),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, fmt.Errorf("%w: account is deactivated", models.ErrUnauthorized)
	}
	return session, user, nil
}

func (us *UserService) Refresh(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("%w: refresh token is required", models.ErrValidation)
	}
	return us.auth.Refresh(ctx, refreshToken)
}

// ResolveActor builds the request session for an authenticated subject.
func (us *UserService) ResolveActor(ctx context.Context, userID uuid.UUID) (models.Actor, error) {
	user, err := us.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return models.Actor{}, err
	}
	return user.Actor(), nil
}

func (us *UserService) GetUser(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error) {
	if err := CanViewUser(actor, id); err != nil {
		return nil, err
	}
	return us.userRepo.GetUserByID(ctx, id)
}

func (us *UserService) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	if err := CanManageUsers(actor); err != nil {
		return nil, err
	}
	return us.userRepo.ListUsers(ctx)
}

func (us *UserService) UpdateRole(ctx context.Context, actor models.Actor, id uuid.UUID, role string) (*models.User, error) {
	if err := CanManageUsers(actor); err != nil {
		return nil, err
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if actor.IsOwner(id) && parsed != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", models.ErrValidation)
	}

	user, err := us.userRepo.SetRole(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	us.logger.Info("user role changed", "user_id", id, "role", parsed, "admin_id", actor.UserID)
	return user, nil
}

func (us *UserService) SetActive(ctx context.Context, actor models.Actor, id uuid.UUID, active bool) (*models.User, error) {
	if err := CanManageUsers(actor); err != nil {
		return nil, err
	}
	if actor.IsOwner(id) && !active {
		return nil, fmt.Errorf("%w: admins cannot deactivate themselves", models.ErrValidation)
	}

	user, err := us.userRepo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	us.logger.Info("user activation changed", "user_id", id, "active", active, "admin_id", actor.UserID)
	return user, nil
}

func (us *UserService) UploadAvatar(ctx context.Context, actor models.Actor, source string) (*models.User, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: image is required", models.ErrValidation)
	}
	url, err := us.images.Upload(ctx, source, helpers.AvatarFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}
	return us.userRepo.SetAvatar(ctx, actor.UserID, url)
}
