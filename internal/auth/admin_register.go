package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

// AdminRegisterRequest is what the create-admin command collects.
type AdminRegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// AdminRegisterResult reports the admin account and whether it already
// existed as a customer and was promoted.
type AdminRegisterResult struct {
	User     *users.UserDTO
	Promoted bool
}

// AdminRegisterService bootstraps store administrators.
type AdminRegisterService interface {
	Register(ctx context.Context, req AdminRegisterRequest) (*AdminRegisterResult, error)
}

type adminUserStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Promote(ctx context.Context, id uuid.UUID) error
}

type adminRegisterService struct {
	users       adminUserStore
	passwordCfg config.PasswordConfig
}

func NewAdminRegisterService(store adminUserStore, passwordCfg config.PasswordConfig) (AdminRegisterService, error) {
	if store == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &adminRegisterService{users: store, passwordCfg: passwordCfg}, nil
}

// Register creates an admin account. An existing customer with the same
// email is promoted instead; its password is left unchanged.
func (s *adminRegisterService) Register(ctx context.Context, req AdminRegisterRequest) (*AdminRegisterResult, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.promote(ctx, existing)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	if err := security.CheckPassword(req.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		IsAdmin:      true,
	})
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailExistsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return &AdminRegisterResult{User: users.FromModel(user)}, nil
}

func (s *adminRegisterService) promote(ctx context.Context, user *models.User) (*AdminRegisterResult, error) {
	if user.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already an admin")
	}
	if err := s.users.Promote(ctx, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote user")
	}
	user.IsAdmin = true
	return &AdminRegisterResult{User: users.FromModel(user), Promoted: true}, nil
}
