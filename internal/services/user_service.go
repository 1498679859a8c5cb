package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/personal-task-api/internal/auth"
	"github.com/yukikurage/personal-task-api/internal/constants"
	"github.com/yukikurage/personal-task-api/internal/models"
	"github.com/yukikurage/personal-task-api/internal/repository"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var validate = validator.New()

// UserService manages user accounts
type UserService struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, hasher *auth.PasswordHasher) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// CreateUserInput represents the information needed to register
type CreateUserInput struct {
	Username string
	Email    string
	Password string
}

// UpdateUserInput represents a partial update; nil fields are left unchanged
type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
}

// ListUsers returns every account. Only administrators may list users.
func (s *UserService) ListUsers(ctx context.Context, p auth.Principal) ([]models.User, error) {
	if !p.IsAdmin {
		return nil, ErrForbidden
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser registers a new, non-admin account
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	fields := map[string]string{}

	username := checkUsername(fields, input.Username)
	email := checkEmail(fields, input.Email)
	checkPassword(fields, input.Password)

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.ensureUsernameFree(ctx, username, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, usernameTaken()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser returns a user the principal may manage. An unknown ID is reported
// before the permission check.
func (s *UserService) GetUser(ctx context.Context, p auth.Principal, id uint64) (*models.User, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanManageUser(user.ID) {
		return nil, ErrForbidden
	}
	return user, nil
}

// UpdateUser changes username, email or password. The password is re-hashed.
func (s *UserService) UpdateUser(ctx context.Context, p auth.Principal, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, p, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}

	var username string
	if input.Username != nil {
		username = checkUsername(fields, *input.Username)
	}
	if input.Email != nil {
		user.Email = checkEmail(fields, *input.Email)
	}
	if input.Password != nil {
		checkPassword(fields, *input.Password)
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if input.Username != nil && username != user.Username {
		if err := s.ensureUsernameFree(ctx, username, user.ID); err != nil {
			return nil, err
		}
		user.Username = username
	}

	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, usernameTaken()
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes an account and all of its tasks
func (s *UserService) DeleteUser(ctx context.Context, p auth.Principal, id uint64) error {
	if _, err := s.GetUser(ctx, p, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// EnsureAdmin creates the named administrator, or promotes and resets the
// password of an existing account with that username. It reports whether a
// new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		user.IsAdmin = true
		user.PasswordHash = hash
		if email != "" {
			user.Email = email
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to promote admin: %w", err)
		}
		return user, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			IsAdmin:      true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to create admin: %w", err)
		}
		return user, true, nil
	default:
		return nil, false, fmt.Errorf("failed to find admin: %w", err)
	}
}

func (s *UserService) findUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ensureUsernameFree fails when username belongs to an account other than selfID
func (s *UserService) ensureUsernameFree(ctx context.Context, username string, selfID uint64) error {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return usernameTaken()
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check username: %w", err)
	}
}

func usernameTaken() *ValidationError {
	return newValidationError("username", "A user with that username already exists.")
}

func checkUsername(fields map[string]string, raw string) string {
	username := strings.TrimSpace(raw)
	switch {
	case username == "":
		fields["username"] = "This field may not be blank."
	case utf8.RuneCountInString(username) > constants.MaxUsernameLength:
		fields["username"] = fmt.Sprintf("Ensure this field has no more than %d characters.", constants.MaxUsernameLength)
	case !usernamePattern.MatchString(username):
		fields["username"] = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return username
}

func checkEmail(fields map[string]string, raw string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		return ""
	}
	if err := validate.Var(email, "email,max=254"); err != nil {
		fields["email"] = "Enter a valid email address."
	}
	return email
}

func checkPassword(fields map[string]string, password string) {
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		fields["password"] = fmt.Sprintf("Ensure this field has at least %d characters.", constants.MinPasswordLength)
	}
}
