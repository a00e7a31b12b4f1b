package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"auth_gate/internal/logging"
	"auth_gate/internal/model"
	"auth_gate/internal/repository"
	"auth_gate/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72 // bcrypt ignores anything past this
	MaxNameLength     = 100
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, email, password, name string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Options tunes an AuthService; zero values fall back to production defaults
type Options struct {
	InitialAdminEmail string
	BcryptCost        int
	Now               func() time.Time
	NewID             func() string
}

type authService struct {
	userRepo   repository.UserRepository
	jwtUtil    *utils.JWTUtil
	log        logging.Logger
	validate   *validator.Validate
	adminEmail string
	bcryptCost int
	now        func() time.Time
	newID      func() string
	dummyHash  string
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, log logging.Logger, opts Options) AuthService {
	s := &authService{
		userRepo:   userRepo,
		jwtUtil:    jwtUtil,
		log:        log.With("component", "auth_service"),
		validate:   validator.New(),
		adminEmail: NormalizeEmail(opts.InitialAdminEmail),
		bcryptCost: opts.BcryptCost,
		now:        opts.Now,
		newID:      opts.NewID,
	}
	if s.bcryptCost == 0 {
		s.bcryptCost = 10
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	// Compared against when the email is unknown so both login failures cost the same
	s.dummyHash, _ = utils.HashPasswordWithCost("dummy-password", s.bcryptCost)
	return s
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) validateSignup(email, password, name string) error {
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, MaxPasswordBytes)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, MaxNameLength)
	}
	return nil
}

// Signup creates a new account and issues its first token
func (s *authService) Signup(ctx context.Context, email, password, name string) (*model.User, string, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := s.validateSignup(email, password, name); err != nil {
		return nil, "", err
	}

	hashedPassword, err := utils.HashPasswordWithCost(password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleUser
	if s.adminEmail != "" && email == s.adminEmail {
		role = model.RoleAdmin
		s.log.Info(ctx, "registering initial admin", "email", email)
	}

	user := &model.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         name,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		s.log.Error(ctx, "failed to store user", "error", err)
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.jwtUtil.Issue(user.ID, user.Role)
	if err != nil {
		s.log.Error(ctx, "user created but token signing failed", "user_id", user.ID, "error", err)
		return nil, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	s.log.Info(ctx, "user signed up", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = NormalizeEmail(email)

	// bcrypt only sees the first MaxPasswordBytes, so longer input could
	// otherwise match a stored password it merely starts with
	if len(password) > MaxPasswordBytes {
		utils.CheckPasswordHash(password[:MaxPasswordBytes], s.dummyHash)
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error(ctx, "failed to look up user", "error", err)
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		utils.CheckPasswordHash(password, s.dummyHash)
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.Issue(user.ID, user.Role)
	if err != nil {
		s.log.Error(ctx, "token signing failed", "user_id", user.ID, "error", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Me loads the user a verified token points at. Identity is never cached;
// every call goes to the store.
func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "failed to load user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("error finding user by ID: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CountUsers reports how many accounts exist
func (s *authService) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to count users", "error", err)
		return 0, err
	}
	return n, nil
}
