package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boba-kart/internal/auth"
	"boba-kart/internal/model"
	"boba-kart/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs bearer tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(u *model.User) (*auth.Token, error)
}

type authService struct {
	userRepo   repository.UserRepository
	issuer     TokenIssuer
	bcryptCost int
	now        Clock
	logger     zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, issuer TokenIssuer, bcryptCost int, logger zerolog.Logger) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		userRepo:   userRepo,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "auth").Logger(),
	}
}

// Register validates the request and creates the account together with the
// default role. No token is issued.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Profile, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	user := &model.User{
		ID:           model.NewID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Roles:        []string{model.DefaultRole},
		CreatedUTC:   utcNow(s.now),
	}

	if err := s.userRepo.CreateWithRole(ctx, user, model.DefaultRole); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			s.logger.Debug().Msg("registration with existing email")
			return nil, model.ErrEmailTaken
		}
		s.logger.Error().Err(err).Msg("failed to create account")
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("account registered")
	profile := model.ProfileOf(user)
	return &profile, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords yield the same error.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	if req == nil {
		return nil, model.NewValidationError("credentials are required", nil)
	}
	req.Email = strings.TrimSpace(req.Email)
	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "email is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError("credentials are invalid", fields)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to look up account")
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if user == nil {
		s.logger.Debug().Msg("login for unknown email")
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("login with wrong password")
		return nil, model.ErrInvalidCredentials
	}

	if len(user.Roles) == 0 {
		user.Roles = []string{model.DefaultRole}
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("jti", token.ID).Msg("token issued")
	return &model.LoginResponse{
		Token:     token.Value,
		TokenType: "Bearer",
		ExpiresIn: int(token.Lifetime.Seconds()),
		User:      model.ProfileOf(user),
	}, nil
}

// Me returns the profile of the account with the given id.
func (s *authService) Me(ctx context.Context, userID string) (*model.Profile, error) {
	id, err := model.ParseID(userID)
	if err != nil {
		return nil, model.ErrUnauthenticated
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get account")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	profile := model.ProfileOf(user)
	return &profile, nil
}

// bcrypt ignores input beyond this length and GenerateFromPassword rejects it.
const maxPasswordBytes = 72

func validateRegistration(req *model.RegisterRequest) error {
	if req == nil {
		return model.NewValidationError("registration is required", nil)
	}
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	fields := map[string]string{}
	switch {
	case req.Email == "":
		fields["email"] = "email is required"
	case !strings.Contains(req.Email, "@"):
		fields["email"] = "email must contain @"
	}
	switch {
	case req.Password == "":
		fields["password"] = "password is required"
	case len(req.Password) > maxPasswordBytes:
		fields["password"] = fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)
	}
	if req.ConfirmPassword == "" {
		fields["confirmPassword"] = "confirmPassword is required"
	} else if req.Password != req.ConfirmPassword {
		fields["confirmPassword"] = "passwords do not match"
	}
	if req.DisplayName == "" {
		fields["displayName"] = "displayName is required"
	}

	if len(fields) > 0 {
		return model.NewValidationError("registration is invalid", fields)
	}
	return nil
}
