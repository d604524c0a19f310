package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/iliyamo/fitness-center-listings/internal/model"
	"github.com/iliyamo/fitness-center-listings/internal/repository"
	"github.com/iliyamo/fitness-center-listings/internal/validation"
)

const (
	msgUsernameTaken   = "a user with that username already exists."
	msgEmailTaken      = "a user with that email already exists."
	msgInvalidEmail    = "enter a valid email address."
	msgInvalidUsername = "enter a valid username. this value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUsernameTooLong = "ensure this field has no more than 150 characters."
	maxUsernameLen     = 150
)

// UserStore is the account storage the service needs.  repository.UserRepo
// and repository.MemoryUserStore satisfy it.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	// RevokeByHash reports whether this call revoked the token.  False means
	// it was unknown or already revoked.
	RevokeByHash(ctx context.Context, tokenHash string) (bool, error)
}

// Service implements registration, login, token refresh and request
// authentication on top of the stores and the token manager.
type Service struct {
	Users      UserStore
	Tokens     TokenStore
	Issuer     TokenIssuer
	Verifier   TokenVerifier
	BcryptCost int
}

func NewService(users UserStore, tokens TokenStore, jwtm *JWTManager, bcryptCost int) *Service {
	return &Service{Users: users, Tokens: tokens, Issuer: jwtm, Verifier: jwtm, BcryptCost: bcryptCost}
}

// RegisterInput is the /register request body.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a regular, active account.  Field problems are returned
// as validation.Errors.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.createUser(ctx, in, false)
}

// CreateStaff creates an account with staff rights.  Staff may modify any
// fitness center.
func (s *Service) CreateStaff(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.createUser(ctx, in, true)
}

func (s *Service) createUser(ctx context.Context, in RegisterInput, staff bool) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	errs := validateRegistration(in)
	if !errs.Has("username") || !errs.Has("email") {
		usernameTaken, emailTaken, err := s.Users.Taken(ctx, in.Username, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check account uniqueness: %w", err)
		}
		if usernameTaken && !errs.Has("username") {
			errs.Add("username", msgUsernameTaken)
		}
		if emailTaken && !errs.Has("email") {
			errs.Add("email", msgEmailTaken)
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := HashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		IsStaff:      staff,
		IsActive:     true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, validation.Errors{"username": {msgUsernameTaken}}
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, validation.Errors{"email": {msgEmailTaken}}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func validateRegistration(in RegisterInput) validation.Errors {
	errs := validation.Errors{}

	switch {
	case in.Username == "":
		errs.Add("username", validation.MsgRequired)
	case utf8.RuneCountInString(in.Username) > maxUsernameLen:
		errs.Add("username", msgUsernameTooLong)
	case !validUsername(in.Username):
		errs.Add("username", msgInvalidUsername)
	}

	if in.Email == "" {
		errs.Add("email", validation.MsgRequired)
	} else if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		errs.Add("email", msgInvalidEmail)
	}

	if in.Password == "" {
		errs.Add("password", validation.MsgRequired)
	}
	return errs
}

func validUsername(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		if !strings.ContainsRune("@.+-_", r) {
			return false
		}
	}
	return true
}

// Login checks the credentials and issues a fresh token pair.  Unknown
// users, inactive users and wrong passwords all yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := s.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive || !VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh exchanges a refresh token for a new pair.  The presented token is
// revoked, so each refresh token works once.
func (s *Service) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	hash := HashRefresh(strings.TrimSpace(raw))
	userID, err := s.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, fmt.Errorf("validate refresh token: %w", err)
	}
	// only the caller whose revoke lands may rotate the token
	revoked, err := s.Tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return TokenPair{}, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !revoked {
		return TokenPair{}, ErrInvalidToken
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrInvalidToken
		}
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return TokenPair{}, ErrInvalidToken
	}
	return s.issue(ctx, u)
}

// Logout revokes a single refresh token.
func (s *Service) Logout(ctx context.Context, raw string) error {
	hash := HashRefresh(strings.TrimSpace(raw))
	if _, err := s.Tokens.ValidateRefresh(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("validate refresh token: %w", err)
	}
	revoked, err := s.Tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if !revoked {
		return ErrInvalidToken
	}
	return nil
}

// Authenticate resolves a raw access token to a Caller.  The account is
// reloaded so that deactivation and staff changes apply immediately rather
// than when the token expires.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Caller, error) {
	claimed, err := s.Verifier.Verify(raw)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.GetByID(ctx, claimed.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	return &Caller{ID: u.ID, Username: u.Username, IsStaff: u.IsStaff}, nil
}

func (s *Service) issue(ctx context.Context, u *model.User) (TokenPair, error) {
	pair, err := s.Issuer.Issue(u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Tokens.StoreRefresh(ctx, u.ID, HashRefresh(pair.Refresh), pair.RefreshExpiry); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}
