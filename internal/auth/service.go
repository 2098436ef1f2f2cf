package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	pkgauth "github.com/orderdesk/orderdesk-backend/pkg/auth"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"gorm.io/gorm"
)

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Service exposes login and seller-account management.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	CreateSeller(ctx context.Context, actor identity.Actor, input CreateSellerInput) (*models.User, error)
	ListSellers(ctx context.Context, actor identity.Actor) ([]models.User, error)
	BlockSeller(ctx context.Context, actor identity.Actor, userID uint, hours int) error
	UnblockSeller(ctx context.Context, actor identity.Actor, userID uint) error
	DeleteSeller(ctx context.Context, actor identity.Actor, userID uint) error
}

// LoginInput is the credential payload.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// CreateSellerInput is the admin payload to provision a seller account.
type CreateSellerInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type service struct {
	repo     *Repository
	hasher   passwordHasher
	jwtCfg   config.JWTConfig
	dbClient *db.Client
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs an auth service instance.
func NewService(repo *Repository, hasher passwordHasher, jwtCfg config.JWTConfig, dbClient *db.Client, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		hasher:   hasher,
		jwtCfg:   jwtCfg,
		dbClient: dbClient,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Login authenticates the credentials and issues an access token. Accounts
// blocked with an expiry are unblocked automatically once it passes.
func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	if user.IsBlocked == 1 {
		if user.BlockedUntil != nil && s.now().After(*user.BlockedUntil) {
			if err := s.repo.SetBlocked(ctx, user.ID, 0, nil); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unblocking account")
			}
			user.IsBlocked = 0
			user.BlockedUntil = nil
		} else {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is blocked")
		}
	}

	ok, err := s.hasher.Verify(input.Password, user.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying credentials")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issuing token")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, user.Username), "login succeeded")
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (s *service) CreateSeller(ctx context.Context, actor identity.Actor, input CreateSellerInput) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage sellers")
	}
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if len(username) < 3 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 3 characters")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking username")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Username: username,
		Password: hash,
		Role:     enums.RoleSeller,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "idx_users_username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating seller")
	}
	return user, nil
}

func (s *service) ListSellers(ctx context.Context, actor identity.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage sellers")
	}
	sellers, err := s.repo.ListSellers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing sellers")
	}
	return sellers, nil
}

// BlockSeller blocks a seller account, either for a number of hours or
// indefinitely when hours is zero.
func (s *service) BlockSeller(ctx context.Context, actor identity.Actor, userID uint, hours int) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage sellers")
	}
	if hours < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "hours must not be negative")
	}

	seller, err := s.loadSeller(ctx, userID)
	if err != nil {
		return err
	}

	var until *time.Time
	if hours > 0 {
		expiry := s.now().Add(time.Duration(hours) * time.Hour)
		until = &expiry
	}
	if err := s.repo.SetBlocked(ctx, seller.ID, 1, until); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "blocking seller")
	}
	return nil
}

func (s *service) UnblockSeller(ctx context.Context, actor identity.Actor, userID uint) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage sellers")
	}
	seller, err := s.loadSeller(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.SetBlocked(ctx, seller.ID, 0, nil); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unblocking seller")
	}
	return nil
}

func (s *service) DeleteSeller(ctx context.Context, actor identity.Actor, userID uint) error {
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins may manage sellers")
	}
	seller, err := s.loadSeller(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, seller.ID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting seller")
	}
	return nil
}

// loadSeller fetches an account and rejects operations on admin accounts.
func (s *service) loadSeller(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}
	if user.Role != enums.RoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin accounts cannot be managed here")
	}
	return user, nil
}
