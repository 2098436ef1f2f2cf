package auth

import (
	"context"
	"strings"

	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
)

// EnsureAdmin creates the initial admin account when none exists. A blank
// password skips bootstrap so production can manage accounts out of band.
func EnsureAdmin(ctx context.Context, repo *Repository, hasher passwordHasher, username, password string, logg *logger.Logger) error {
	if password == "" {
		return nil
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "bootstrap admin username is required")
	}

	existing, err := repo.FindByUsername(ctx, username)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking bootstrap admin")
	}
	if existing != nil {
		return nil
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing bootstrap password")
	}

	admin := &models.User{
		Username: username,
		Password: hash,
		Role:     enums.RoleAdmin,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating bootstrap admin")
	}
	if logg != nil {
		logg.Info(logg.WithUsername(ctx, username), "bootstrap admin created")
	}
	return nil
}
