package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/orderdesk/orderdesk-backend/internal/identity"
	pkgauth "github.com/orderdesk/orderdesk-backend/pkg/auth"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/db/models"
	"github.com/orderdesk/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/orderdesk/orderdesk-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (stubHasher) Verify(password, encodedHash string) (bool, error) {
	return strings.TrimPrefix(encodedHash, "hashed:") == password, nil
}

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))
	return conn
}

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "orderdesk", ExpirationMinutes: 1440}
}

func newAuthService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn), stubHasher{}, testJWT(), &db.Client{}, nil)
	require.NoError(t, err)
	return svc
}

var adminActor = identity.Actor{UserID: 1, Username: "admin", Role: enums.RoleAdmin}
var sellerActor = identity.Actor{UserID: 2, Username: "acme", Role: enums.RoleSeller}

func seedUser(t *testing.T, conn *gorm.DB, username, password string, role enums.Role) *models.User {
	t.Helper()

	user := &models.User{Username: username, Password: "hashed:" + password, Role: role}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func TestLogin_Succeeds(t *testing.T) {
	conn := setupAuthTestDB(t)
	seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	svc := newAuthService(t, conn)

	result, err := svc.Login(context.Background(), LoginInput{Username: "ACME", Password: "password123"})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWT(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.Username)
	assert.Equal(t, enums.RoleSeller, claims.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	conn := setupAuthTestDB(t)
	seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	svc := newAuthService(t, conn)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Username: "acme", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(ctx, LoginInput{Username: "ghost", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestLogin_BlockedAccount(t *testing.T) {
	conn := setupAuthTestDB(t)
	user := seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	until := time.Now().Add(1 * time.Hour)
	require.NoError(t, conn.Model(user).Updates(map[string]any{"is_blocked": 1, "blocked_until": &until}).Error)

	svc := newAuthService(t, conn)
	_, err := svc.Login(context.Background(), LoginInput{Username: "acme", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestLogin_AutoUnblockAfterExpiry(t *testing.T) {
	conn := setupAuthTestDB(t)
	user := seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	until := time.Now().Add(-1 * time.Minute)
	require.NoError(t, conn.Model(user).Updates(map[string]any{"is_blocked": 1, "blocked_until": &until}).Error)

	svc := newAuthService(t, conn)
	result, err := svc.Login(context.Background(), LoginInput{Username: "acme", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	var reloaded models.User
	require.NoError(t, conn.First(&reloaded, user.ID).Error)
	assert.Equal(t, 0, reloaded.IsBlocked)
	assert.Nil(t, reloaded.BlockedUntil)
}

func TestLogin_IndefiniteBlockStaysBlocked(t *testing.T) {
	conn := setupAuthTestDB(t)
	user := seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	require.NoError(t, conn.Model(user).Update("is_blocked", 1).Error)

	svc := newAuthService(t, conn)
	_, err := svc.Login(context.Background(), LoginInput{Username: "acme", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestCreateSeller(t *testing.T) {
	conn := setupAuthTestDB(t)
	svc := newAuthService(t, conn)
	ctx := context.Background()

	created, err := svc.CreateSeller(ctx, adminActor, CreateSellerInput{Username: "NewSeller", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "newseller", created.Username)
	assert.Equal(t, enums.RoleSeller, created.Role)
	assert.Equal(t, "hashed:password123", created.Password)

	_, err = svc.CreateSeller(ctx, adminActor, CreateSellerInput{Username: "newseller", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	_, err = svc.CreateSeller(ctx, sellerActor, CreateSellerInput{Username: "another", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	_, err = svc.CreateSeller(ctx, adminActor, CreateSellerInput{Username: "ok", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateSeller(ctx, adminActor, CreateSellerInput{Username: "valid", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestBlockUnblockSeller(t *testing.T) {
	conn := setupAuthTestDB(t)
	user := seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	svc := newAuthService(t, conn)
	ctx := context.Background()

	require.NoError(t, svc.BlockSeller(ctx, adminActor, user.ID, 24))

	var blocked models.User
	require.NoError(t, conn.First(&blocked, user.ID).Error)
	assert.Equal(t, 1, blocked.IsBlocked)
	require.NotNil(t, blocked.BlockedUntil)

	require.NoError(t, svc.UnblockSeller(ctx, adminActor, user.ID))
	var unblocked models.User
	require.NoError(t, conn.First(&unblocked, user.ID).Error)
	assert.Equal(t, 0, unblocked.IsBlocked)
	assert.Nil(t, unblocked.BlockedUntil)
}

func TestBlockSeller_IndefiniteWhenHoursZero(t *testing.T) {
	conn := setupAuthTestDB(t)
	user := seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	svc := newAuthService(t, conn)

	require.NoError(t, svc.BlockSeller(context.Background(), adminActor, user.ID, 0))

	var blocked models.User
	require.NoError(t, conn.First(&blocked, user.ID).Error)
	assert.Equal(t, 1, blocked.IsBlocked)
	assert.Nil(t, blocked.BlockedUntil)
}

func TestSellerManagement_ProtectsAdmins(t *testing.T) {
	conn := setupAuthTestDB(t)
	admin := seedUser(t, conn, "root", "password123", enums.RoleAdmin)
	svc := newAuthService(t, conn)
	ctx := context.Background()

	err := svc.BlockSeller(ctx, adminActor, admin.ID, 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	err = svc.DeleteSeller(ctx, adminActor, admin.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestDeleteSeller(t *testing.T) {
	conn := setupAuthTestDB(t)
	user := seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	svc := newAuthService(t, conn)
	ctx := context.Background()

	require.NoError(t, svc.DeleteSeller(ctx, adminActor, user.ID))

	err := svc.DeleteSeller(ctx, adminActor, user.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListSellers(t *testing.T) {
	conn := setupAuthTestDB(t)
	seedUser(t, conn, "root", "password123", enums.RoleAdmin)
	seedUser(t, conn, "beta", "password123", enums.RoleSeller)
	seedUser(t, conn, "acme", "password123", enums.RoleSeller)
	svc := newAuthService(t, conn)
	ctx := context.Background()

	sellers, err := svc.ListSellers(ctx, adminActor)
	require.NoError(t, err)
	require.Len(t, sellers, 2)
	assert.Equal(t, "acme", sellers[0].Username)
	assert.Equal(t, "beta", sellers[1].Username)

	_, err = svc.ListSellers(ctx, sellerActor)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestEnsureAdmin(t *testing.T) {
	conn := setupAuthTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	require.NoError(t, EnsureAdmin(ctx, repo, stubHasher{}, "Root", "bootpass123", nil))

	admin, err := repo.FindByUsername(ctx, "root")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, enums.RoleAdmin, admin.Role)
	assert.Equal(t, "hashed:bootpass123", admin.Password)

	// idempotent on rerun
	require.NoError(t, EnsureAdmin(ctx, repo, stubHasher{}, "root", "otherpass123", nil))
	again, err := repo.FindByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "hashed:bootpass123", again.Password)

	// blank password skips bootstrap entirely
	require.NoError(t, EnsureAdmin(ctx, repo, stubHasher{}, "second", "", nil))
	missing, err := repo.FindByUsername(ctx, "second")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
