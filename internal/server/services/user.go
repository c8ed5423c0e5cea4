// Package services implements the server-side business logic behind the
// HTTP API: account lifecycle and the per-user mood entry collections.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/moodmapper/moodmapper/internal/common"
	"github.com/moodmapper/moodmapper/internal/dbx"
	"github.com/moodmapper/moodmapper/internal/server/auth"
	"github.com/moodmapper/moodmapper/internal/server/config"
	"github.com/moodmapper/moodmapper/internal/server/models"
	"github.com/moodmapper/moodmapper/internal/server/repositories/repomanager"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// UserService handles registration, authentication, token rotation and
// account deletion.
type UserService struct {
	db                           *sql.DB
	rm                           repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService on the given database handle.
func NewUserService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		rm:                           rm,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new account. The password is stored as a bcrypt hash.
// A duplicate username maps to common.ErrUserExists.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrInternal
	}

	user, err := s.rm.Users(s.db).Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, err
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// Login verifies the credentials and issues a fresh token pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.rm.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrUnauthorized
	}

	return s.issueTokenPair(ctx, s.db, user.ID)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued, all inside one transaction. Unknown tokens map to
// common.ErrUnauthorized, expired ones to common.ErrRefreshTokenExpired.
func (s *UserService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.RefreshTokens(tx)

		stored, err := repo.Find(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.ErrUnauthorized
			}
			return common.ErrInternal
		}

		if time.Now().After(stored.Expires) {
			return common.ErrRefreshTokenExpired
		}

		if err := repo.Delete(ctx, token); err != nil {
			return common.ErrInternal
		}

		pair, err = s.issueTokenPair(ctx, tx, stored.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// DeleteAccount removes the user together with their collection and every
// outstanding refresh token.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.rm.Documents(tx).DeleteAllByUserID(ctx, userID); err != nil {
			return common.ErrInternal
		}
		if err := s.rm.RefreshTokens(tx).DeleteByUserID(ctx, userID); err != nil {
			return common.ErrInternal
		}
		if err := s.rm.Users(tx).DeleteByID(ctx, userID); err != nil {
			return common.ErrInternal
		}
		return nil
	})
}

func (s *UserService) issueTokenPair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrInternal
	}

	err = s.rm.RefreshTokens(db).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &TokenPair{UserID: userID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ParseAccessToken validates an access token and returns the user id it
// belongs to.
func (s *UserService) ParseAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}
