package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ficomdev/ficomtest/internal/common"
	"github.com/ficomdev/ficomtest/internal/dbx"
	"github.com/ficomdev/ficomtest/internal/server/auth"
	"github.com/ficomdev/ficomtest/internal/server/config"
	"github.com/ficomdev/ficomtest/internal/server/models"
	"github.com/ficomdev/ficomtest/internal/server/repositories/repomanager"
)

// TokenPair is an access/refresh token couple issued on successful
// authentication. AccessTokenExpiresAt mirrors the JWT exp claim so the
// transport layer can expose it without re-parsing the token.
type TokenPair struct {
	AccessToken          string
	RefreshToken         string
	AccessTokenExpiresAt time.Time
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	bcryptCost                   int
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.JWTSecret),
		bcryptCost:                   auth.DefaultBcryptCost,
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new account and signs the user in, returning the
// created user together with a fresh token pair. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, *TokenPair, error) {

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, nil, common.ErrorAlreadyExists
		}
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, s.db, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Login authenticates an email/password pair. An unknown email and a wrong
// password both yield common.ErrorUnauthorized; the caller cannot tell
// which check failed.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn a hash comparison so the miss costs the same as a mismatch
			auth.VerifyDummyPassword(password)
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, s.db, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// RefreshToken rotates a refresh token: the presented token is revoked and
// a new pair is issued inside a single transaction, so the old token can
// never coexist with its successor. An unknown or expired token yields
// common.ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*models.User, *TokenPair, error) {

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrRefreshTokenExpired
		}
		return nil, nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(time.Now()) {
		return nil, nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	var tokenPair *TokenPair

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		tokenPair, err = s.generateTokenPair(ctx, tx, token.UserID)
		if err != nil {
			return fmt.Errorf("error generating token pair: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	return user, tokenPair, nil
}

// Logout revokes a single refresh token. Unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// GetUser returns the account behind an access token subject. A subject
// that is not a valid UUID cannot match a row, so it is rejected without
// touching the database.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if err := uuid.Validate(userID); err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// VerifyAccessToken validates a bearer token and returns its subject.
func (s *UserService) VerifyAccessToken(tokenString string) (string, error) {
	return auth.GetUserIDFromToken(tokenString, s.jwtSecret)
}

func (s *UserService) generateAccessToken(userID string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.accessTokenValidityDuration)
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *UserService) generateRefreshToken() (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	accessToken, expiresAt, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repomanager.RefreshTokens(db).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{
		AccessToken:          accessToken,
		RefreshToken:         refreshToken,
		AccessTokenExpiresAt: expiresAt,
	}, nil
}
