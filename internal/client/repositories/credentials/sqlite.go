package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ficomdev/ficomtest/internal/client/models"
	"github.com/ficomdev/ficomtest/internal/common"
	"github.com/ficomdev/ficomtest/internal/dbx"
)

// SQLiteRepository keeps credentials in the local `credentials` key/value
// table. It implements Repository.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set credentials[%s]: %w", key, err)
	}
	return nil
}

// Save persists the session triple in one transaction so a crash can never
// leave a user without matching tokens.
func (r *SQLiteRepository) Save(ctx context.Context, user *models.User, accessToken, refreshToken string) error {
	if user == nil || accessToken == "" || refreshToken == "" {
		return common.ErrorValidation
	}

	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := r.set(ctx, tx, common.CredentialKeyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		if err := r.set(ctx, tx, common.CredentialKeyRefreshToken, []byte(refreshToken)); err != nil {
			return err
		}
		return r.set(ctx, tx, common.CredentialKeyUser, profile)
	})
}

// Restore reads all three entries and returns them only if every one is
// present. Any missing entry is treated as "no session".
func (r *SQLiteRepository) Restore(ctx context.Context) (*Credentials, error) {
	access, err := r.get(ctx, r.db, common.CredentialKeyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := r.get(ctx, r.db, common.CredentialKeyRefreshToken)
	if err != nil {
		return nil, err
	}
	profile, err := r.get(ctx, r.db, common.CredentialKeyUser)
	if err != nil {
		return nil, err
	}

	if len(access) == 0 || len(refresh) == 0 || len(profile) == 0 {
		return nil, nil
	}

	user := &models.User{}
	if err := json.Unmarshal(profile, user); err != nil {
		// A corrupt profile is indistinguishable from a missing one.
		return nil, nil
	}

	return &Credentials{
		User:         user,
		AccessToken:  string(access),
		RefreshToken: string(refresh),
	}, nil
}

// Clear wipes all stored credentials. Clearing an empty store is a no-op.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}
