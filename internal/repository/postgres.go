package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/phlink/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	chat_id          BIGINT PRIMARY KEY,
	provider_user_id TEXT NOT NULL,
	display_name     TEXT NOT NULL,
	username         TEXT NOT NULL,
	avatar_url       TEXT,
	access_token     TEXT NOT NULL,
	refresh_token    TEXT,
	expires_at       TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresCredentialStore persists credential records in Postgres.
type PostgresCredentialStore struct {
	db *sqlx.DB
}

// NewPostgresCredentialStore creates a new PostgresCredentialStore.
func NewPostgresCredentialStore(db *sqlx.DB) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

// EnsureSchema creates the credentials table if it does not exist yet.
func (s *PostgresCredentialStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure credentials schema: %w", err)
	}
	return nil
}

// Upsert inserts the record or fully replaces the existing one for the same
// chat id. The single-statement write keeps concurrent re-links last-writer-
// wins without read-modify-write races. created_at is preserved on replace.
func (s *PostgresCredentialStore) Upsert(ctx context.Context, rec domain.CredentialRecord) (*domain.CredentialRecord, error) {
	var result domain.CredentialRecord
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO credentials (chat_id, provider_user_id, display_name, username, avatar_url,
		                          access_token, refresh_token, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (chat_id)
		 DO UPDATE SET provider_user_id = EXCLUDED.provider_user_id,
		               display_name = EXCLUDED.display_name,
		               username = EXCLUDED.username,
		               avatar_url = EXCLUDED.avatar_url,
		               access_token = EXCLUDED.access_token,
		               refresh_token = EXCLUDED.refresh_token,
		               expires_at = EXCLUDED.expires_at,
		               updated_at = NOW()
		 RETURNING chat_id, provider_user_id, display_name, username, avatar_url,
		           access_token, refresh_token, expires_at, created_at, updated_at`,
		rec.ChatID, rec.ProviderUserID, rec.DisplayName, rec.Username, rec.AvatarURL,
		rec.AccessToken, rec.RefreshToken, rec.ExpiresAt,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("upsert credential: %w", err)
	}
	return &result, nil
}

// FindByChatID retrieves the credential linked to a chat.
func (s *PostgresCredentialStore) FindByChatID(ctx context.Context, chatID int64) (*domain.CredentialRecord, error) {
	var rec domain.CredentialRecord
	err := s.db.GetContext(ctx, &rec,
		`SELECT chat_id, provider_user_id, display_name, username, avatar_url,
		        access_token, refresh_token, expires_at, created_at, updated_at
		 FROM credentials WHERE chat_id = $1`, chatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by chat id %d: %w", chatID, err)
	}
	return &rec, nil
}

// List returns stored credentials ordered by creation time, newest first.
func (s *PostgresCredentialStore) List(ctx context.Context, limit, offset int) ([]domain.CredentialRecord, error) {
	recs := []domain.CredentialRecord{}
	err := s.db.SelectContext(ctx, &recs,
		`SELECT chat_id, provider_user_id, display_name, username, avatar_url,
		        access_token, refresh_token, expires_at, created_at, updated_at
		 FROM credentials ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return recs, nil
}
