package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sumire/phlink/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	chat_id          INTEGER PRIMARY KEY,
	provider_user_id TEXT NOT NULL,
	display_name     TEXT NOT NULL,
	username         TEXT NOT NULL,
	avatar_url       TEXT,
	access_token     TEXT NOT NULL,
	refresh_token    TEXT,
	expires_at       INTEGER,
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
)`

// SQLiteCredentialStore persists credential records in a local SQLite file.
// Timestamps are stored as unix milliseconds.
type SQLiteCredentialStore struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite store at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteCredentialStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure credentials schema: %w", err)
	}

	return &SQLiteCredentialStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteCredentialStore) Close() error {
	return s.db.Close()
}

// Upsert inserts the record or fully replaces the existing one for the same
// chat id, keeping the original created_at.
func (s *SQLiteCredentialStore) Upsert(ctx context.Context, rec domain.CredentialRecord) (*domain.CredentialRecord, error) {
	now := time.Now().UTC().UnixMilli()

	var expires sql.NullInt64
	if rec.ExpiresAt != nil {
		expires = sql.NullInt64{Int64: rec.ExpiresAt.UTC().UnixMilli(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (chat_id, provider_user_id, display_name, username, avatar_url,
		                          access_token, refresh_token, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (chat_id)
		 DO UPDATE SET provider_user_id = excluded.provider_user_id,
		               display_name = excluded.display_name,
		               username = excluded.username,
		               avatar_url = excluded.avatar_url,
		               access_token = excluded.access_token,
		               refresh_token = excluded.refresh_token,
		               expires_at = excluded.expires_at,
		               updated_at = excluded.updated_at`,
		rec.ChatID, rec.ProviderUserID, rec.DisplayName, rec.Username, nullString(rec.AvatarURL),
		rec.AccessToken, nullString(rec.RefreshToken), expires, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert credential: %w", err)
	}

	return s.FindByChatID(ctx, rec.ChatID)
}

// FindByChatID retrieves the credential linked to a chat.
func (s *SQLiteCredentialStore) FindByChatID(ctx context.Context, chatID int64) (*domain.CredentialRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT chat_id, provider_user_id, display_name, username, avatar_url,
		        access_token, refresh_token, expires_at, created_at, updated_at
		 FROM credentials WHERE chat_id = ?`, chatID)

	rec, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find credential by chat id %d: %w", chatID, err)
	}
	return rec, nil
}

// List returns stored credentials ordered by creation time, newest first.
func (s *SQLiteCredentialStore) List(ctx context.Context, limit, offset int) ([]domain.CredentialRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, provider_user_id, display_name, username, avatar_url,
		        access_token, refresh_token, expires_at, created_at, updated_at
		 FROM credentials ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	recs := []domain.CredentialRecord{}
	for rows.Next() {
		rec, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*domain.CredentialRecord, error) {
	var (
		rec                  domain.CredentialRecord
		avatar, refresh      sql.NullString
		expires              sql.NullInt64
		createdMs, updatedMs int64
	)
	err := row.Scan(&rec.ChatID, &rec.ProviderUserID, &rec.DisplayName, &rec.Username, &avatar,
		&rec.AccessToken, &refresh, &expires, &createdMs, &updatedMs)
	if err != nil {
		return nil, err
	}

	if avatar.Valid {
		rec.AvatarURL = &avatar.String
	}
	if refresh.Valid {
		rec.RefreshToken = &refresh.String
	}
	if expires.Valid {
		t := time.UnixMilli(expires.Int64).UTC()
		rec.ExpiresAt = &t
	}
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return &rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
