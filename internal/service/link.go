package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sumire/phlink/internal/domain"
)

// CredentialStore defines the persistence interface consumed by LinkService.
type CredentialStore interface {
	Upsert(ctx context.Context, rec domain.CredentialRecord) (*domain.CredentialRecord, error)
	FindByChatID(ctx context.Context, chatID int64) (*domain.CredentialRecord, error)
	List(ctx context.Context, limit, offset int) ([]domain.CredentialRecord, error)
}

// ProviderClient defines the OAuth provider interface consumed by LinkService.
type ProviderClient interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (domain.TokenSet, error)
	FetchProfile(ctx context.Context, accessToken string) (*domain.ProviderProfile, error)
}

// Notifier delivers link-success messages to the originating chat.
type Notifier interface {
	LinkSucceeded(ctx context.Context, chatID int64, profile domain.ProviderProfile) error
}

// LinkService runs the account-link flow: code exchange, profile fetch,
// credential upsert, then a best-effort notification.
type LinkService struct {
	provider ProviderClient
	store    CredentialStore
	notifier Notifier
}

// NewLinkService creates a new LinkService.
func NewLinkService(provider ProviderClient, store CredentialStore, notifier Notifier) *LinkService {
	return &LinkService{provider: provider, store: store, notifier: notifier}
}

// BeginLink returns the provider consent URL carrying a fresh state bound to
// the chat.
func (s *LinkService) BeginLink(chatID int64) string {
	state := domain.LinkState{ChatID: chatID, Nonce: uuid.NewString()}
	return s.provider.AuthCodeURL(state.Encode())
}

// CompleteLink finishes the flow for a validated callback. The exchange and
// profile fetch are single attempts; a persistence failure is fatal because
// the caller must never be told the link succeeded when the credential is not
// durable. Once the upsert lands, a failed notification is logged and
// swallowed.
func (s *LinkService) CompleteLink(ctx context.Context, code string, state domain.LinkState) (*domain.CredentialRecord, error) {
	tokens, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	profile, err := s.provider.FetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch provider profile: %w", err)
	}

	rec, err := s.store.Upsert(ctx, domain.CredentialRecord{
		ChatID:         state.ChatID,
		ProviderUserID: profile.ProviderUserID,
		DisplayName:    profile.DisplayName,
		Username:       profile.Username,
		AvatarURL:      profile.AvatarURL,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		ExpiresAt:      tokens.ExpiresAt,
	})
	if err != nil {
		return nil, &domain.StorageError{Err: err}
	}

	if err := s.notifier.LinkSucceeded(ctx, state.ChatID, *profile); err != nil {
		slog.Error("link notification failed",
			"chat_id", state.ChatID,
			"provider_user_id", profile.ProviderUserID,
			"error", err,
		)
	}

	return rec, nil
}

// GetCredential returns the credential linked to a chat.
func (s *LinkService) GetCredential(ctx context.Context, chatID int64) (*domain.CredentialRecord, error) {
	return s.store.FindByChatID(ctx, chatID)
}

// ListCredentials returns stored credential records for the admin listing.
func (s *LinkService) ListCredentials(ctx context.Context, limit, offset int) ([]domain.CredentialRecord, error) {
	return s.store.List(ctx, limit, offset)
}
