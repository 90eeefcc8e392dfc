package domain

import "time"

// TokenSet is the result of an authorization-code exchange. RefreshToken and
// ExpiresAt are nil when the provider omits them.
type TokenSet struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time
}

// ProviderProfile is the canonical identity fetched from the provider after
// the exchange. ProviderUserID lives in the provider's identity space and is
// never used as a storage key; records are keyed by the Telegram chat id
// decoded from state.
type ProviderProfile struct {
	ProviderUserID string  `json:"provider_user_id"`
	DisplayName    string  `json:"display_name"`
	Username       string  `json:"username"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
}

// CredentialRecord is the stored link between a Telegram chat and a Product
// Hunt credential. One record per chat; a re-authorization fully replaces the
// previous one. Tokens are excluded from JSON so listing endpoints never leak
// them.
type CredentialRecord struct {
	ChatID         int64      `json:"chat_id" db:"chat_id"`
	ProviderUserID string     `json:"provider_user_id" db:"provider_user_id"`
	DisplayName    string     `json:"display_name" db:"display_name"`
	Username       string     `json:"username" db:"username"`
	AvatarURL      *string    `json:"avatar_url,omitempty" db:"avatar_url"`
	AccessToken    string     `json:"-" db:"access_token"`
	RefreshToken   *string    `json:"-" db:"refresh_token"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
