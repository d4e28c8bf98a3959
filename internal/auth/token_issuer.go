package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"accountapi/internal/cache"
	apperrors "accountapi/internal/errors"
	"accountapi/internal/model"
	"accountapi/internal/repository"
)

const (
	tokenCacheKeyPrefix = "access_token:"
	tokenCacheTTL       = 5 * time.Minute
	tokenSecretBytes    = 20
)

// TokenIssuer mints, resolves and revokes opaque bearer tokens. Tokens stay
// valid until explicitly revoked; there is no expiry policy.
type TokenIssuer interface {
	Issue(ctx context.Context, user *model.User) (string, error)
	Resolve(ctx context.Context, plaintext string) (*model.User, string, error)
	Revoke(ctx context.Context, tokenID string) error
	RevokeAll(ctx context.Context, userID uint) error
}

type tokenIssuer struct {
	tokens repository.TokenRepository
	users  repository.UserRepository
	cache  *cache.Client
}

// Ensure tokenIssuer implements TokenIssuer
var _ TokenIssuer = (*tokenIssuer)(nil)

// NewTokenIssuer creates a database-backed token issuer with a Redis read
// cache in front of the token table.
func NewTokenIssuer(tokens repository.TokenRepository, users repository.UserRepository, cache *cache.Client) TokenIssuer {
	return &tokenIssuer{tokens: tokens, users: users, cache: cache}
}

// Issue mints a token for the user and returns its plaintext form,
// "<id>|<secret>". Only the secret's SHA-256 digest is persisted.
func (s *tokenIssuer) Issue(ctx context.Context, user *model.User) (string, error) {
	secret := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	plainSecret := hex.EncodeToString(secret)

	token := &model.AccessToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: hashSecret(plainSecret),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token.ID + "|" + plainSecret, nil
}

// Resolve maps a plaintext bearer token back to its user. Malformed, unknown
// and revoked tokens all return ErrInvalidToken.
func (s *tokenIssuer) Resolve(ctx context.Context, plaintext string) (*model.User, string, error) {
	id, secret, ok := strings.Cut(plaintext, "|")
	if !ok || id == "" || secret == "" {
		return nil, "", apperrors.ErrInvalidToken
	}

	token, err := s.lookupToken(ctx, id)
	if err != nil {
		return nil, "", err
	}

	digest := hashSecret(secret)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(token.TokenHash)) != 1 {
		return nil, "", apperrors.ErrInvalidToken
	}

	// The user lookup always hits the database, so a cached token entry can
	// never outlive its deleted user.
	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperrors.ErrInvalidToken
		}
		return nil, "", fmt.Errorf("find token user: %w", err)
	}

	// best effort; resolution does not depend on it
	_ = s.tokens.TouchLastUsed(ctx, token.ID, time.Now())

	return user, token.ID, nil
}

// Revoke deletes a single token. Revoking an already-deleted token succeeds.
func (s *tokenIssuer) Revoke(ctx context.Context, tokenID string) error {
	if err := s.tokens.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	_ = s.cache.Delete(ctx, tokenCacheKeyPrefix+tokenID)
	return nil
}

// RevokeAll deletes every token held by the user, purging cached entries
// first so none survives the database delete.
func (s *tokenIssuer) RevokeAll(ctx context.Context, userID uint) error {
	tokens, err := s.tokens.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}
	keys := make([]string, 0, len(tokens))
	for _, t := range tokens {
		keys = append(keys, tokenCacheKeyPrefix+t.ID)
	}
	_ = s.cache.Delete(ctx, keys...)

	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	return nil
}

// cachedToken is the Redis payload. The model's TokenHash is json-"-" so the
// hash never reaches API responses, but the cache needs it to verify secrets.
type cachedToken struct {
	ID        string `json:"id"`
	UserID    uint   `json:"user_id"`
	TokenHash string `json:"token_hash"`
}

func (s *tokenIssuer) lookupToken(ctx context.Context, id string) (*model.AccessToken, error) {
	key := tokenCacheKeyPrefix + id
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached cachedToken
		if err := json.Unmarshal(data, &cached); err == nil && cached.TokenHash != "" {
			return &model.AccessToken{ID: cached.ID, UserID: cached.UserID, TokenHash: cached.TokenHash}, nil
		}
	}

	token, err := s.tokens.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	payload, err := json.Marshal(cachedToken{ID: token.ID, UserID: token.UserID, TokenHash: token.TokenHash})
	if err == nil {
		_ = s.cache.Set(ctx, key, payload, tokenCacheTTL)
	}
	return token, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
