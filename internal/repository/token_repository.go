package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"accountapi/internal/model"
)

// TokenRepository defines persistence operations for session tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *model.AccessToken) error
	FindByID(ctx context.Context, id string) (*model.AccessToken, error)
	ListByUser(ctx context.Context, userID uint) ([]model.AccessToken, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID uint) error
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository builds a GORM-backed repository.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) FindByID(ctx context.Context, id string) (*model.AccessToken, error) {
	var token model.AccessToken
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) ListByUser(ctx context.Context, userID uint) ([]model.AccessToken, error) {
	var tokens []model.AccessToken
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) Delete(ctx context.Context, id string) error {
	// Deleting an absent row is not an error; revocation is idempotent.
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.AccessToken{}).Error
}

func (r *tokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AccessToken{}).Error
}

func (r *tokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.AccessToken{}).Where("id = ?", id).
		Update("last_used_at", at).Error
}
