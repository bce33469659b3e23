package repository

import (
	"context"
	"errors"
	"time"

	authdomain "minimalist-backend/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shareCodeRepository struct {
	db *gorm.DB
}

func NewShareCodeRepository(db *gorm.DB) ShareCodeRepository {
	return &shareCodeRepository{db: db}
}

func (r *shareCodeRepository) Create(ctx context.Context, code *authdomain.ShareCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *shareCodeRepository) FindByID(ctx context.Context, id string) (*authdomain.ShareCode, error) {
	var code authdomain.ShareCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

func (r *shareCodeRepository) MarkUsed(ctx context.Context, id string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&authdomain.ShareCode{}).
		Where("id = ? AND used_at IS NULL AND expires_at > ?", id, now).
		Update("used_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// DeleteStale removes codes that expired or were already redeemed.
func (r *shareCodeRepository) DeleteStale(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ? OR used_at IS NOT NULL", now).
		Delete(&authdomain.ShareCode{})
	return res.RowsAffected, res.Error
}
