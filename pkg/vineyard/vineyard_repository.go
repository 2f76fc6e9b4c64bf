package vineyard

import (
	"context"
	"time"

	"wami-backend/entities"

	"gorm.io/gorm"
)

type (
	VineyardRepository interface {
		GetUserByID(ctx context.Context, id string) (*entities.User, error)

		// HarvestVineyard applies harvest earnings as a single conditional
		// update guarded by the cooldown cutoff. Returns false when the
		// guard rejects the write, meaning another harvest already moved
		// last_harvest_at past the cutoff.
		HarvestVineyard(ctx context.Context, userID string, cutoff time.Time, earnings int, now time.Time) (bool, error)

		// UpgradeVineyard deducts the upgrade cost and bumps the level as a
		// single conditional update guarded by the observed level and a
		// coins >= cost check. Returns false when the guard rejects the
		// write.
		UpgradeVineyard(ctx context.Context, userID string, currentLevel int, cost int) (bool, error)
	}

	vineyardRepository struct {
		db *gorm.DB
	}
)

func NewVineyardRepository(db *gorm.DB) VineyardRepository {
	return &vineyardRepository{db: db}
}

func (r *vineyardRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *vineyardRepository) HarvestVineyard(ctx context.Context, userID string, cutoff time.Time, earnings int, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ? AND last_harvest_at <= ?", userID, cutoff).
		Updates(map[string]interface{}{
			"coins":           gorm.Expr("coins + ?", earnings),
			"total_harvests":  gorm.Expr("total_harvests + 1"),
			"last_harvest_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *vineyardRepository) UpgradeVineyard(ctx context.Context, userID string, currentLevel int, cost int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ? AND vineyard_level = ? AND coins >= ?", userID, currentLevel, cost).
		Updates(map[string]interface{}{
			"coins":          gorm.Expr("coins - ?", cost),
			"vineyard_level": gorm.Expr("vineyard_level + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
