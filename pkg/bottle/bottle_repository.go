package bottle

import (
	"context"

	"wami-backend/entities"

	"gorm.io/gorm"
)

type (
	CollectionFilter struct {
		Search    string
		WineType  string
		MinRating int
		Page      int
		Limit     int
	}

	BottleRepository interface {
		CreateBottle(ctx context.Context, bottle *entities.Bottle) error
		GetBottleByID(ctx context.Context, id string) (*entities.Bottle, error)
		GetBottles(ctx context.Context, userID string, filter CollectionFilter) ([]*entities.Bottle, int64, error)
		UpdateBottle(ctx context.Context, bottle *entities.Bottle) error

		// AddSaveReward applies the save bonus as a single atomic
		// increment; the database is the arithmetic authority, never a
		// value computed from a stale read.
		AddSaveReward(ctx context.Context, userID string, coins int) error
	}

	bottleRepository struct {
		db *gorm.DB
	}
)

func NewBottleRepository(db *gorm.DB) BottleRepository {
	return &bottleRepository{db: db}
}

func (r *bottleRepository) CreateBottle(ctx context.Context, bottle *entities.Bottle) error {
	return r.db.WithContext(ctx).Create(bottle).Error
}

func (r *bottleRepository) GetBottleByID(ctx context.Context, id string) (*entities.Bottle, error) {
	var bottle entities.Bottle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bottle).Error; err != nil {
		return nil, err
	}
	return &bottle, nil
}

func (r *bottleRepository) GetBottles(ctx context.Context, userID string, filter CollectionFilter) ([]*entities.Bottle, int64, error) {
	var bottles []*entities.Bottle
	var count int64

	offset := (filter.Page - 1) * filter.Limit

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"name ILIKE ? OR winemaker ILIKE ? OR country ILIKE ? OR personal_notes ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	if filter.WineType != "" && filter.WineType != "all" {
		query = query.Where("wine_type = ?", filter.WineType)
	}

	if filter.MinRating > 0 {
		query = query.Where("rating >= ?", filter.MinRating)
	}

	if err := query.Model(&entities.Bottle{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&bottles).Error; err != nil {
		return nil, 0, err
	}

	return bottles, count, nil
}

func (r *bottleRepository) UpdateBottle(ctx context.Context, bottle *entities.Bottle) error {
	return r.db.WithContext(ctx).Save(bottle).Error
}

func (r *bottleRepository) AddSaveReward(ctx context.Context, userID string, coins int) error {
	return r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"coins":         gorm.Expr("coins + ?", coins),
			"total_bottles": gorm.Expr("total_bottles + 1"),
		}).Error
}
