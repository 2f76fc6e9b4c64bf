package vineyard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wami-backend/domain"

	"gorm.io/gorm"
)

type (
	VineyardService interface {
		GetVineyardStatus(ctx context.Context, userID string) (domain.GetVineyardResponse, error)
		Harvest(ctx context.Context, userID string) (domain.HarvestResponse, error)
		Upgrade(ctx context.Context, userID string) (domain.UpgradeResponse, error)
	}

	vineyardService struct {
		vineyardRepository VineyardRepository
		now                func() time.Time
	}
)

func NewVineyardService(vineyardRepository VineyardRepository) VineyardService {
	return &vineyardService{
		vineyardRepository: vineyardRepository,
		now:                time.Now,
	}
}

// hoursOffline is the whole number of hours elapsed since the last harvest.
func hoursOffline(lastHarvestAt time.Time, now time.Time) int {
	hours := int(now.Sub(lastHarvestAt).Hours())
	if hours < 0 {
		return 0
	}
	return hours
}

// idleEarnings caps accrual at MaxOfflineHours simulated hours regardless of
// true elapsed time.
func idleEarnings(level int, hours int) int {
	if hours > domain.MaxOfflineHours {
		hours = domain.MaxOfflineHours
	}
	return hours * level
}

func upgradeCost(level int) int {
	return level * domain.UpgradeCostPerLevel
}

func (s *vineyardService) GetVineyardStatus(ctx context.Context, userID string) (domain.GetVineyardResponse, error) {
	user, err := s.vineyardRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.GetVineyardResponse{}, domain.ErrUserNotFound
		}
		return domain.GetVineyardResponse{}, err
	}

	now := s.now()
	hours := hoursOffline(user.LastHarvestAt, now)
	cost := upgradeCost(user.VineyardLevel)

	cappedHours := hours
	if cappedHours > domain.MaxOfflineHours {
		cappedHours = domain.MaxOfflineHours
	}

	return domain.GetVineyardResponse{
		Vineyard: domain.VineyardStatus{
			Level:        user.VineyardLevel,
			CoinsPerHour: user.VineyardLevel,
			IdleEarnings: idleEarnings(user.VineyardLevel, hours),
			HoursOffline: cappedHours,
			UpgradeCost:  cost,
			// Advisory only; the deduction itself is guarded by the
			// conditional update in Upgrade.
			CanUpgrade:    user.Coins >= cost,
			TotalHarvests: user.TotalHarvests,
		},
		User: domain.VineyardUserSummary{
			Coins:        user.Coins,
			TotalBottles: user.TotalBottles,
		},
	}, nil
}

func (s *vineyardService) Harvest(ctx context.Context, userID string) (domain.HarvestResponse, error) {
	user, err := s.vineyardRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.HarvestResponse{}, domain.ErrUserNotFound
		}
		return domain.HarvestResponse{}, err
	}

	now := s.now()
	hours := hoursOffline(user.LastHarvestAt, now)
	if hours < domain.MinHarvestIntervalHours {
		return domain.HarvestResponse{}, domain.ErrHarvestCooldown
	}

	earnings := idleEarnings(user.VineyardLevel, hours)

	// The cutoff guard keeps the earnings honest: any concurrent harvest
	// moves last_harvest_at past the cutoff and this write is rejected
	// instead of applying a second payout from the same window.
	cutoff := now.Add(-time.Duration(domain.MinHarvestIntervalHours) * time.Hour)
	applied, err := s.vineyardRepository.HarvestVineyard(ctx, userID, cutoff, earnings, now)
	if err != nil {
		return domain.HarvestResponse{}, err
	}
	if !applied {
		return domain.HarvestResponse{}, domain.ErrHarvestCooldown
	}

	cappedHours := hours
	if cappedHours > domain.MaxOfflineHours {
		cappedHours = domain.MaxOfflineHours
	}

	return domain.HarvestResponse{
		CoinsEarned:    earnings,
		HoursOffline:   cappedHours,
		NewCoinBalance: user.Coins + earnings,
	}, nil
}

func (s *vineyardService) Upgrade(ctx context.Context, userID string) (domain.UpgradeResponse, error) {
	user, err := s.vineyardRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UpgradeResponse{}, domain.ErrUserNotFound
		}
		return domain.UpgradeResponse{}, err
	}

	cost := upgradeCost(user.VineyardLevel)
	if user.Coins < cost {
		return domain.UpgradeResponse{}, fmt.Errorf("%w: need %d more coins", domain.ErrInsufficientCoins, cost-user.Coins)
	}

	applied, err := s.vineyardRepository.UpgradeVineyard(ctx, userID, user.VineyardLevel, cost)
	if err != nil {
		return domain.UpgradeResponse{}, err
	}
	if !applied {
		// The conditional update re-checked affordability against the live
		// row and rejected the write.
		return domain.UpgradeResponse{}, domain.ErrInsufficientCoins
	}

	newLevel := user.VineyardLevel + 1

	return domain.UpgradeResponse{
		NewLevel:        newLevel,
		CoinsSpent:      cost,
		NewCoinBalance:  user.Coins - cost,
		NextUpgradeCost: upgradeCost(newLevel),
	}, nil
}
