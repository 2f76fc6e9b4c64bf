package vineyard

import (
	"context"
	"sync"
	"testing"
	"time"

	"wami-backend/domain"
	"wami-backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeVineyardRepository mirrors the conditional-update semantics of the
// real repository: the guard and the mutation happen under one lock, so
// concurrent callers exercise the same exactly-once behavior.
type fakeVineyardRepository struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newFakeVineyardRepository(users ...*entities.User) *fakeVineyardRepository {
	repo := &fakeVineyardRepository{users: make(map[string]*entities.User)}
	for _, u := range users {
		repo.users[u.ID.String()] = u
	}
	return repo
}

func (f *fakeVineyardRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	snapshot := *user
	return &snapshot, nil
}

func (f *fakeVineyardRepository) HarvestVineyard(ctx context.Context, userID string, cutoff time.Time, earnings int, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.LastHarvestAt.After(cutoff) {
		return false, nil
	}
	user.Coins += earnings
	user.TotalHarvests++
	user.LastHarvestAt = now
	return true, nil
}

func (f *fakeVineyardRepository) UpgradeVineyard(ctx context.Context, userID string, currentLevel int, cost int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.VineyardLevel != currentLevel || user.Coins < cost {
		return false, nil
	}
	user.Coins -= cost
	user.VineyardLevel++
	return true, nil
}

func newTestService(repo VineyardRepository, now time.Time) *vineyardService {
	return &vineyardService{
		vineyardRepository: repo,
		now:                func() time.Time { return now },
	}
}

func TestGetVineyardStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("earnings cap at 24 hours", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         120,
			TotalBottles:  7,
			VineyardLevel: 3,
			LastHarvestAt: now.Add(-40 * time.Hour),
		}
		service := newTestService(newFakeVineyardRepository(user), now)

		res, err := service.GetVineyardStatus(context.Background(), user.ID.String())
		require.NoError(t, err)

		assert.Equal(t, 3, res.Vineyard.Level)
		assert.Equal(t, 3, res.Vineyard.CoinsPerHour)
		// min(40, 24) * 3, not 40 * 3.
		assert.Equal(t, 72, res.Vineyard.IdleEarnings)
		assert.Equal(t, 24, res.Vineyard.HoursOffline)
		assert.Equal(t, 150, res.Vineyard.UpgradeCost)
		assert.False(t, res.Vineyard.CanUpgrade)
		assert.Equal(t, 120, res.User.Coins)
		assert.Equal(t, 7, res.User.TotalBottles)
	})

	t.Run("partial hours floor to whole hours", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         200,
			VineyardLevel: 2,
			LastHarvestAt: now.Add(-150 * time.Minute),
		}
		service := newTestService(newFakeVineyardRepository(user), now)

		res, err := service.GetVineyardStatus(context.Background(), user.ID.String())
		require.NoError(t, err)

		assert.Equal(t, 2, res.Vineyard.HoursOffline)
		assert.Equal(t, 4, res.Vineyard.IdleEarnings)
		assert.Equal(t, 100, res.Vineyard.UpgradeCost)
		assert.True(t, res.Vineyard.CanUpgrade)
	})

	t.Run("unknown user", func(t *testing.T) {
		service := newTestService(newFakeVineyardRepository(), now)
		_, err := service.GetVineyardStatus(context.Background(), uuid.New().String())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestHarvest(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("applies capped earnings and resets the clock", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         50,
			VineyardLevel: 2,
			TotalHarvests: 4,
			LastHarvestAt: now.Add(-30 * time.Hour),
		}
		repo := newFakeVineyardRepository(user)
		service := newTestService(repo, now)

		res, err := service.Harvest(context.Background(), user.ID.String())
		require.NoError(t, err)

		assert.Equal(t, 48, res.CoinsEarned) // min(30, 24) * 2
		assert.Equal(t, 24, res.HoursOffline)
		assert.Equal(t, 98, res.NewCoinBalance)

		stored := repo.users[user.ID.String()]
		assert.Equal(t, 98, stored.Coins)
		assert.Equal(t, 5, stored.TotalHarvests)
		assert.Equal(t, now, stored.LastHarvestAt)
	})

	t.Run("cooldown rejects a harvest within the hour", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         50,
			VineyardLevel: 2,
			TotalHarvests: 4,
			LastHarvestAt: now.Add(-30 * time.Minute),
		}
		repo := newFakeVineyardRepository(user)
		service := newTestService(repo, now)

		_, err := service.Harvest(context.Background(), user.ID.String())
		assert.ErrorIs(t, err, domain.ErrHarvestCooldown)

		stored := repo.users[user.ID.String()]
		assert.Equal(t, 50, stored.Coins)
		assert.Equal(t, 4, stored.TotalHarvests)
	})

	t.Run("second harvest in the same window fails", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         0,
			VineyardLevel: 1,
			LastHarvestAt: now.Add(-2 * time.Hour),
		}
		repo := newFakeVineyardRepository(user)
		service := newTestService(repo, now)

		_, err := service.Harvest(context.Background(), user.ID.String())
		require.NoError(t, err)

		_, err = service.Harvest(context.Background(), user.ID.String())
		assert.ErrorIs(t, err, domain.ErrHarvestCooldown)

		stored := repo.users[user.ID.String()]
		assert.Equal(t, 2, stored.Coins)
		assert.Equal(t, 1, stored.TotalHarvests)
	})

	t.Run("concurrent harvests apply exactly once", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         10,
			VineyardLevel: 3,
			TotalHarvests: 0,
			LastHarvestAt: now.Add(-5 * time.Hour),
		}
		repo := newFakeVineyardRepository(user)
		service := newTestService(repo, now)

		const workers = 25
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := service.Harvest(context.Background(), user.ID.String())
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var succeeded, rejected int
		for err := range errs {
			if err == nil {
				succeeded++
			} else {
				require.ErrorIs(t, err, domain.ErrHarvestCooldown)
				rejected++
			}
		}

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, workers-1, rejected)

		stored := repo.users[user.ID.String()]
		assert.Equal(t, 10+5*3, stored.Coins)
		assert.Equal(t, 1, stored.TotalHarvests)
	})
}

func TestUpgrade(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("one coin short is rejected with the shortfall", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         99,
			VineyardLevel: 2,
			LastHarvestAt: now,
		}
		repo := newFakeVineyardRepository(user)
		service := newTestService(repo, now)

		_, err := service.Upgrade(context.Background(), user.ID.String())
		require.ErrorIs(t, err, domain.ErrInsufficientCoins)
		assert.Contains(t, err.Error(), "need 1 more coins")

		stored := repo.users[user.ID.String()]
		assert.Equal(t, 99, stored.Coins)
		assert.Equal(t, 2, stored.VineyardLevel)
	})

	t.Run("exact cost succeeds", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         100,
			VineyardLevel: 2,
			LastHarvestAt: now,
		}
		repo := newFakeVineyardRepository(user)
		service := newTestService(repo, now)

		res, err := service.Upgrade(context.Background(), user.ID.String())
		require.NoError(t, err)

		assert.Equal(t, 3, res.NewLevel)
		assert.Equal(t, 100, res.CoinsSpent)
		assert.Equal(t, 0, res.NewCoinBalance)
		assert.Equal(t, 150, res.NextUpgradeCost)

		stored := repo.users[user.ID.String()]
		assert.Equal(t, 0, stored.Coins)
		assert.Equal(t, 3, stored.VineyardLevel)
	})

	t.Run("concurrent upgrades spend the coins at most once per level", func(t *testing.T) {
		user := &entities.User{
			ID:            uuid.New(),
			Coins:         50,
			VineyardLevel: 1,
			LastHarvestAt: now,
		}
		repo := newFakeVineyardRepository(user)
		service := newTestService(repo, now)

		const workers = 10
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := service.Upgrade(context.Background(), user.ID.String())
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var succeeded int
		for err := range errs {
			if err == nil {
				succeeded++
			}
		}

		// 50 coins afford exactly the level-1 upgrade; nobody can also
		// afford the level-2 one.
		assert.Equal(t, 1, succeeded)

		stored := repo.users[user.ID.String()]
		assert.Equal(t, 0, stored.Coins)
		assert.Equal(t, 2, stored.VineyardLevel)
	})
}
