package bottle

import (
	"context"
	"errors"
	"testing"

	"wami-backend/domain"
	"wami-backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeBottleRepository struct {
	bottles      map[string]*entities.Bottle
	rewards      map[string]int
	totalBottles map[string]int
	rewardErr    error
}

func newFakeBottleRepository() *fakeBottleRepository {
	return &fakeBottleRepository{
		bottles:      make(map[string]*entities.Bottle),
		rewards:      make(map[string]int),
		totalBottles: make(map[string]int),
	}
}

func (f *fakeBottleRepository) CreateBottle(ctx context.Context, bottle *entities.Bottle) error {
	f.bottles[bottle.ID.String()] = bottle
	return nil
}

func (f *fakeBottleRepository) GetBottleByID(ctx context.Context, id string) (*entities.Bottle, error) {
	bottle, ok := f.bottles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return bottle, nil
}

func (f *fakeBottleRepository) GetBottles(ctx context.Context, userID string, filter CollectionFilter) ([]*entities.Bottle, int64, error) {
	var out []*entities.Bottle
	for _, b := range f.bottles {
		if b.UserID.String() == userID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBottleRepository) UpdateBottle(ctx context.Context, bottle *entities.Bottle) error {
	f.bottles[bottle.ID.String()] = bottle
	return nil
}

func (f *fakeBottleRepository) AddSaveReward(ctx context.Context, userID string, coins int) error {
	if f.rewardErr != nil {
		return f.rewardErr
	}
	f.rewards[userID] += coins
	f.totalBottles[userID]++
	return nil
}

func TestSaveBottle(t *testing.T) {
	userID := uuid.New().String()

	t.Run("full save earns the complete bonus", func(t *testing.T) {
		repo := newFakeBottleRepository()
		service := NewBottleService(repo, nil)

		rating := 4
		res, err := service.SaveBottle(context.Background(), domain.SaveBottleRequest{
			WineData: domain.WineDataRequest{
				Name:      "X",
				Winemaker: "Y",
			},
			Rating:        &rating,
			WsetNotes:     map[string]any{"appearance": map[string]any{"clarity": "clear"}},
			PersonalNotes: "a lovely and complex wine",
		}, userID)

		require.NoError(t, err)
		assert.Equal(t, 30, res.CoinsEarned)
		assert.Equal(t, domain.RewardBreakdown{Base: 10, Rating: 5, WsetNotes: 10, PersonalNotes: 5, Total: 30}, res.Breakdown)

		// The persisted record carries the awarded total verbatim.
		stored := repo.bottles[res.Bottle.ID]
		require.NotNil(t, stored)
		assert.Equal(t, 30, stored.CoinsEarned)
		assert.Equal(t, 30, repo.rewards[userID])
		assert.Equal(t, 1, repo.totalBottles[userID])
	})

	t.Run("wine type defaults to red", func(t *testing.T) {
		repo := newFakeBottleRepository()
		service := NewBottleService(repo, nil)

		res, err := service.SaveBottle(context.Background(), domain.SaveBottleRequest{
			WineData: domain.WineDataRequest{Name: "X", Winemaker: "Y"},
		}, userID)

		require.NoError(t, err)
		assert.Equal(t, "red", res.Bottle.WineType)
		assert.Equal(t, 10, res.CoinsEarned)
	})

	t.Run("missing winemaker rejected", func(t *testing.T) {
		repo := newFakeBottleRepository()
		service := NewBottleService(repo, nil)

		_, err := service.SaveBottle(context.Background(), domain.SaveBottleRequest{
			WineData: domain.WineDataRequest{Name: "X"},
		}, userID)

		assert.ErrorIs(t, err, domain.ErrMissingWineFields)
		assert.Empty(t, repo.bottles)
	})

	t.Run("invalid wine type rejected", func(t *testing.T) {
		repo := newFakeBottleRepository()
		service := NewBottleService(repo, nil)

		_, err := service.SaveBottle(context.Background(), domain.SaveBottleRequest{
			WineData: domain.WineDataRequest{Name: "X", Winemaker: "Y", WineType: "orange"},
		}, userID)

		assert.ErrorIs(t, err, domain.ErrInvalidWineType)
	})

	t.Run("failed counter bump does not undo the create", func(t *testing.T) {
		repo := newFakeBottleRepository()
		repo.rewardErr = errors.New("db unavailable")
		service := NewBottleService(repo, nil)

		res, err := service.SaveBottle(context.Background(), domain.SaveBottleRequest{
			WineData: domain.WineDataRequest{Name: "X", Winemaker: "Y"},
		}, userID)

		// Create succeeds, then increment; the record survives the failed
		// bump with its own coinsEarned.
		require.NoError(t, err)
		assert.Equal(t, 10, res.CoinsEarned)
		assert.Len(t, repo.bottles, 1)
		assert.Zero(t, repo.rewards[userID])
	})
}

func TestGetBottleByID(t *testing.T) {
	owner := uuid.New()
	other := uuid.New().String()

	repo := newFakeBottleRepository()
	stored := &entities.Bottle{
		ID:        uuid.New(),
		UserID:    owner,
		Name:      "Grange",
		Winemaker: "Penfolds",
		WineType:  "red",
	}
	repo.bottles[stored.ID.String()] = stored

	service := NewBottleService(repo, nil)

	t.Run("owner sees the bottle", func(t *testing.T) {
		res, err := service.GetBottleByID(context.Background(), stored.ID.String(), owner.String())
		require.NoError(t, err)
		assert.Equal(t, "Grange", res.Name)
	})

	t.Run("other users get not found", func(t *testing.T) {
		_, err := service.GetBottleByID(context.Background(), stored.ID.String(), other)
		assert.ErrorIs(t, err, domain.ErrBottleNotFound)
	})

	t.Run("unknown id gets not found", func(t *testing.T) {
		_, err := service.GetBottleByID(context.Background(), uuid.New().String(), owner.String())
		assert.ErrorIs(t, err, domain.ErrBottleNotFound)
	})
}
