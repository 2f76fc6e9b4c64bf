package domain

import (
	"errors"
)

var (
	MessageSuccessGetVineyard = "vineyard status retrieved successfully"
	MessageSuccessHarvest     = "vineyard harvested successfully"
	MessageSuccessUpgrade     = "vineyard upgraded successfully"

	MessageFailedGetVineyard = "failed to retrieve vineyard status"
	MessageFailedHarvest     = "failed to harvest vineyard"
	MessageFailedUpgrade     = "failed to upgrade vineyard"

	ErrHarvestCooldown   = errors.New("must wait at least 1 hour between harvests")
	ErrInsufficientCoins = errors.New("insufficient coins")
)

const (
	// Idle earnings cap at one simulated day; there is no benefit to
	// ignoring the app for a week.
	MaxOfflineHours = 24
	// Harvests are gated to once an hour.
	MinHarvestIntervalHours = 1
	// Upgrade cost grows linearly with the current level.
	UpgradeCostPerLevel = 50
)

type (
	VineyardStatus struct {
		Level         int  `json:"level"`
		CoinsPerHour  int  `json:"coins_per_hour"`
		IdleEarnings  int  `json:"idle_earnings"`
		HoursOffline  int  `json:"hours_offline"`
		UpgradeCost   int  `json:"upgrade_cost"`
		CanUpgrade    bool `json:"can_upgrade"`
		TotalHarvests int  `json:"total_harvests"`
	}

	VineyardUserSummary struct {
		Coins        int `json:"coins"`
		TotalBottles int `json:"total_bottles"`
	}

	GetVineyardResponse struct {
		Vineyard VineyardStatus      `json:"vineyard"`
		User     VineyardUserSummary `json:"user"`
	}

	HarvestResponse struct {
		CoinsEarned    int `json:"coins_earned"`
		HoursOffline   int `json:"hours_offline"`
		NewCoinBalance int `json:"new_coin_balance"`
	}

	UpgradeResponse struct {
		NewLevel        int `json:"new_level"`
		CoinsSpent      int `json:"coins_spent"`
		NewCoinBalance  int `json:"new_coin_balance"`
		NextUpgradeCost int `json:"next_upgrade_cost"`
	}
)
