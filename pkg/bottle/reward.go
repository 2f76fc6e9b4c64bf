package bottle

import (
	"wami-backend/domain"
)

// CalculateSaveReward computes the coin bonus for one save. Deterministic
// and side-effect free; the total is fixed on the record at creation and
// never recomputed.
func CalculateSaveReward(req domain.SaveBottleRequest) domain.RewardBreakdown {
	breakdown := domain.RewardBreakdown{
		Base: domain.RewardBaseSave,
	}

	if req.Rating != nil {
		breakdown.Rating = domain.RewardRating
	}

	if len(req.WsetNotes) > 0 {
		breakdown.WsetNotes = domain.RewardWsetNotes
	}

	if len(req.PersonalNotes) > domain.MinPersonalNotesLength {
		breakdown.PersonalNotes = domain.RewardPersonalNotes
	}

	breakdown.Total = breakdown.Base + breakdown.Rating + breakdown.WsetNotes + breakdown.PersonalNotes
	return breakdown
}
