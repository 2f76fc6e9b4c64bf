package handlers

import (
	"errors"

	"wami-backend/domain"
	"wami-backend/internal/api/presenters"
	"wami-backend/pkg/vineyard"

	"github.com/gofiber/fiber/v2"
)

type (
	VineyardHandler interface {
		GetVineyard(c *fiber.Ctx) error
		Harvest(c *fiber.Ctx) error
		Upgrade(c *fiber.Ctx) error
	}

	vineyardHandler struct {
		vineyardService vineyard.VineyardService
	}
)

func NewVineyardHandler(vineyardService vineyard.VineyardService) VineyardHandler {
	return &vineyardHandler{vineyardService: vineyardService}
}

func (h *vineyardHandler) GetVineyard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.vineyardService.GetVineyardStatus(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetVineyard, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetVineyard, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetVineyard)
}

func (h *vineyardHandler) Harvest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.vineyardService.Harvest(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHarvestCooldown):
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedHarvest, err)
		case errors.Is(err, domain.ErrUserNotFound):
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedHarvest, err)
		default:
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedHarvest, err)
		}
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessHarvest)
}

func (h *vineyardHandler) Upgrade(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	res, err := h.vineyardService.Upgrade(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientCoins):
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpgrade, err)
		case errors.Is(err, domain.ErrUserNotFound):
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedUpgrade, err)
		default:
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpgrade, err)
		}
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpgrade)
}
