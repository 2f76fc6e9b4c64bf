package handlers

import (
	"errors"
	"io"
	"strconv"

	"wami-backend/domain"
	"wami-backend/internal/api/presenters"
	"wami-backend/pkg/bottle"
	"wami-backend/pkg/recognition"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	BottleHandler interface {
		ScanBottle(c *fiber.Ctx) error
		SaveBottle(c *fiber.Ctx) error
		GetCollection(c *fiber.Ctx) error
		GetBottleDetails(c *fiber.Ctx) error
		UploadBottleImage(c *fiber.Ctx) error
	}

	bottleHandler struct {
		bottleService      bottle.BottleService
		recognitionService recognition.RecognitionService
		validator          *validator.Validate
	}
)

func NewBottleHandler(bottleService bottle.BottleService, recognitionService recognition.RecognitionService, validator *validator.Validate) BottleHandler {
	return &bottleHandler{
		bottleService:      bottleService,
		recognitionService: recognitionService,
		validator:          validator,
	}
}

func (h *bottleHandler) ScanBottle(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedScanBottle, domain.ErrNoImageProvided)
	}

	src, err := file.Open()
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedScanBottle, err)
	}
	defer src.Close()

	image, err := io.ReadAll(src)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedScanBottle, err)
	}

	res, err := h.recognitionService.ScanLabel(c.Context(), image, file.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, domain.ErrWineNotRecognized) {
			// Not-usable outcome: the zero-confidence result rides along so
			// the caller can fall back to manual entry.
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success":        false,
				"message":        domain.MessageFailedScanBottle,
				"error":          err.Error(),
				"fallback":       true,
				"extracted_data": res.WineData,
			})
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedScanBottle, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessScanBottle)
}

func (h *bottleHandler) SaveBottle(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.SaveBottleRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveBottle, err)
	}

	res, err := h.bottleService.SaveBottle(c.Context(), *req, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingWineFields),
			errors.Is(err, domain.ErrInvalidWineType),
			errors.Is(err, domain.ErrInvalidRating),
			errors.Is(err, domain.ErrParseUUID):
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveBottle, err)
		default:
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedSaveBottle, err)
		}
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSaveBottle)
}

func (h *bottleHandler) GetCollection(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	minRating, err := strconv.Atoi(c.Query("rating", "0"))
	if err != nil || minRating < 0 {
		minRating = 0
	}

	filter := bottle.CollectionFilter{
		Search:    c.Query("search"),
		WineType:  c.Query("wine_type"),
		MinRating: minRating,
		Page:      page,
		Limit:     limit,
	}

	bottles, count, err := h.bottleService.GetCollection(c.Context(), userID, filter)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetCollection, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"bottles": bottles,
		"pagination": fiber.Map{
			"page":        page,
			"limit":       limit,
			"total":       count,
			"total_pages": (count + int64(limit) - 1) / int64(limit),
		},
	}, fiber.StatusOK, domain.MessageSuccessGetCollection)
}

func (h *bottleHandler) GetBottleDetails(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	bottleID := c.Params("id")

	res, err := h.bottleService.GetBottleByID(c.Context(), bottleID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrBottleNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetBottle, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetBottle, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetBottle)
}

func (h *bottleHandler) UploadBottleImage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	req := new(domain.UploadBottleImageRequest)
	req.BottleID = c.Params("id")

	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, domain.ErrNoImageProvided)
	}
	req.Image = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadImage, err)
	}

	imageURL, err := h.bottleService.UploadBottleImage(c.Context(), *req, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBottleNotFound):
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedUploadImage, err)
		case errors.Is(err, domain.ErrUnauthorizedAccess):
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedUploadImage, err)
		default:
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUploadImage, err)
		}
	}

	return presenters.SuccessResponse(c, fiber.Map{"image_url": imageURL}, fiber.StatusOK, domain.MessageSuccessUploadImage)
}
